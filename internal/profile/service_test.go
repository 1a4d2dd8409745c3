package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impilo/fieldreport/internal/scope"
	"github.com/impilo/fieldreport/internal/watch"
)

type stubStore struct {
	profiles map[uuid.UUID]*Profile

	lastScope scope.Scope
}

func newStubStore() *stubStore {
	return &stubStore{profiles: map[uuid.UUID]*Profile{}}
}

func (s *stubStore) Create(_ context.Context, p Profile, _ string) (*Profile, error) {
	for _, existing := range s.profiles {
		if existing.Email == p.Email {
			return nil, ErrEmailTaken
		}
	}
	s.profiles[p.ID] = &p
	copied := p
	return &copied, nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (*Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubStore) List(_ context.Context, sc scope.Scope) ([]Profile, error) {
	s.lastScope = sc
	out := []Profile{}
	for _, p := range s.profiles {
		if sc.Matches(p.ID, p.District) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubStore) Update(_ context.Context, input UpdateInput) (*Profile, error) {
	p, ok := s.profiles[input.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if input.DisplayName != nil {
		p.DisplayName = *input.DisplayName
	}
	if input.PersalNumber != nil {
		p.PersalNumber = *input.PersalNumber
	}
	copied := *p
	return &copied, nil
}

func (s *stubStore) SetRole(_ context.Context, id uuid.UUID, role, district string) (*Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Role = role
	p.District = district
	copied := *p
	return &copied, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

func superAdmin() Profile {
	return Profile{ID: uuid.New(), Role: scope.RoleSuperAdministrator}
}

func districtAdmin(district string) Profile {
	return Profile{ID: uuid.New(), Role: scope.RoleAdministrator, District: district}
}

func provisionInput(role, district string) ProvisionInput {
	return ProvisionInput{
		DisplayName: "Thandi Nkosi",
		Email:       "thandi@example.org",
		Password:    "s3cret-pass",
		Role:        role,
		District:    district,
	}
}

func TestProvisionRoleGating(t *testing.T) {
	svc := NewService(newStubStore(), watch.NopPublisher{})

	// Super admins may create anyone.
	created, err := svc.Provision(context.Background(), superAdmin(),
		provisionInput(scope.RoleAdministrator, "eThekwini"))
	require.NoError(t, err)
	assert.Equal(t, scope.RoleAdministrator, created.Role)

	// Admins may only create promoters inside their own district.
	svc = NewService(newStubStore(), watch.NopPublisher{})
	admin := districtAdmin("eThekwini")

	_, err = svc.Provision(context.Background(), admin,
		provisionInput(scope.RoleAdministrator, "eThekwini"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Provision(context.Background(), admin,
		provisionInput(scope.RoleHealthPromoter, "uMgungundlovu"))
	assert.ErrorIs(t, err, ErrForbidden)

	created, err = svc.Provision(context.Background(), admin,
		provisionInput(scope.RoleHealthPromoter, "eThekwini"))
	require.NoError(t, err)
	assert.Equal(t, scope.RoleHealthPromoter, created.Role)

	// Promoters may not provision at all.
	_, err = svc.Provision(context.Background(),
		Profile{ID: uuid.New(), Role: scope.RoleHealthPromoter, District: "eThekwini"},
		provisionInput(scope.RoleHealthPromoter, "eThekwini"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestProvisionValidatesPersal(t *testing.T) {
	svc := NewService(newStubStore(), watch.NopPublisher{})

	input := provisionInput(scope.RoleHealthPromoter, "eThekwini")
	input.PersalNumber = "123"
	_, err := svc.Provision(context.Background(), superAdmin(), input)
	assert.ErrorIs(t, err, ErrInvalidPersal)

	input.PersalNumber = "12345678"
	_, err = svc.Provision(context.Background(), superAdmin(), input)
	assert.NoError(t, err)
}

func TestListUsesDirectoryScope(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, watch.NopPublisher{})

	admin := districtAdmin("")
	_, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	// An admin without a district still sees their own profile.
	assert.Equal(t, scope.KindSelf, store.lastScope.Kind)
	assert.Equal(t, admin.ID, store.lastScope.UserID)
}

func TestUpdateSelfAndScoped(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, watch.NopPublisher{})

	promoter, err := svc.Provision(context.Background(), superAdmin(),
		provisionInput(scope.RoleHealthPromoter, "eThekwini"))
	require.NoError(t, err)

	name := "Thandiwe Nkosi"
	updated, err := svc.Update(context.Background(), *promoter, UpdateInput{ID: promoter.ID, DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)

	// A different district's admin may not edit them.
	_, err = svc.Update(context.Background(), districtAdmin("uMgungundlovu"),
		UpdateInput{ID: promoter.ID, DisplayName: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	// Their own district's admin may.
	_, err = svc.Update(context.Background(), districtAdmin("eThekwini"),
		UpdateInput{ID: promoter.ID, DisplayName: &name})
	assert.NoError(t, err)
}

func TestChangeRoleSuperAdminOnly(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, watch.NopPublisher{})

	promoter, err := svc.Provision(context.Background(), superAdmin(),
		provisionInput(scope.RoleHealthPromoter, "eThekwini"))
	require.NoError(t, err)

	_, err = svc.ChangeRole(context.Background(), districtAdmin("eThekwini"),
		promoter.ID, scope.RoleAdministrator, "eThekwini")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.ChangeRole(context.Background(), superAdmin(),
		promoter.ID, scope.RoleAdministrator, "eThekwini")
	require.NoError(t, err)
	assert.Equal(t, scope.RoleAdministrator, updated.Role)

	_, err = svc.ChangeRole(context.Background(), superAdmin(), promoter.ID, "Captain", "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

type capturePublisher struct {
	events []watch.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev watch.Event) {
	p.events = append(p.events, ev)
}

func TestDeletePublishesDistrictInvalidation(t *testing.T) {
	store := newStubStore()
	pub := &capturePublisher{}
	svc := NewService(store, pub)

	promoter, err := svc.Provision(context.Background(), superAdmin(),
		provisionInput(scope.RoleHealthPromoter, "eThekwini"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), superAdmin(), promoter.ID))

	require.NotEmpty(t, pub.events)
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, watch.CollectionUsers, last.Collection)
	assert.Equal(t, "eThekwini", last.District)
	assert.Equal(t, promoter.ID, last.UserID)
	// District administrators' live streams must match the invalidation.
	assert.True(t, scope.District("eThekwini").Matches(last.UserID, last.District))
}

func TestDeleteAuthorization(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, watch.NopPublisher{})

	promoter, err := svc.Provision(context.Background(), superAdmin(),
		provisionInput(scope.RoleHealthPromoter, "eThekwini"))
	require.NoError(t, err)

	err = svc.Delete(context.Background(), districtAdmin("uMgungundlovu"), promoter.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), districtAdmin("eThekwini"), promoter.ID))
}
