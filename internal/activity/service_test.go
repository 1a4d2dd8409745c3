package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impilo/fieldreport/internal/alerts"
	"github.com/impilo/fieldreport/internal/profile"
	"github.com/impilo/fieldreport/internal/scope"
	"github.com/impilo/fieldreport/internal/watch"
)

type stubStore struct {
	records map[uuid.UUID]*Activity

	createErr  error
	lastScope  scope.Scope
	lastFilter Filter
}

func newStubStore() *stubStore {
	return &stubStore{records: map[uuid.UUID]*Activity{}}
}

func (s *stubStore) Create(_ context.Context, a Activity) (*Activity, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	a.CreatedAt = time.Now()
	s.records[a.ID] = &a
	return &a, nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (*Activity, error) {
	a, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *stubStore) List(_ context.Context, sc scope.Scope, f Filter) ([]Activity, error) {
	s.lastScope = sc
	s.lastFilter = f
	out := []Activity{}
	for _, a := range s.records {
		if sc.Matches(a.UserID, a.District) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func promoter(district string) profile.Profile {
	return profile.Profile{
		ID:          uuid.New(),
		DisplayName: "Thandi Nkosi",
		Role:        scope.RoleHealthPromoter,
		District:    district,
	}
}

func validInput() CreateInput {
	return CreateInput{
		Kind: KindHealthTalk,
		Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Details: &HealthTalkDetails{
			Venue:         "Community Hall",
			Topics:        []string{"Nutrition"},
			StartTime:     "09:00",
			EndTime:       "10:30",
			PeopleReached: 25,
		},
	}
}

func TestCreateStampsOwnerFromActor(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, watch.NopPublisher{}, alerts.NewEmitter())
	actor := promoter("uMgungundlovu")

	created, err := svc.Create(context.Background(), actor, validInput())
	require.NoError(t, err)

	assert.Equal(t, actor.ID, created.UserID)
	assert.Equal(t, actor.DisplayName, created.UserName)
	assert.Equal(t, actor.District, created.District)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreateRejectsMismatchedDetails(t *testing.T) {
	svc := NewService(newStubStore(), watch.NopPublisher{}, alerts.NewEmitter())

	input := validInput()
	input.Kind = KindSchoolVisit

	_, err := svc.Create(context.Background(), promoter("uMgungundlovu"), input)
	assert.Error(t, err)
}

func TestCreateRejectionWrappedAndEmitted(t *testing.T) {
	store := newStubStore()
	store.createErr = errors.New("rejected by backend rules")
	emitter := alerts.NewEmitter()
	svc := NewService(store, watch.NopPublisher{}, emitter)

	events, cancel := emitter.Subscribe()
	defer cancel()

	_, err := svc.Create(context.Background(), promoter("uMgungundlovu"), validInput())
	require.Error(t, err)

	var pe *alerts.PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "activities", pe.Path)
	assert.Equal(t, alerts.OpCreate, pe.Operation)
	assert.NotNil(t, pe.Payload)
	assert.True(t, errors.Is(err, store.createErr))

	select {
	case emitted := <-events:
		assert.Equal(t, pe, emitted)
	default:
		t.Fatal("expected a permission error emission")
	}
}

func TestGetOutsideScopeEmitsPermissionError(t *testing.T) {
	store := newStubStore()
	emitter := alerts.NewEmitter()
	svc := NewService(store, watch.NopPublisher{}, emitter)

	owner := promoter("uMgungundlovu")
	created, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	events, cancel := emitter.Subscribe()
	defer cancel()

	stranger := promoter("eThekwini")
	_, err = svc.Get(context.Background(), stranger, created.ID)
	require.Error(t, err)

	var pe *alerts.PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "activities", pe.Path)
	assert.Equal(t, alerts.OpGet, pe.Operation)
	assert.True(t, errors.Is(err, ErrForbidden))

	select {
	case emitted := <-events:
		assert.Equal(t, pe, emitted)
	default:
		t.Fatal("expected a permission error emission")
	}
}

func TestListScopesByRole(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, watch.NopPublisher{}, alerts.NewEmitter())

	admin := profile.Profile{ID: uuid.New(), Role: scope.RoleAdministrator, District: "eThekwini"}
	_, err := svc.List(context.Background(), admin, Filter{})
	require.NoError(t, err)
	assert.Equal(t, scope.KindDistrict, store.lastScope.Kind)
	assert.Equal(t, "eThekwini", store.lastScope.District)

	adminWithout := profile.Profile{ID: uuid.New(), Role: scope.RoleAdministrator}
	_, err = svc.List(context.Background(), adminWithout, Filter{})
	require.NoError(t, err)
	assert.Equal(t, scope.KindNone, store.lastScope.Kind)
}

func TestDeleteAuthorization(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, watch.NopPublisher{}, alerts.NewEmitter())

	owner := promoter("uMgungundlovu")
	created, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	otherPromoter := promoter("uMgungundlovu")
	err = svc.Delete(context.Background(), otherPromoter, created.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	sameDistrictAdmin := profile.Profile{ID: uuid.New(), Role: scope.RoleAdministrator, District: "uMgungundlovu"}
	require.NoError(t, svc.Delete(context.Background(), sameDistrictAdmin, created.ID))

	_, err = store.Get(context.Background(), created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
