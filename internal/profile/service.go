package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/impilo/fieldreport/internal/auth"
	"github.com/impilo/fieldreport/internal/scope"
	"github.com/impilo/fieldreport/internal/watch"
)

// Store captures the persistence operations the service needs.
type Store interface {
	Create(ctx context.Context, p Profile, passwordHash string) (*Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	List(ctx context.Context, s scope.Scope) ([]Profile, error)
	Update(ctx context.Context, input UpdateInput) (*Profile, error)
	SetRole(ctx context.Context, id uuid.UUID, role, district string) (*Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service holds the user-directory business rules.
type Service struct {
	store Store
	hub   watch.Publisher
}

// NewService creates a profile service.
func NewService(store Store, hub watch.Publisher) *Service {
	return &Service{store: store, hub: hub}
}

// Provision creates an account on behalf of an administrator. Only super
// administrators may create administrators or other super administrators;
// administrators may provision health promoters inside their own district.
func (s *Service) Provision(ctx context.Context, actor Profile, input ProvisionInput) (*Profile, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	switch actor.Role {
	case scope.RoleSuperAdministrator:
		// Unrestricted.
	case scope.RoleAdministrator:
		if input.Role != scope.RoleHealthPromoter || input.District != actor.District {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	hash, err := auth.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, Profile{
		ID:           uuid.New(),
		DisplayName:  input.DisplayName,
		Email:        input.Email,
		Role:         input.Role,
		District:     input.District,
		PersalNumber: input.PersalNumber,
		Phone:        input.Phone,
		Organization: input.Organization,
	}, hash)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, created)
	return created, nil
}

// Get fetches one profile, restricted to what the actor may see.
func (s *Service) Get(ctx context.Context, actor Profile, id uuid.UUID) (*Profile, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.ForUserDirectory(actor.Role, actor.District, actor.ID).Matches(p.ID, p.District) {
		return nil, ErrForbidden
	}
	return p, nil
}

// List returns the directory visible to the actor.
func (s *Service) List(ctx context.Context, actor Profile) ([]Profile, error) {
	return s.store.List(ctx, scope.ForUserDirectory(actor.Role, actor.District, actor.ID))
}

// Update edits profile fields. Users may edit themselves; administrators may
// edit profiles in their scope.
func (s *Service) Update(ctx context.Context, actor Profile, input UpdateInput) (*Profile, error) {
	if input.PersalNumber != nil {
		if err := ValidatePersal(*input.PersalNumber); err != nil {
			return nil, err
		}
	}

	if actor.ID != input.ID {
		target, err := s.store.Get(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		if !scope.ForUserDirectory(actor.Role, actor.District, actor.ID).Matches(target.ID, target.District) {
			return nil, ErrForbidden
		}
	}

	updated, err := s.store.Update(ctx, input)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated)
	return updated, nil
}

// ChangeRole assigns a new role/district pair. Super administrator only.
func (s *Service) ChangeRole(ctx context.Context, actor Profile, id uuid.UUID, role, district string) (*Profile, error) {
	if actor.Role != scope.RoleSuperAdministrator {
		return nil, ErrForbidden
	}
	if !scope.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	updated, err := s.store.SetRole(ctx, id, role, district)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated)
	return updated, nil
}

// Delete removes the profile record (not the identity row).
func (s *Service) Delete(ctx context.Context, actor Profile, id uuid.UUID) error {
	target, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != scope.RoleSuperAdministrator {
		if actor.Role != scope.RoleAdministrator || actor.District == "" || target.District != actor.District {
			return ErrForbidden
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(ctx, watch.Event{
		Collection: watch.CollectionUsers,
		District:   target.District,
		UserID:     id,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, p *Profile) {
	s.hub.Publish(ctx, watch.Event{
		Collection: watch.CollectionUsers,
		District:   p.District,
		UserID:     p.ID,
	})
}
