package activity

import (
	"context"

	"github.com/google/uuid"

	"github.com/impilo/fieldreport/internal/alerts"
	"github.com/impilo/fieldreport/internal/profile"
	"github.com/impilo/fieldreport/internal/scope"
	"github.com/impilo/fieldreport/internal/watch"
)

// Store captures the persistence operations the service needs.
type Store interface {
	Create(ctx context.Context, a Activity) (*Activity, error)
	Get(ctx context.Context, id uuid.UUID) (*Activity, error)
	List(ctx context.Context, s scope.Scope, f Filter) ([]Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const collectionPath = "activities"

// Service holds the activity-log business rules.
type Service struct {
	store   Store
	hub     watch.Publisher
	emitter *alerts.Emitter
}

// NewService creates an activity service.
func NewService(store Store, hub watch.Publisher, emitter *alerts.Emitter) *Service {
	return &Service{store: store, hub: hub, emitter: emitter}
}

// Create logs a new activity on behalf of the actor. Ownership and district
// always come from the actor's profile; a submitted owner is ignored.
func (s *Service) Create(ctx context.Context, actor profile.Profile, input CreateInput) (*Activity, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	record := Activity{
		ID:       uuid.New(),
		UserID:   actor.ID,
		UserName: actor.DisplayName,
		District: actor.District,
		Kind:     input.Kind,
		Date:     input.Date,
		Details:  input.Details,
	}

	created, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, s.deny(alerts.OpCreate, record, err)
	}

	s.hub.Publish(ctx, watch.Event{
		Collection: watch.CollectionActivities,
		District:   created.District,
		UserID:     created.UserID,
	})
	return created, nil
}

// Get fetches one activity, restricted to the actor's scope.
func (s *Service) Get(ctx context.Context, actor profile.Profile, id uuid.UUID) (*Activity, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Scope(actor).Matches(a.UserID, a.District) {
		return nil, s.deny(alerts.OpGet, id.String(), ErrForbidden)
	}
	return a, nil
}

// List returns the activities visible to the actor, newest first.
func (s *Service) List(ctx context.Context, actor profile.Profile, f Filter) ([]Activity, error) {
	return s.store.List(ctx, s.Scope(actor), f)
}

// Delete removes an activity. Authors may delete their own records;
// administrators may delete records in their district; super administrators
// may delete anything.
func (s *Service) Delete(ctx context.Context, actor profile.Profile, id uuid.UUID) error {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	allowed := a.UserID == actor.ID ||
		actor.Role == scope.RoleSuperAdministrator ||
		(actor.Role == scope.RoleAdministrator && actor.District != "" && a.District == actor.District)
	if !allowed {
		return s.deny(alerts.OpDelete, id.String(), ErrForbidden)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.hub.Publish(ctx, watch.Event{
		Collection: watch.CollectionActivities,
		District:   a.District,
		UserID:     a.UserID,
	})
	return nil
}

// Scope resolves the actor's read scope over the activity collection.
func (s *Service) Scope(actor profile.Profile) scope.Scope {
	return scope.ForProfile(actor.Role, actor.District, actor.ID)
}

// deny wraps a rejection with its collection path, operation and attempted
// payload, emits it, and returns it for the caller to propagate.
func (s *Service) deny(op alerts.Operation, payload any, err error) error {
	pe := alerts.NewPermissionError(collectionPath, op, payload, err)
	if s.emitter != nil {
		s.emitter.Emit(pe)
	}
	return pe
}
