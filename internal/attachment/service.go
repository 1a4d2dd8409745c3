package attachment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/impilo/fieldreport/internal/alerts"
	"github.com/impilo/fieldreport/internal/observability"
	"github.com/impilo/fieldreport/internal/profile"
	"github.com/impilo/fieldreport/internal/scope"
	"github.com/impilo/fieldreport/internal/storage"
	"github.com/impilo/fieldreport/internal/watch"
)

// Store captures the persistence operations the service needs.
type Store interface {
	Create(ctx context.Context, a Attachment) (*Attachment, error)
	SetURLs(ctx context.Context, id uuid.UUID, registerURL *string, pictureURLs []string) (*Attachment, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Get(ctx context.Context, id uuid.UUID) (*Attachment, error)
	List(ctx context.Context, s scope.Scope) ([]Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const collectionPath = "attachments"

// Service runs the attachment upload pipeline: record first, files second,
// one URL patch at the end.
type Service struct {
	store    Store
	uploader storage.Uploader
	tracker  *Tracker
	hub      watch.Publisher
	emitter  *alerts.Emitter
	metrics  *observability.Metrics
	logger   zerolog.Logger
	maxBytes int64
	now      func() time.Time
}

// NewService creates an attachment service. maxBytes caps individual file
// sizes; zero means unlimited.
func NewService(store Store, uploader storage.Uploader, tracker *Tracker, hub watch.Publisher,
	emitter *alerts.Emitter, metrics *observability.Metrics, logger zerolog.Logger, maxBytes int64) *Service {
	return &Service{
		store:    store,
		uploader: uploader,
		tracker:  tracker,
		hub:      hub,
		emitter:  emitter,
		metrics:  metrics,
		logger:   logger,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Tracker exposes the progress tracker for the polling endpoint.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// Submit creates the attachment record, uploads every file concurrently, and
// patches the final URLs in a single update. The record is visible (pending)
// from the moment of creation. On any upload failure the record is marked
// failed and already-uploaded blobs are left in place; re-submission creates
// a new record rather than reusing the orphaned keys.
func (s *Service) Submit(ctx context.Context, actor profile.Profile, input CreateInput) (*Attachment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkSizes(input); err != nil {
		return nil, err
	}

	record := Attachment{
		ID:       uuid.New(),
		UserID:   actor.ID,
		UserName: actor.DisplayName,
		District: actor.District,
		Title:    input.Title,
		Notes:    input.Notes,
		Date:     input.Date,
	}
	created, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, s.deny(alerts.OpCreate, record, err)
	}
	s.publish(ctx, created)

	s.tracker.Begin(created.ID, input.FileCount())
	started := s.now()

	var (
		registerURL *string
		pictureURLs = make([]string, len(input.Pictures))
	)

	g, gctx := errgroup.WithContext(ctx)
	fileIdx := 0
	if input.Register != nil {
		idx := fileIdx
		file := *input.Register
		g.Go(func() error {
			url, err := s.uploadFile(gctx, created.ID, idx, file)
			if err != nil {
				return fmt.Errorf("register %q: %w", file.Name, err)
			}
			registerURL = &url
			return nil
		})
		fileIdx++
	}
	for i, file := range input.Pictures {
		idx := fileIdx + i
		i, file := i, file
		g.Go(func() error {
			url, err := s.uploadFile(gctx, created.ID, idx, file)
			if err != nil {
				return fmt.Errorf("picture %q: %w", file.Name, err)
			}
			pictureURLs[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.tracker.Fail(created.ID)
		s.metrics.ObserveUpload("failure", totalBytes(input), s.now().Sub(started))

		// Best effort: the record must not stay pending forever. Uses a
		// fresh context because the request's may already be cancelled.
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if markErr := s.store.MarkFailed(markCtx, created.ID, err.Error()); markErr != nil {
			s.logger.Error().Err(markErr).Stringer("attachment", created.ID).Msg("mark upload failed")
		}
		s.publish(ctx, created)
		return nil, err
	}

	patched, err := s.store.SetURLs(ctx, created.ID, registerURL, pictureURLs)
	if err != nil {
		s.tracker.Fail(created.ID)
		s.metrics.ObserveUpload("failure", totalBytes(input), s.now().Sub(started))
		return nil, s.deny(alerts.OpUpdate, map[string]any{
			"id":          created.ID,
			"registerUrl": registerURL,
			"pictureUrls": pictureURLs,
		}, err)
	}

	s.tracker.Done(created.ID)
	s.metrics.ObserveUpload("success", totalBytes(input), s.now().Sub(started))
	s.publish(ctx, patched)
	return patched, nil
}

// Get fetches one attachment, restricted to the actor's scope.
func (s *Service) Get(ctx context.Context, actor profile.Profile, id uuid.UUID) (*Attachment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Scope(actor).Matches(a.UserID, a.District) {
		return nil, s.deny(alerts.OpGet, id.String(), ErrForbidden)
	}
	return a, nil
}

// List returns the attachments visible to the actor, newest first.
func (s *Service) List(ctx context.Context, actor profile.Profile) ([]Attachment, error) {
	return s.store.List(ctx, s.Scope(actor))
}

// Delete removes an attachment record. Same authorisation as activities:
// owner, district administrator, or super administrator.
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
		Collection: watch.CollectionAttachments,
		District:   a.District,
		UserID:     a.UserID,
	})
	return nil
}

// Scope resolves the actor's read scope over the attachment collection.
func (s *Service) Scope(actor profile.Profile) scope.Scope {
	return scope.ForProfile(actor.Role, actor.District, actor.ID)
}

func (s *Service) uploadFile(ctx context.Context, attachmentID uuid.UUID, fileIdx int, file FileInput) (string, error) {
	result, err := s.uploader.Upload(ctx, storage.UploadInput{
		Key:         ObjectKey(attachmentID, s.now(), file.Name),
		Body:        file.Body,
		ContentType: file.ContentType,
		Progress: func(pct int) {
			s.tracker.Set(attachmentID, fileIdx, pct)
		},
	})
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

func (s *Service) checkSizes(input CreateInput) error {
	if s.maxBytes <= 0 {
		return nil
	}
	check := func(f FileInput) error {
		if int64(len(f.Body)) > s.maxBytes {
			return fmt.Errorf("file %q exceeds the %d byte limit", f.Name, s.maxBytes)
		}
		return nil
	}
	if input.Register != nil {
		if err := check(*input.Register); err != nil {
			return err
		}
	}
	for _, f := range input.Pictures {
		if err := check(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, a *Attachment) {
	s.hub.Publish(ctx, watch.Event{
		Collection: watch.CollectionAttachments,
		District:   a.District,
		UserID:     a.UserID,
	})
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

func totalBytes(input CreateInput) int64 {
	var n int64
	if input.Register != nil {
		n += int64(len(input.Register.Body))
	}
	for _, f := range input.Pictures {
		n += int64(len(f.Body))
	}
	return n
}
