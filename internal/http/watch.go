package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/impilo/fieldreport/internal/activity"
	"github.com/impilo/fieldreport/internal/alerts"
	httpmiddleware "github.com/impilo/fieldreport/internal/http/middleware"
	"github.com/impilo/fieldreport/internal/scope"
	"github.com/impilo/fieldreport/internal/watch"
)

// WatchActivities streams scoped activity snapshots over SSE: the current
// result set immediately, then a fresh one after every matching change.
func (h *Handler) WatchActivities(w http.ResponseWriter, r *http.Request) {
	actor := httpmiddleware.GetProfile(r.Context())
	s := h.activities.Scope(*actor)

	query := func(ctx context.Context, s scope.Scope) ([]activity.Activity, error) {
		return h.activityRepo.List(ctx, s, activity.Filter{})
	}
	stream := watch.Subscribe(r.Context(), h.hub, watch.CollectionActivities, s, query)
	streamSSE(w, r, h, watch.CollectionActivities, stream)
}

// WatchProfiles streams the caller-visible user directory over SSE.
func (h *Handler) WatchProfiles(w http.ResponseWriter, r *http.Request) {
	actor := httpmiddleware.GetProfile(r.Context())
	s := scope.ForUserDirectory(actor.Role, actor.District, actor.ID)

	stream := watch.Subscribe(r.Context(), h.hub, watch.CollectionUsers, s, h.profileRepo.List)
	streamSSE(w, r, h, watch.CollectionUsers, stream)
}

// WatchAttachments streams scoped attachment snapshots over SSE.
func (h *Handler) WatchAttachments(w http.ResponseWriter, r *http.Request) {
	actor := httpmiddleware.GetProfile(r.Context())
	s := h.attachments.Scope(*actor)

	stream := watch.Subscribe(r.Context(), h.hub, watch.CollectionAttachments, s, h.attachRepo.List)
	streamSSE(w, r, h, watch.CollectionAttachments, stream)
}

// streamSSE writes each snapshot as one SSE data event until the client
// disconnects or the stream errors out. Query failures surface once through
// the alerts emitter and close the stream; the client must re-subscribe.
func streamSSE[T any](w http.ResponseWriter, r *http.Request, h *Handler, collection string, stream *watch.Stream[T]) {
	defer stream.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "streaming unsupported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.metrics.SubscriptionOpened()
	defer h.metrics.SubscriptionClosed()

	for {
		select {
		case <-r.Context().Done():
			return
		case err := <-stream.Err:
			h.emitter.Emit(alerts.NewPermissionError(collection, alerts.OpList, nil, err))
			fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
			flusher.Flush()
			return
		case snapshot, ok := <-stream.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(snapshot)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			h.metrics.SnapshotDelivered()
		}
	}
}
