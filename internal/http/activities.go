package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/impilo/fieldreport/internal/activity"
	httpmiddleware "github.com/impilo/fieldreport/internal/http/middleware"
)

type createActivityRequest struct {
	Kind    activity.Kind   `json:"activityType"`
	Date    string          `json:"date"`
	Details json.RawMessage `json:"details"`
}

// CreateActivity logs a new field report for the caller.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD", nil)
		return
	}

	details, err := activity.DecodeDetails(req.Kind, req.Details)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	created, err := h.activities.Create(r.Context(), *actor, activity.CreateInput{
		Kind:    req.Kind,
		Date:    date,
		Details: details,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// ListActivities returns the reports visible to the caller.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	filter, err := activityFilterFromQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	activities, err := h.activities.List(r.Context(), *actor, filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	WriteJSON(w, http.StatusOK, activities)
}

// GetActivity fetches one report inside the caller's scope.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	a, err := h.activities.Get(r.Context(), *actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// DeleteActivity removes one report.
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	if err := h.activities.Delete(r.Context(), *actor, id); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func activityFilterFromQuery(r *http.Request) (activity.Filter, error) {
	var f activity.Filter
	q := r.URL.Query()

	if from := q.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return f, err
		}
		f.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return f, err
		}
		f.To = t
	}
	if user := q.Get("userId"); user != "" {
		id, err := uuid.Parse(user)
		if err != nil {
			return f, err
		}
		f.UserID = id
	}
	if kind := q.Get("type"); kind != "" {
		f.Kind = activity.Kind(kind)
	}
	return f, nil
}
