package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/impilo/fieldreport/internal/http/middleware"
	"github.com/impilo/fieldreport/internal/profile"
)

type provisionRequest struct {
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	District     string `json:"district"`
	PersalNumber string `json:"persalNumber"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
}

type updateProfileRequest struct {
	DisplayName  *string `json:"displayName"`
	PersalNumber *string `json:"persalNumber"`
	Phone        *string `json:"phone"`
	Organization *string `json:"organization"`
}

type changeRoleRequest struct {
	Role     string `json:"role"`
	District string `json:"district"`
}

// ProvisionProfile creates an account on behalf of an administrator.
func (h *Handler) ProvisionProfile(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	created, err := h.profiles.Provision(r.Context(), *actor, profile.ProvisionInput{
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		District:     req.District,
		PersalNumber: req.PersalNumber,
		Phone:        req.Phone,
		Organization: req.Organization,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// ListProfiles returns the directory visible to the caller.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	actor := httpmiddleware.GetProfile(r.Context())
	profiles, err := h.profiles.List(r.Context(), *actor)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	WriteJSON(w, http.StatusOK, profiles)
}

// GetProfile fetches one profile inside the caller's scope.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	p, err := h.profiles.Get(r.Context(), *actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// UpdateProfile edits profile fields.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	updated, err := h.profiles.Update(r.Context(), *actor, profile.UpdateInput{
		ID:           id,
		DisplayName:  req.DisplayName,
		PersalNumber: req.PersalNumber,
		Phone:        req.Phone,
		Organization: req.Organization,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// ChangeProfileRole assigns a new role/district pair.
func (h *Handler) ChangeProfileRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	updated, err := h.profiles.ChangeRole(r.Context(), *actor, id, req.Role, req.District)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteProfile removes a profile record.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	if err := h.profiles.Delete(r.Context(), *actor, id); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
