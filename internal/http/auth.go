package http

import (
	"encoding/json"
	"errors"
	"net/http"

	httpmiddleware "github.com/impilo/fieldreport/internal/http/middleware"

	"github.com/impilo/fieldreport/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Login authenticates by email and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			WriteError(w, http.StatusUnauthorized, "AUTH", "invalid credentials", nil)
		case errors.Is(err, auth.ErrAccountDisabled):
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "account disabled", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, session)
}

// Refresh rotates a refresh token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "refreshToken is required", nil)
		return
	}

	session, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefresh) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "invalid refresh token", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	WriteJSON(w, http.StatusOK, session)
}

// Logout revokes a refresh token. Always succeeds from the caller's view.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RequestPasswordReset issues a reset token. The response never reveals
// whether the account exists.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "email is required", nil)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ResetPassword consumes a reset token.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "token is required", nil)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidReset) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "invalid reset token", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the caller's own profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, httpmiddleware.GetProfile(r.Context()))
}
