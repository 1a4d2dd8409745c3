package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impilo/fieldreport/internal/auth"
	"github.com/impilo/fieldreport/internal/profile"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	mgr := auth.NewJWTManager(testSecret, time.Minute)
	handler := Auth(mgr)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/activities", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH")
}

func TestAuthInjectsClaims(t *testing.T) {
	mgr := auth.NewJWTManager(testSecret, time.Minute)
	signed, _, err := mgr.GenerateAccessToken("user-1", "Administrator")
	require.NoError(t, err)

	var gotSubject, gotRole string
	handler := Auth(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = GetSubject(r.Context())
		gotRole = GetRole(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotSubject)
	assert.Equal(t, "Administrator", gotRole)
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles("Super Administrator")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContextKeyRole, "Health Promoter"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/profiles", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContextKeyRole, "Super Administrator"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubLoader struct {
	profiles map[uuid.UUID]*profile.Profile
}

func (s *stubLoader) Get(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func TestWithProfileLoadsCaller(t *testing.T) {
	p := &profile.Profile{ID: uuid.New(), DisplayName: "Thandi Nkosi", Role: "Health Promoter"}
	loader := &stubLoader{profiles: map[uuid.UUID]*profile.Profile{p.ID: p}}

	var got *profile.Profile
	handler := WithProfile(loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetProfile(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContextKeySubject, p.ID.String()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p, got)
}

func TestWithProfileUnknownSubject(t *testing.T) {
	loader := &stubLoader{profiles: map[uuid.UUID]*profile.Profile{}}
	handler := WithProfile(loader)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContextKeySubject, uuid.NewString()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
