package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/impilo/fieldreport/internal/profile"
)

const ContextKeyProfile contextKey = "profile"

// ProfileLoader resolves the caller's profile from the authenticated subject.
type ProfileLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

// WithProfile loads the caller's profile into the context. Must run after
// Auth. Role and district scoping downstream rely on this record, so a
// missing profile ends the request.
func WithProfile(loader ProfileLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(GetSubject(r.Context()))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "invalid subject")
				return
			}

			p, err := loader.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, profile.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "AUTH", "profile not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyProfile, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetProfile recovers the caller's profile from the context.
func GetProfile(ctx context.Context) *profile.Profile {
	val, _ := ctx.Value(ContextKeyProfile).(*profile.Profile)
	return val
}
