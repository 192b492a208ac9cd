package middleware

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

type identityKey struct{}

// WithIdentity returns ctx carrying user.
func WithIdentity(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFromCtx returns the authenticated user, or nil for guests.
func IdentityFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(identityKey{}).(*models.User)
	return u
}

// Authenticate rejects requests without a valid bearer token and attaches
// the identity to the request context.
func Authenticate(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := gate.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				response.FromError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is presented and
// otherwise lets the request through as a guest.
func OptionalAuth(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				if user, err := gate.Authenticate(r.Context(), r.Header.Get("Authorization")); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
