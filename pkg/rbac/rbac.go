// Package rbac provides role and verification gates as middleware.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

// RequireRole allows only identities holding role.
// middleware.Authenticate must run first.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.RequireRole(middleware.IdentityFromCtx(r.Context()), role); err != nil {
				response.FromError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireVerified allows only identities with a verified email.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireVerified(middleware.IdentityFromCtx(r.Context())); err != nil {
			response.FromError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
