package api

import (
	"net/http"

	"github.com/lrivas/postly-be/internal/auth"
	"github.com/lrivas/postly-be/internal/authz"
	"github.com/lrivas/postly-be/internal/services"
)

// resolveCaller maps verified token claims to a live, active user row and
// stores it on the context. A token for a deactivated or vanished account
// fails here with 401, regardless of its expiry.
func resolveCaller(users services.UserServiceProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.FromContext(r.Context())
			if !ok {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}

			user, err := users.GetActiveUserByEmail(claims.Subject)
			if err != nil {
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), user)))
		})
	}
}

// requireRole denies the request with 403 unless the policy allows the
// caller's role to perform op. Runs before any handler store access.
func requireRole(op authz.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := auth.CallerFromContext(r.Context())
			if !ok {
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}
			if !authz.Allowed(caller.Role, op) {
				http.Error(w, "Permission denied", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
