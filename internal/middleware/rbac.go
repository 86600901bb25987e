package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"akreditasi-jurnal/internal/auth"
)

// RBACMiddleware handles role-based access control on the roles of the token
type RBACMiddleware struct {
	authorizer auth.Authorizer
}

// NewRBACMiddleware creates a new RBAC middleware
func NewRBACMiddleware(authorizer auth.Authorizer) *RBACMiddleware {
	return &RBACMiddleware{authorizer: authorizer}
}

// RequirePermission checks if any role of the user grants action on resource
func (m *RBACMiddleware) RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			if !m.authorizer.Authorize(GetUserRoles(r), action, resource) {
				slog.Warn("Permission denied", "user_id", userID, "resource", resource, "action", action)
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole checks if the user has any of the required roles
func (m *RBACMiddleware) RequireAnyRole(roleNames ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUserID(r); !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			for _, role := range GetUserRoles(r) {
				if slices.Contains(roleNames, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
