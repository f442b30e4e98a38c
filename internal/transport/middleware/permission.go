package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/company-management/internal/authz"
	"github.com/frahmantamala/company-management/internal/identity"
)

// RequireRole denies the request unless the principal's role is in the
// allowed set. Runs after the auth middleware.
func RequireRole(allowed ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := identity.FromContext(r.Context())
			if !ok || principal == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := authz.RoleGate(principal, allowed...); err != nil {
				slog.Warn("access denied: role not allowed",
					"user_id", principal.UserID,
					"role", principal.Role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission checks the employee matrix for module/action. Admins
// pass through the gate's bypass.
func RequirePermission(module string, action identity.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := identity.FromContext(r.Context())
			if !ok || principal == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := authz.PermissionGate(principal, module, action); err != nil {
				slog.Warn("access denied: missing permission",
					"user_id", principal.UserID,
					"module", module,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
