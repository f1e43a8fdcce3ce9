package auth

import (
	"log/slog"
	"net/http"

	apperrors "github.com/user/blog-platform/internal"
)

// RBACAuthorization is the operation-level gate: it inspects the
// principal the session middleware placed into the request context and
// requires a specific permission token. Missing principal is 401,
// insufficient permission set is 403.
type RBACAuthorization struct {
	service ServiceAPI
	logger  *slog.Logger
}

func NewRBACAuthorization(service ServiceAPI, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		service: service,
		logger:  logger,
	}
}

// RequirePermission gates a handler behind one permission token, trusting
// the permission set loaded at session validation. Suitable for content
// operations where a slightly stale set is acceptable.
func (ra *RBACAuthorization) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasPermission(permission) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", permission,
					"user_permissions", user.Permissions)
				http.Error(w, apperrors.ErrMissingPermission.Message, apperrors.ErrMissingPermission.StatusCode)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireFreshPermission re-reads the permission set from the user
// directory instead of trusting the session claim. Used in front of
// security-sensitive mutations such as user management, so a revoked
// role takes effect immediately.
func (ra *RBACAuthorization) RequireFreshPermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			fresh, err := ra.service.GetUserWithPermissions(r.Context(), user.ID)
			if err != nil {
				// Fail closed on directory trouble.
				ra.logger.ErrorContext(r.Context(), "authorization check failed: directory read",
					"error", err, "user_id", user.ID, "permission", permission)
				http.Error(w, apperrors.ErrMissingPermission.Message, apperrors.ErrMissingPermission.StatusCode)
				return
			}

			if !fresh.HasPermission(permission) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", permission,
					"user_permissions", fresh.Permissions)
				http.Error(w, apperrors.ErrMissingPermission.Message, apperrors.ErrMissingPermission.StatusCode)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), fresh)))
		})
	}
}
