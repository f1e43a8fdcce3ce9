package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/user/blog-platform/internal"
	"github.com/user/blog-platform/internal/auth"
	"github.com/user/blog-platform/internal/transport"
	"github.com/user/blog-platform/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, dto CreateUserDTO) (*User, error)
	Update(ctx context.Context, dto UpdateUserDTO) (*User, error)
	Delete(ctx context.Context, id int64, actorID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	RateLimiter auth.RateLimiter

	createMax    int
	createWindow time.Duration
}

func NewHandler(svc ServiceAPI, limiter auth.RateLimiter, createMax int, createWindow time.Duration) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if createMax <= 0 {
		createMax = 3
	}
	if createWindow <= 0 {
		createWindow = time.Minute
	}
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		Service:      svc,
		RateLimiter:  limiter,
		createMax:    createMax,
		createWindow: createWindow,
	}
}

// GetCurrentUser handles GET /users/me.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetByID(r.Context(), sessionUser.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToResponse())
}

// ListUsers handles GET /admin/users. Password hashes never leave the
// service; responses carry the auth method instead.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := UsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, u.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// CreateUser handles POST /admin/users. Creation attempts are rate
// limited per client IP to bound account-creation abuse.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	identifier := "user-create-" + auth.ClientIP(r)
	result, err := h.RateLimiter.Check(r.Context(), identifier, h.createMax, h.createWindow)
	if err != nil {
		h.Logger.Error("rate limit check failed", "error", err)
		h.WriteError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if !result.Allowed {
		retryAfter := int64(time.Until(result.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		appErr := apperrors.NewRateLimitedError("too many requests, please wait", retryAfter)
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
		h.WriteError(w, appErr.StatusCode, appErr.GetDetailedMessage())
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u.ToResponse())
}

// UpdateUser handles PUT /admin/users.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.UserID == 0 {
		h.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	u, err := h.Service.Update(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToResponse())
}

// DeleteUser handles DELETE /admin/users?id=N.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idParam := r.URL.Query().Get("id")
	if idParam == "" {
		h.WriteError(w, http.StatusBadRequest, "user id is required")
		return
	}
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Service.Delete(r.Context(), id, sessionUser.ID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.IsAppError(err); ok {
		h.WriteError(w, appErr.StatusCode, appErr.GetDetailedMessage())
		return
	}
	h.Logger.Error("user handler: unexpected error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
