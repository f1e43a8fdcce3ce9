package category

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	apperrors "github.com/user/blog-platform/internal"
	"github.com/user/blog-platform/internal/transport"
)

type ServiceAPI interface {
	GetAllCategories(ctx context.Context) ([]CategoryResponse, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	IsValidCategory(ctx context.Context, id int64) bool
	Create(ctx context.Context, dto CreateCategoryDTO) (*Category, error)
	Update(ctx context.Context, id int64, dto UpdateCategoryDTO) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCategories handles GET /categories, the public listing.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories(r.Context())
	if err != nil {
		h.Logger.Error("GetCategories: failed to get categories", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get categories")
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: categories,
	})
}

// CreateCategory handles POST /admin/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CreateCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c.ToResponse())
}

// UpdateCategory handles PUT /admin/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var dto UpdateCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

// DeleteCategory handles DELETE /admin/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
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
	h.Logger.Error("category handler: unexpected error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
