package blog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	apperrors "github.com/user/blog-platform/internal"
	"github.com/user/blog-platform/internal/auth"
	"github.com/user/blog-platform/internal/transport"
)

type ServiceAPI interface {
	PublicList(ctx context.Context, categoryID int64) ([]*Blog, error)
	AdminList(ctx context.Context) ([]*Blog, error)
	GetBySlug(ctx context.Context, slug string) (*Blog, error)
	Related(ctx context.Context, slug string) ([]*Blog, error)
	Create(ctx context.Context, dto CreateBlogDTO, authorID int64) (*Blog, error)
	Update(ctx context.Context, id int64, dto UpdateBlogDTO) (*Blog, error)
	SetPublished(ctx context.Context, id int64, published bool) (*Blog, error)
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

// ListBlogs handles GET /blogs. Only published posts are returned; an
// optional category_id query parameter narrows the listing.
func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = parsed
	}

	blogs, err := h.Service.PublicList(r.Context(), categoryID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BlogsResponse{Blogs: blogs})
}

// GetBlog handles GET /blogs/{slug}.
func (h *Handler) GetBlog(w http.ResponseWriter, r *http.Request) {
	b, err := h.Service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

// GetRelatedBlogs handles GET /blogs/{slug}/related.
func (h *Handler) GetRelatedBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.Service.Related(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BlogsResponse{Blogs: blogs})
}

// ListAllBlogs handles GET /admin/blogs, drafts included.
func (h *Handler) ListAllBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.Service.AdminList(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BlogsResponse{Blogs: blogs})
}

// CreateBlog handles POST /admin/blogs. The author is the signed-in
// user from the request context.
func (h *Handler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateBlogDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.Create(r.Context(), dto, sessionUser.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, b)
}

// UpdateBlog handles PUT /admin/blogs/{id}.
func (h *Handler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid blog id")
		return
	}

	var dto UpdateBlogDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

// PublishBlog handles PATCH /admin/blogs/{id}/publish.
func (h *Handler) PublishBlog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid blog id")
		return
	}

	var dto PublishBlogDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.SetPublished(r.Context(), id, dto.IsPublished)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

// DeleteBlog handles DELETE /admin/blogs/{id}.
func (h *Handler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid blog id")
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
	h.Logger.Error("blog handler: unexpected error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
