package blog

import (
	"time"

	blogDatamodel "github.com/user/blog-platform/internal/core/datamodel/blog"
)

type Blog struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	CategoryID  int64     `json:"category_id"`
	AuthorID    int64     `json:"author_id"`
	Image       string    `json:"image,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToDataModel(b *Blog) *blogDatamodel.Blog {
	return &blogDatamodel.Blog{
		ID:          b.ID,
		Title:       b.Title,
		Slug:        b.Slug,
		Summary:     b.Summary,
		Content:     b.Content,
		CategoryID:  b.CategoryID,
		AuthorID:    b.AuthorID,
		Image:       b.Image,
		IsPublished: b.IsPublished,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func FromDataModel(b *blogDatamodel.Blog) *Blog {
	return &Blog{
		ID:          b.ID,
		Title:       b.Title,
		Slug:        b.Slug,
		Summary:     b.Summary,
		Content:     b.Content,
		CategoryID:  b.CategoryID,
		AuthorID:    b.AuthorID,
		Image:       b.Image,
		IsPublished: b.IsPublished,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
