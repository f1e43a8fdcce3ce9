package blog

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/user/blog-platform/internal"
	"github.com/user/blog-platform/internal/core/common/slug"
	"github.com/user/blog-platform/internal/core/common/validation"
	blogDatamodel "github.com/user/blog-platform/internal/core/datamodel/blog"
)

const relatedPostLimit = 3

type RepositoryAPI interface {
	GetAll(ctx context.Context, publishedOnly bool, categoryID int64) ([]*blogDatamodel.Blog, error)
	GetByID(ctx context.Context, id int64) (*blogDatamodel.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*blogDatamodel.Blog, error)
	GetRelated(ctx context.Context, categoryID int64, excludeID int64, limit int) ([]*blogDatamodel.Blog, error)
	Create(ctx context.Context, b *blogDatamodel.Blog) error
	Update(ctx context.Context, b *blogDatamodel.Blog) error
	Delete(ctx context.Context, id int64) error
}

// CategoryChecker is the slice of the category service blog creation
// needs.
type CategoryChecker interface {
	IsValidCategory(ctx context.Context, id int64) bool
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryChecker
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// PublicList returns published posts, optionally filtered by category.
func (s *Service) PublicList(ctx context.Context, categoryID int64) ([]*Blog, error) {
	records, err := s.repo.GetAll(ctx, true, categoryID)
	if err != nil {
		s.logger.Error("failed to list published blogs", "error", err)
		return nil, err
	}
	return fromDataModels(records), nil
}

// AdminList returns every post, drafts included.
func (s *Service) AdminList(ctx context.Context) ([]*Blog, error) {
	records, err := s.repo.GetAll(ctx, false, 0)
	if err != nil {
		s.logger.Error("failed to list blogs", "error", err)
		return nil, err
	}
	return fromDataModels(records), nil
}

// GetBySlug returns a published post for public rendering.
func (s *Service) GetBySlug(ctx context.Context, blogSlug string) (*Blog, error) {
	record, err := s.repo.GetBySlug(ctx, blogSlug)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsPublished {
		return nil, apperrors.ErrBlogNotFound
	}
	return FromDataModel(record), nil
}

// Related returns up to three other published posts from the same
// category.
func (s *Service) Related(ctx context.Context, blogSlug string) ([]*Blog, error) {
	record, err := s.repo.GetBySlug(ctx, blogSlug)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsPublished {
		return nil, apperrors.ErrBlogNotFound
	}

	related, err := s.repo.GetRelated(ctx, record.CategoryID, record.ID, relatedPostLimit)
	if err != nil {
		s.logger.Error("failed to load related blogs", "slug", blogSlug, "error", err)
		return nil, err
	}
	return fromDataModels(related), nil
}

// Create stores a new draft authored by the given user.
func (s *Service) Create(ctx context.Context, dto CreateBlogDTO, authorID int64) (*Blog, error) {
	if appErr := validateBlog(dto.Title, dto.Summary, dto.Content, dto.CategoryID); appErr != nil {
		return nil, appErr
	}

	if !s.categories.IsValidCategory(ctx, dto.CategoryID) {
		return nil, apperrors.ErrCategoryNotFound
	}

	title := validation.SanitizeInput(dto.Title)
	blogSlug := slug.Make(title)
	if existing, err := s.repo.GetBySlug(ctx, blogSlug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrSlugTaken
	}

	record := &blogDatamodel.Blog{
		Title:      title,
		Slug:       blogSlug,
		Summary:    validation.SanitizeInput(dto.Summary),
		Content:    dto.Content,
		CategoryID: dto.CategoryID,
		AuthorID:   authorID,
		Image:      strings.TrimSpace(dto.Image),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create blog", "slug", blogSlug, "error", err)
		return nil, err
	}

	s.logger.Info("blog created", "blog_id", record.ID, "slug", blogSlug, "author_id", authorID)
	return FromDataModel(record), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateBlogDTO) (*Blog, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.ErrBlogNotFound
	}

	if dto.Title != "" {
		title := validation.SanitizeInput(dto.Title)
		record.Title = title
		record.Slug = slug.Make(title)
	}
	if dto.Summary != "" {
		record.Summary = validation.SanitizeInput(dto.Summary)
	}
	if dto.Content != "" {
		record.Content = dto.Content
	}
	if dto.Image != "" {
		record.Image = strings.TrimSpace(dto.Image)
	}
	if dto.CategoryID != 0 {
		if !s.categories.IsValidCategory(ctx, dto.CategoryID) {
			return nil, apperrors.ErrCategoryNotFound
		}
		record.CategoryID = dto.CategoryID
	}

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update blog", "blog_id", id, "error", err)
		return nil, err
	}

	return FromDataModel(record), nil
}

// SetPublished toggles visibility. Gated by blog:publish at the router.
func (s *Service) SetPublished(ctx context.Context, id int64, published bool) (*Blog, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.ErrBlogNotFound
	}

	record.IsPublished = published
	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to toggle blog publication", "blog_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("blog publication toggled", "blog_id", id, "published", published)
	return FromDataModel(record), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return apperrors.ErrBlogNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete blog", "blog_id", id, "error", err)
		return err
	}

	s.logger.Info("blog deleted", "blog_id", id)
	return nil
}

func fromDataModels(records []*blogDatamodel.Blog) []*Blog {
	blogs := make([]*Blog, 0, len(records))
	for _, record := range records {
		blogs = append(blogs, FromDataModel(record))
	}
	return blogs
}

func validateBlog(title, summary, content string, categoryID int64) *apperrors.AppError {
	validator := validation.NewValidator()
	validator.Field("title", title).Required().MinLength(3).MaxLength(200)
	validator.Field("summary", summary).Required().MaxLength(500)
	validator.Field("content", content).Required()
	validator.Field("category_id", categoryID).Required()
	return validator.Validate()
}
