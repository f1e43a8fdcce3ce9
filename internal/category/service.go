package category

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/user/blog-platform/internal"
	"github.com/user/blog-platform/internal/core/common/slug"
	"github.com/user/blog-platform/internal/core/common/validation"
	categoryDatamodel "github.com/user/blog-platform/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	GetBySlug(ctx context.Context, slug string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Update(ctx context.Context, category *categoryDatamodel.Category) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetAllCategories returns active categories for public listing.
func (s *Service) GetAllCategories(ctx context.Context) ([]CategoryResponse, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	var responses []CategoryResponse
	for _, record := range records {
		domainCategory := FromDataModel(record)
		if domainCategory.IsActiveCategory() {
			responses = append(responses, domainCategory.ToResponse())
		}
	}

	return responses, nil
}

func (s *Service) GetBySlug(ctx context.Context, categorySlug string) (*Category, error) {
	record, err := s.repo.GetBySlug(ctx, categorySlug)
	if err != nil {
		s.logger.Error("failed to get category by slug", "slug", categorySlug, "error", err)
		return nil, err
	}
	if record == nil {
		return nil, apperrors.ErrCategoryNotFound
	}
	return FromDataModel(record), nil
}

// IsValidCategory reports whether an active category with the given id
// exists; blog creation checks this before accepting a post.
func (s *Service) IsValidCategory(ctx context.Context, id int64) bool {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("error checking category validity", "id", id, "error", err)
		return false
	}
	return record != nil && record.IsActive
}

func (s *Service) Create(ctx context.Context, dto CreateCategoryDTO) (*Category, error) {
	name := validation.SanitizeInput(dto.Name)
	if appErr := validateName(name); appErr != nil {
		return nil, appErr
	}

	categorySlug := slug.Make(name)
	if existing, err := s.repo.GetBySlug(ctx, categorySlug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrSlugTaken
	}

	c := NewCategory(name, categorySlug, strings.TrimSpace(dto.Description))
	record := ToDataModel(c)
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create category", "name", name, "error", err)
		return nil, err
	}

	s.logger.Info("category created", "category_id", record.ID, "slug", categorySlug)
	return FromDataModel(record), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateCategoryDTO) (*Category, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.ErrCategoryNotFound
	}

	if dto.Name != "" {
		name := validation.SanitizeInput(dto.Name)
		if appErr := validateName(name); appErr != nil {
			return nil, appErr
		}
		record.Name = name
		record.Slug = slug.Make(name)
	}
	if dto.Description != "" {
		record.Description = strings.TrimSpace(dto.Description)
	}

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update category", "category_id", id, "error", err)
		return nil, err
	}

	return FromDataModel(record), nil
}

// Delete deactivates a category; posts referencing it keep their link.
func (s *Service) Delete(ctx context.Context, id int64) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return apperrors.ErrCategoryNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete category", "category_id", id, "error", err)
		return err
	}

	s.logger.Info("category deactivated", "category_id", id)
	return nil
}

func validateName(name string) *apperrors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", name).Required().MinLength(2).MaxLength(50)
	return validator.Validate()
}
