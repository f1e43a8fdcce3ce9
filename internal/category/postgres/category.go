package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/user/blog-platform/internal/category"
	categoryDatamodel "github.com/user/blog-platform/internal/core/datamodel/category"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Save(cat).Error
}

// Delete is a soft delete: the category is deactivated so existing posts
// keep a valid reference.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&categoryDatamodel.Category{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
