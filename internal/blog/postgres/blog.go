package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/user/blog-platform/internal/blog"
	blogDatamodel "github.com/user/blog-platform/internal/core/datamodel/blog"
)

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) blog.RepositoryAPI {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) GetAll(ctx context.Context, publishedOnly bool, categoryID int64) ([]*blogDatamodel.Blog, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}

	var blogs []*blogDatamodel.Blog
	err := query.Find(&blogs).Error
	return blogs, err
}

func (r *BlogRepository) GetByID(ctx context.Context, id int64) (*blogDatamodel.Blog, error) {
	var b blogDatamodel.Blog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*blogDatamodel.Blog, error) {
	var b blogDatamodel.Blog
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BlogRepository) GetRelated(ctx context.Context, categoryID int64, excludeID int64, limit int) ([]*blogDatamodel.Blog, error) {
	var blogs []*blogDatamodel.Blog
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND is_published = ?", categoryID, excludeID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&blogs).Error
	return blogs, err
}

func (r *BlogRepository) Create(ctx context.Context, b *blogDatamodel.Blog) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BlogRepository) Update(ctx context.Context, b *blogDatamodel.Blog) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&blogDatamodel.Blog{}, id).Error
}
