package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/user/blog-platform/internal/user"
	userDatamodel "github.com/user/blog-platform/internal/core/datamodel/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(email)).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// UpdateFields applies a partial update as one statement; role and
// permissions arrive together in the same map.
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&userDatamodel.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}
