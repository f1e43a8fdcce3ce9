package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/user/blog-platform/internal"
	"github.com/user/blog-platform/internal/auth"
	userDatamodel "github.com/user/blog-platform/internal/core/datamodel/user"
)

// Repository implements auth.UserDirectory over gorm. Every query runs
// under a bounded timeout so a slow store fails closed instead of
// hanging an authentication attempt.
type Repository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

func NewRepository(db *gorm.DB, queryTimeout time.Duration) *Repository {
	return &Repository{db: db, queryTimeout: queryTimeout}
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(email)).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *userDatamodel.User) error {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Create(u).Error
}

// UpdateFields applies a partial update in a single statement, so fields
// that must move together (role and permissions) never disagree.
func (r *Repository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
