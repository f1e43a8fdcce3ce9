package user

import (
	"time"

	"github.com/user/blog-platform/internal/auth"
	userDatamodel "github.com/user/blog-platform/internal/core/datamodel/user"
)

// User is the internal domain model for a directory record.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash *string    `json:"-"`
	Avatar       string     `json:"avatar,omitempty"`
	Role         auth.Role  `json:"role"`
	Permissions  []string   `json:"permissions"`
	ProviderID   *string    `json:"-"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) HasPermission(permission string) bool {
	return auth.HasPermission(u.Permissions, permission)
}

func (u *User) IsOwner() bool {
	return u.Role == auth.RoleOwner
}

// AuthMethod reports how the account can sign in, without exposing the
// hash itself.
func (u *User) AuthMethod() string {
	if u.PasswordHash != nil {
		return "credentials"
	}
	if u.ProviderID != nil {
		return "provider"
	}
	return "none"
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Avatar:       u.Avatar,
		Role:         string(u.Role),
		Permissions:  u.Permissions,
		ProviderID:   u.ProviderID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Avatar:       u.Avatar,
		Role:         auth.Role(u.Role),
		Permissions:  u.Permissions,
		ProviderID:   u.ProviderID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}
