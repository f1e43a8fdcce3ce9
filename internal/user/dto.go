package user

import (
	"time"

	"github.com/user/blog-platform/internal/auth"
)

// CreateUserDTO is the management API shape for direct user creation.
type CreateUserDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserDTO carries a role change and/or activation toggle.
type UpdateUserDTO struct {
	UserID   int64   `json:"user_id"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UserResponse is the safe outward shape: the password is reduced to
// the authentication method, never the hash.
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Avatar      string     `json:"avatar,omitempty"`
	Role        auth.Role  `json:"role"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"is_active"`
	AuthMethod  string     `json:"auth_method"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Avatar:      u.Avatar,
		Role:        u.Role,
		Permissions: u.Permissions,
		IsActive:    u.IsActive,
		AuthMethod:  u.AuthMethod(),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
