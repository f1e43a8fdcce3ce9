package user

import "time"

// User is the persisted shape of a principal. PasswordHash is nil for
// provider-only accounts; ProviderID is nil for credential-only accounts.
// Permissions always mirror the canonical set for Role.
type User struct {
	ID           int64      `gorm:"primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	Name         string     `gorm:"column:name;not null"`
	PasswordHash *string    `gorm:"column:password_hash"`
	Avatar       string     `gorm:"column:avatar"`
	Role         string     `gorm:"column:role;not null;default:Member"`
	Permissions  []string   `gorm:"column:permissions;serializer:json"`
	ProviderID   *string    `gorm:"column:provider_id;uniqueIndex"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
}

func (User) TableName() string {
	return "users"
}
