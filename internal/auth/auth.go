package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// claimsVersion tags the session schema. Tokens carrying a different
// version are rejected rather than interpreted.
const claimsVersion = 1

var (
	// ErrAuthenticationFailed covers wrong password, unknown email,
	// inactive account and provider-only account alike. The caller must
	// not be able to tell these apart; the distinction is logged
	// server-side only.
	ErrAuthenticationFailed = errors.New("authentication failed")

	ErrInvalidSession = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")

	// ErrDirectoryUnavailable means the user store could not be reached
	// within its timeout. Authentication fails closed.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
)

// Claims is the signed content of a session token.
type Claims struct {
	Version       int      `json:"v"`
	UserID        int64    `json:"user_id"`
	Email         string   `json:"email"`
	Role          string   `json:"role"`
	Permissions   []string `json:"permissions"`
	ProviderToken string   `json:"provider_token,omitempty"`
	jwt.RegisteredClaims
}

// Session is the authenticated view handed to route handlers.
type Session struct {
	Token       string    `json:"token"`
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Session) HasPermission(permission string) bool {
	return HasPermission(s.Permissions, permission)
}

// SessionUser is the principal placed into the request context by the
// session middleware.
type SessionUser struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *SessionUser) HasPermission(permission string) bool {
	return HasPermission(u.Permissions, permission)
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(ContextUserKey).(*SessionUser)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// ProviderProfile is what a completed external handshake yields.
type ProviderProfile struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}
