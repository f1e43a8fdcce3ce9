package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	userDatamodel "github.com/user/blog-platform/internal/core/datamodel/user"
)

// UserDirectory is the slice of the user store that authentication
// consumes. Lookups and writes carry the caller's context so directory
// timeouts propagate.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	FindByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

// ErrUserNotFound is returned by UserDirectory implementations when no
// record matches.
var ErrUserNotFound = errors.New("user not found")

type TokenGenerator interface {
	GenerateSessionToken(u *userDatamodel.User, providerToken string) (token string, expiresAt time.Time, err error)
	ValidateSessionToken(tokenString string) (*Claims, error)
}

type ServiceAPI interface {
	SignInWithCredentials(ctx context.Context, dto LoginDTO) (*Session, error)
	SignInWithProvider(ctx context.Context, profile ProviderProfile, providerToken string) (*Session, error)
	ValidateSessionToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*SessionUser, error)
	HashPassword(password string) (string, error)
}

// Service is the session issuer: it runs both authentication paths and
// stamps role plus permissions into the session token.
type Service struct {
	directory  UserDirectory
	tokenGen   TokenGenerator
	bcryptCost int
	logger     *slog.Logger
}

func NewService(directory UserDirectory, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.DefaultCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		directory:  directory,
		tokenGen:   tokenGen,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// SignInWithCredentials authenticates an email/password pair. Every
// failure mode collapses into ErrAuthenticationFailed so callers cannot
// enumerate accounts; the real reason stays in the server log.
func (s *Service) SignInWithCredentials(ctx context.Context, dto LoginDTO) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.directory.FindByEmail(ctx, dto.NormalizedEmail())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("sign-in failed: unknown email", "email", dto.NormalizedEmail())
			return nil, ErrAuthenticationFailed
		}
		s.logger.Error("sign-in failed: directory lookup error", "error", err)
		return nil, directoryError(err)
	}

	if !u.IsActive {
		s.logger.Warn("sign-in failed: inactive account", "user_id", u.ID)
		return nil, ErrAuthenticationFailed
	}

	if u.PasswordHash == nil {
		// Provider-only account: no password method available. Fails
		// closed with the same signal as a wrong password.
		s.logger.Warn("sign-in failed: no password set", "user_id", u.ID)
		return nil, ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("sign-in failed: password mismatch", "user_id", u.ID)
		return nil, ErrAuthenticationFailed
	}

	s.touchLastLogin(ctx, u.ID)

	return s.issueSession(u, "")
}

// SignInWithProvider establishes a session from a completed external
// handshake. First sight of an email auto-provisions a Member account;
// later sign-ins refresh profile fields and backfill the provider id but
// never touch role or permissions.
func (s *Service) SignInWithProvider(ctx context.Context, profile ProviderProfile, providerToken string) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		s.logger.Warn("provider sign-in failed: profile has no email", "provider_id", profile.ProviderID)
		return nil, ErrAuthenticationFailed
	}

	u, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return s.provisionProviderUser(ctx, email, profile, providerToken)
		}
		s.logger.Error("provider sign-in failed: directory lookup error", "error", err)
		return nil, directoryError(err)
	}

	if !u.IsActive {
		// The handshake succeeded but the account is gated off.
		s.logger.Warn("provider sign-in refused: inactive account", "user_id", u.ID)
		return nil, ErrAuthenticationFailed
	}

	now := time.Now()
	fields := map[string]interface{}{
		"last_login_at": &now,
	}
	if profile.AvatarURL != "" {
		fields["avatar"] = profile.AvatarURL
	}
	if u.ProviderID == nil && profile.ProviderID != "" {
		fields["provider_id"] = &profile.ProviderID
	}
	if err := s.directory.UpdateFields(ctx, u.ID, fields); err != nil {
		s.logger.Error("provider sign-in: profile refresh failed", "user_id", u.ID, "error", err)
	}

	return s.issueSession(u, providerToken)
}

func (s *Service) provisionProviderUser(ctx context.Context, email string, profile ProviderProfile, providerToken string) (*Session, error) {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = "Anonymous"
	}

	now := time.Now()
	u := &userDatamodel.User{
		Email:       email,
		Name:        name,
		Avatar:      profile.AvatarURL,
		Role:        string(RoleMember),
		Permissions: PermissionsForRole(RoleMember),
		IsActive:    true,
		LastLoginAt: &now,
	}
	if profile.ProviderID != "" {
		u.ProviderID = &profile.ProviderID
	}

	if err := s.directory.Create(ctx, u); err != nil {
		s.logger.Error("provider sign-in: auto-provisioning failed", "email", email, "error", err)
		return nil, directoryError(err)
	}

	s.logger.Info("provisioned provider user", "user_id", u.ID, "email", email)
	return s.issueSession(u, providerToken)
}

// ValidateSessionToken verifies a session token and returns its claims.
func (s *Service) ValidateSessionToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateSessionToken(tokenString)
}

// GetUserWithPermissions re-reads the principal from the directory. The
// session middleware uses this so security-sensitive checks see the
// freshest permission set rather than a stale session claim.
func (s *Service) GetUserWithPermissions(ctx context.Context, userID int64) (*SessionUser, error) {
	u, err := s.directory.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, directoryError(err)
	}
	if !u.IsActive {
		return nil, ErrUserNotFound
	}
	return &SessionUser{
		ID:          u.ID,
		Email:       u.Email,
		Role:        Role(u.Role),
		Permissions: u.Permissions,
	}, nil
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issueSession(u *userDatamodel.User, providerToken string) (*Session, error) {
	token, expiresAt, err := s.tokenGen.GenerateSessionToken(u, providerToken)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &Session{
		Token:       token,
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        Role(u.Role),
		Permissions: u.Permissions,
		ExpiresAt:   expiresAt,
	}, nil
}

// touchLastLogin refreshes the login timestamp. Concurrent sign-ins may
// race here; last write wins and nothing depends on the ordering.
func (s *Service) touchLastLogin(ctx context.Context, userID int64) {
	now := time.Now()
	if err := s.directory.UpdateFields(ctx, userID, map[string]interface{}{"last_login_at": &now}); err != nil {
		s.logger.Error("failed to update last login", "user_id", userID, "error", err)
	}
}

// directoryError maps store failures to the fail-closed directory error.
// Timeouts and transport errors alike deny rather than default-allow.
func directoryError(err error) error {
	return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
}

// JWTTokenGenerator signs session tokens with HS256. Sessions have a
// fixed maximum age; there is no sliding renewal.
type JWTTokenGenerator struct {
	Secret []byte
	MaxAge time.Duration
}

func NewJWTTokenGenerator(secret string, maxAge time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		MaxAge: maxAge,
	}
}

func (j *JWTTokenGenerator) GenerateSessionToken(u *userDatamodel.User, providerToken string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.MaxAge)

	claims := &Claims{
		Version:       claimsVersion,
		UserID:        u.ID,
		Email:         u.Email,
		Role:          u.Role,
		Permissions:   u.Permissions,
		ProviderToken: providerToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func (j *JWTTokenGenerator) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Version != claimsVersion {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
