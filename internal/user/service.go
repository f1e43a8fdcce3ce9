package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/user/blog-platform/internal"
	"github.com/user/blog-platform/internal/auth"
	"github.com/user/blog-platform/internal/core/common/validation"
	userDatamodel "github.com/user/blog-platform/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// ErrNotFound is returned by repository implementations when no record
// matches.
var ErrNotFound = errors.New("user not found")

// Service implements user management. The Owner-protection and
// self-deletion rules live here, on top of the permission gate the
// router applies.
type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.DefaultCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	users := make([]*User, 0, len(records))
	for _, record := range records {
		users = append(users, FromDataModel(record))
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return FromDataModel(record), nil
}

// Create provisions a credential-based account. The permission set is
// stamped from the canonical role table in the same write that sets the
// role.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if appErr := validateCreate(dto); appErr != nil {
		return nil, appErr
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	name := validation.SanitizeInput(dto.Name)

	role := auth.Role(dto.Role)
	if dto.Role == "" {
		role = auth.RoleMember
	}
	if role == auth.RoleOwner {
		// Ownership is assigned at seeding, never through the API.
		return nil, apperrors.ErrOwnerProtected
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to check existing email", "error", err)
		return nil, err
	}

	record := &userDatamodel.User{
		Email:       email,
		Name:        name,
		Role:        string(role),
		Permissions: auth.PermissionsForRole(role),
		IsActive:    true,
	}

	if dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		hashStr := string(hash)
		record.PasswordHash = &hashStr
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create user", "email", email, "error", err)
		return nil, err
	}

	s.logger.Info("user created", "user_id", record.ID, "email", email, "role", role)
	return FromDataModel(record), nil
}

// Update applies a role change and/or activation toggle. Owner accounts
// are immune regardless of the caller's permissions, and role plus
// permissions move in one atomic write so they can never disagree.
func (s *Service) Update(ctx context.Context, dto UpdateUserDTO) (*User, error) {
	target, err := s.repo.GetByID(ctx, dto.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if target.Role == string(auth.RoleOwner) {
		s.logger.Warn("refused mutation of owner account", "user_id", target.ID)
		return nil, apperrors.ErrOwnerProtected
	}

	fields := map[string]interface{}{}

	if dto.Role != nil {
		role := auth.Role(*dto.Role)
		if !role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", apperrors.ErrCodeInvalidRole)
		}
		if role == auth.RoleOwner {
			// Ownership is assigned at seeding, never through the API.
			return nil, apperrors.ErrOwnerProtected
		}
		fields["role"] = string(role)
		fields["permissions"] = auth.PermissionsForRole(role)
	}

	if dto.IsActive != nil {
		fields["is_active"] = *dto.IsActive
	}

	if len(fields) == 0 {
		return FromDataModel(target), nil
	}

	if err := s.repo.UpdateFields(ctx, target.ID, fields); err != nil {
		s.logger.Error("failed to update user", "user_id", target.ID, "error", err)
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(updated), nil
}

// Delete removes an account. Owners can never be deleted, and a caller
// can never delete themselves, even with user:manage.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	if target.Role == string(auth.RoleOwner) {
		s.logger.Warn("refused deletion of owner account", "user_id", target.ID)
		return apperrors.ErrOwnerProtected
	}

	if target.ID == actorID {
		s.logger.Warn("refused self-deletion", "user_id", actorID)
		return apperrors.ErrSelfDeletion
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("user deleted", "user_id", id, "deleted_by", actorID)
	return nil
}

func validateCreate(dto CreateUserDTO) *apperrors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", dto.Name).Required().MinLength(2).MaxLength(50)
	validator.Field("email", dto.Email).Required().Email()
	validator.Field("password", dto.Password).Password()
	validator.Field("role", dto.Role).OneOf([]string{
		string(auth.RoleOwner), string(auth.RoleWriter), string(auth.RoleMember),
	}, apperrors.ErrCodeInvalidRole) // Owner passes validation but is refused in Create
	return validator.Validate()
}
