package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
	"github.com/planlane/project_delivery_app/internal/utils"
)

// userService handles user accounts and credential checks.
type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new userService.
func NewUserService(ur portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: ur}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.userRepo.FindUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser registers a new user with a bcrypt-hashed password.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     strings.ToLower(req.Username),
		PasswordHash: hash,
		Name:         req.Name,
		AuditFields:  domain.AuditFields{CreatedAt: now, CreatedBy: "", LastUpdatedAt: now, LastUpdatedBy: ""},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("username %s is taken", req.Username))
		}
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created", slog.String("user_id", user.UserID))
	return &user, nil
}

// UpdateUser updates a user's details. Users can only edit themselves.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	if userID != requestingUserID {
		return nil, apperrors.NewForbiddenError("users may only update their own details")
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	user.LastUpdatedAt = time.Now()
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateRefreshToken stores the hash and expiry of the user's refresh token.
func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, &refreshTokenHash, &refreshTokenExpiryTime); err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	return nil
}

// ClearRefreshToken clears the refresh token on logout.
func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, nil, nil); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// DeleteUser marks a user as deleted (soft delete). Users may delete
// themselves; anything else is rejected here and left to platform tooling.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	if userID != requestingUserID {
		requester, err := s.GetUserByID(ctx, requestingUserID)
		if err != nil {
			return err
		}
		if !requester.IsSystemAdmin {
			return apperrors.NewForbiddenError("users may only delete their own account")
		}
	}
	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now(), requestingUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// AuthenticateUser checks a username/password pair. The same error comes back
// for a missing user and a wrong password.
func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		logger.Error("Failed to load user for authentication", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if user.DeletedAt != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// FindOrProvisionGoogleUser looks up a user by their verified Google email,
// creating an account on first sign-in.
func (s *userService) FindOrProvisionGoogleUser(ctx context.Context, info *domain.GoogleUserInfo) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if info == nil || info.Email == "" {
		return nil, apperrors.NewValidationFailedError("google profile is missing an email")
	}
	if !info.VerifiedEmail {
		return nil, apperrors.NewForbiddenError("google account email is not verified")
	}

	username := strings.ToLower(info.Email)
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err == nil {
		if user.DeletedAt != nil {
			return nil, apperrors.ErrUnauthorized
		}
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up google user: %w", err)
	}

	// First sign-in: provision an account with an unguessable password so
	// password login stays effectively disabled until the user sets one.
	randomSecret, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to provision google user: %w", err)
	}
	hash, err := utils.HashPassword(randomSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to provision google user: %w", err)
	}

	now := time.Now()
	newUser := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Name:         info.Name,
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	newUser.CreatedBy = newUser.UserID
	newUser.LastUpdatedBy = newUser.UserID

	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		logger.Error("Failed to provision google user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to provision google user: %w", err)
	}

	logger.Info("Provisioned user from google sign-in", slog.String("user_id", newUser.UserID))
	return &newUser, nil
}
