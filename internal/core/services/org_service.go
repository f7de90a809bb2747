package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// orgService handles organisations and org-level memberships.
type orgService struct {
	orgRepo  portsrepo.OrgRepositoryFacade
	userRepo portsrepo.UserReader
}

// NewOrgService creates a new orgService.
func NewOrgService(or portsrepo.OrgRepositoryFacade, ur portsrepo.UserReader) portssvc.OrgSvcFacade {
	return &orgService{
		orgRepo:  or,
		userRepo: ur,
	}
}

var _ portssvc.OrgSvcFacade = (*orgService)(nil)

// GetOrganisationByID retrieves an organisation the requester belongs to.
func (s *orgService) GetOrganisationByID(ctx context.Context, organisationID, requestingUserID string) (*domain.Organisation, error) {
	if _, err := s.requireMembership(ctx, requestingUserID, organisationID); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindOrganisationByID(ctx, organisationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("organisation %s not found", organisationID))
		}
		return nil, fmt.Errorf("failed to load organisation: %w", err)
	}
	return org, nil
}

// ListUserOrganisations lists organisations the user belongs to.
func (s *orgService) ListUserOrganisations(ctx context.Context, userID string) ([]domain.Organisation, error) {
	orgs, err := s.orgRepo.ListOrganisationsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organisations: %w", err)
	}
	return orgs, nil
}

// ListOrgMembers lists an organisation's memberships.
func (s *orgService) ListOrgMembers(ctx context.Context, organisationID, requestingUserID string) ([]domain.OrgMembership, error) {
	if _, err := s.requireMembership(ctx, requestingUserID, organisationID); err != nil {
		return nil, err
	}
	members, err := s.orgRepo.ListOrgMembers(ctx, organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list org members: %w", err)
	}
	return members, nil
}

// CreateOrganisation creates an organisation and makes the creator its owner.
func (s *orgService) CreateOrganisation(ctx context.Context, name, creatorUserID string) (*domain.Organisation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if name == "" {
		return nil, apperrors.NewValidationFailedError("organisation name is required")
	}

	now := time.Now()
	org := domain.Organisation{
		OrganisationID: uuid.NewString(),
		Name:           name,
		IsActive:       true,
		AuditFields:    domain.AuditFields{CreatedAt: now, CreatedBy: creatorUserID, LastUpdatedAt: now, LastUpdatedBy: creatorUserID},
	}
	if err := s.orgRepo.SaveOrganisation(ctx, org); err != nil {
		logger.Error("Failed to save organisation", slog.String("error", err.Error()), slog.String("name", name))
		return nil, fmt.Errorf("failed to create organisation: %w", err)
	}

	membership := domain.OrgMembership{
		UserID:         creatorUserID,
		OrganisationID: org.OrganisationID,
		Role:           domain.OrgRoleOwner,
		JoinedAt:       now,
	}
	if err := s.orgRepo.UpsertOrgMembership(ctx, membership); err != nil {
		logger.Error("Failed to add creator as owner of new organisation", slog.String("error", err.Error()), slog.String("organisation_id", org.OrganisationID))
		return nil, fmt.Errorf("failed to add creator to organisation: %w", err)
	}

	logger.Info("Organisation created", slog.String("organisation_id", org.OrganisationID), slog.String("creator_user_id", creatorUserID))
	return &org, nil
}

// AddUserToOrganisation adds or re-roles a member. The requester must be an
// owner or admin, and only an owner may grant owner.
func (s *orgService) AddUserToOrganisation(ctx context.Context, requestingUserID, targetUserID, organisationID string, role domain.OrgRole) error {
	requester, err := s.requireMembership(ctx, requestingUserID, organisationID)
	if err != nil {
		return err
	}
	if requester.Role != domain.OrgRoleOwner && requester.Role != domain.OrgRoleAdmin {
		return apperrors.NewForbiddenError("only organisation owners or admins may manage membership")
	}
	if role == domain.OrgRoleOwner && requester.Role != domain.OrgRoleOwner {
		return apperrors.NewForbiddenError("only an owner may grant the owner role")
	}

	if _, err := s.userRepo.FindUserByID(ctx, targetUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationFailedError(fmt.Sprintf("user %s does not exist", targetUserID))
		}
		return fmt.Errorf("failed to validate target user: %w", err)
	}

	membership := domain.OrgMembership{
		UserID:         targetUserID,
		OrganisationID: organisationID,
		Role:           role,
		JoinedAt:       time.Now(),
	}
	if err := s.orgRepo.UpsertOrgMembership(ctx, membership); err != nil {
		return fmt.Errorf("failed to add user to organisation: %w", err)
	}
	return nil
}

// RemoveUserFromOrganisation revokes a membership. Historical audit entries
// and approval decisions recorded by the user remain.
func (s *orgService) RemoveUserFromOrganisation(ctx context.Context, requestingUserID, targetUserID, organisationID string) error {
	requester, err := s.requireMembership(ctx, requestingUserID, organisationID)
	if err != nil {
		return err
	}
	if requester.Role != domain.OrgRoleOwner && requester.Role != domain.OrgRoleAdmin {
		return apperrors.NewForbiddenError("only organisation owners or admins may manage membership")
	}

	target, err := s.orgRepo.FindOrgMembership(ctx, targetUserID, organisationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("user %s is not a member of organisation %s", targetUserID, organisationID))
		}
		return fmt.Errorf("failed to load target membership: %w", err)
	}
	if target.Role == domain.OrgRoleOwner && requester.Role != domain.OrgRoleOwner {
		return apperrors.NewForbiddenError("only an owner may remove another owner")
	}

	if err := s.orgRepo.RemoveOrgMembership(ctx, targetUserID, organisationID); err != nil {
		return fmt.Errorf("failed to remove user from organisation: %w", err)
	}
	return nil
}

// requireMembership loads the requester's own membership row; non-members get
// a 404 rather than confirmation that the organisation exists.
func (s *orgService) requireMembership(ctx context.Context, userID, organisationID string) (*domain.OrgMembership, error) {
	membership, err := s.orgRepo.FindOrgMembership(ctx, userID, organisationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("organisation %s not found", organisationID))
		}
		return nil, fmt.Errorf("failed to load org membership: %w", err)
	}
	return membership, nil
}
