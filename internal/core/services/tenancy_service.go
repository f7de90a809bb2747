package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// tenancyService resolves a user's effective access to a project. Resolution
// reads only rows keyed by the (user, project) pair itself, so revoking one
// user's membership can never change what another user resolves to.
type tenancyService struct {
	userRepo    portsrepo.UserReader
	orgRepo     portsrepo.OrgMembershipManager
	projectRepo portsrepo.ProjectRepositoryFacade
}

// NewTenancyService creates a new tenancyService.
func NewTenancyService(ur portsrepo.UserReader, or portsrepo.OrgMembershipManager, pr portsrepo.ProjectRepositoryFacade) portssvc.TenancySvcFacade {
	return &tenancyService{
		userRepo:    ur,
		orgRepo:     or,
		projectRepo: pr,
	}
}

var _ portssvc.TenancySvcFacade = (*tenancyService)(nil)

var deniedAccess = domain.EffectiveAccess{Role: domain.RoleNone, Source: domain.SourceDenied}

// ResolveAccess computes the effective role for (userID, projectID) in
// priority order. "No access" is a normal result, never an error: an unknown
// project or a missing membership both resolve to RoleNone/SourceDenied.
func (s *tenancyService) ResolveAccess(ctx context.Context, userID, projectID string) (domain.EffectiveAccess, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// 1. System administrators act on every project.
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return deniedAccess, nil
		}
		logger.Error("Failed to load user during access resolution", slog.String("error", err.Error()), slog.String("user_id", userID))
		return deniedAccess, fmt.Errorf("failed to resolve access: %w", err)
	}
	if user.IsSystemAdmin {
		return domain.EffectiveAccess{Role: domain.RoleAdmin, Source: domain.SourceSystemOverride}, nil
	}

	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return deniedAccess, nil
		}
		logger.Error("Failed to load project during access resolution", slog.String("error", err.Error()), slog.String("project_id", projectID))
		return deniedAccess, fmt.Errorf("failed to resolve access: %w", err)
	}

	// 2. Owners and admins of the owning organisation override project
	// membership entirely.
	orgMembership, err := s.orgRepo.FindOrgMembership(ctx, userID, project.OrganisationID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to load org membership during access resolution", slog.String("error", err.Error()), slog.String("user_id", userID))
		return deniedAccess, fmt.Errorf("failed to resolve access: %w", err)
	}
	if orgMembership != nil && (orgMembership.Role == domain.OrgRoleOwner || orgMembership.Role == domain.OrgRoleAdmin) {
		return domain.EffectiveAccess{Role: domain.RoleAdmin, Source: domain.SourceOrgOverride}, nil
	}

	// 3. Explicit project membership, keyed strictly by the caller's own
	// (user, project) pair.
	membership, err := s.projectRepo.FindProjectMembership(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return deniedAccess, nil
		}
		logger.Error("Failed to load project membership during access resolution", slog.String("error", err.Error()), slog.String("user_id", userID), slog.String("project_id", projectID))
		return deniedAccess, fmt.Errorf("failed to resolve access: %w", err)
	}

	return domain.EffectiveAccess{Role: membership.Role, Source: domain.SourceExplicitMembership}, nil
}

// RequireRole resolves access and enforces membership in the allowed set.
// RoleAdmin always passes. Unknown projects surface as ErrNotFound so the
// handler returns a uniform 404 instead of leaking project existence.
func (s *tenancyService) RequireRole(ctx context.Context, userID, projectID string, allowed ...domain.ProjectRole) (domain.EffectiveAccess, error) {
	if _, err := s.projectRepo.FindProjectByID(ctx, projectID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return deniedAccess, apperrors.NewNotFoundError(fmt.Sprintf("project %s not found", projectID))
		}
		return deniedAccess, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}

	access, err := s.ResolveAccess(ctx, userID, projectID)
	if err != nil {
		return deniedAccess, err
	}
	if access.Role == domain.RoleAdmin {
		return access, nil
	}
	for _, role := range allowed {
		if access.Role == role {
			return access, nil
		}
	}
	return access, apperrors.NewForbiddenError(fmt.Sprintf("user %s lacks the required role on project %s", userID, projectID))
}
