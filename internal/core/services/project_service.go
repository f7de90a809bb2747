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
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// projectService handles projects, project memberships and the per-project
// workflow settings.
type projectService struct {
	projectRepo portsrepo.ProjectRepositoryFacade
	orgRepo     portsrepo.OrgMembershipManager
	userRepo    portsrepo.UserReader
	tenancy     portssvc.TenancySvcFacade
}

// NewProjectService creates a new projectService.
func NewProjectService(pr portsrepo.ProjectRepositoryFacade, or portsrepo.OrgMembershipManager, ur portsrepo.UserReader, tenancy portssvc.TenancySvcFacade) portssvc.ProjectSvcFacade {
	return &projectService{
		projectRepo: pr,
		orgRepo:     or,
		userRepo:    ur,
		tenancy:     tenancy,
	}
}

var _ portssvc.ProjectSvcFacade = (*projectService)(nil)

// GetProjectByID retrieves a project the requester can at least view.
func (s *projectService) GetProjectByID(ctx context.Context, projectID, requestingUserID string) (*domain.Project, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("project %s not found", projectID))
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return project, nil
}

// ListOrganisationProjects lists projects of an organisation the requester
// belongs to.
func (s *projectService) ListOrganisationProjects(ctx context.Context, organisationID, requestingUserID string) ([]domain.Project, error) {
	if _, err := s.orgRepo.FindOrgMembership(ctx, requestingUserID, organisationID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("organisation %s not found", organisationID))
		}
		return nil, fmt.Errorf("failed to load org membership: %w", err)
	}
	projects, err := s.projectRepo.ListProjectsByOrganisation(ctx, organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organisation projects: %w", err)
	}
	return projects, nil
}

// ListUserProjects lists projects the user holds a membership in.
func (s *projectService) ListUserProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	projects, err := s.projectRepo.ListProjectsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user projects: %w", err)
	}
	return projects, nil
}

// ListProjectMembers lists a project's memberships.
func (s *projectService) ListProjectMembers(ctx context.Context, projectID, requestingUserID string) ([]domain.ProjectMembership, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, err
	}
	members, err := s.projectRepo.ListProjectMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// CreateProject creates a project under an organisation. The creator must be
// an org owner or admin and becomes the project's supplier PM.
func (s *projectService) CreateProject(ctx context.Context, organisationID string, req dto.CreateProjectRequest, creatorUserID string) (*domain.Project, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	membership, err := s.orgRepo.FindOrgMembership(ctx, creatorUserID, organisationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("organisation %s not found", organisationID))
		}
		return nil, fmt.Errorf("failed to load org membership: %w", err)
	}
	if membership.Role != domain.OrgRoleOwner && membership.Role != domain.OrgRoleAdmin {
		return nil, apperrors.NewForbiddenError("only organisation owners or admins may create projects")
	}

	now := time.Now()
	project := domain.Project{
		ProjectID:      uuid.NewString(),
		OrganisationID: organisationID,
		Name:           req.Name,
		Description:    req.Description,
		Status:         domain.ProjectActive,
		AuditFields:    domain.AuditFields{CreatedAt: now, CreatedBy: creatorUserID, LastUpdatedAt: now, LastUpdatedBy: creatorUserID},
		Version:        1,
	}
	if err := s.projectRepo.SaveProject(ctx, project); err != nil {
		logger.Error("Failed to save project", slog.String("error", err.Error()), slog.String("organisation_id", organisationID))
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	creatorMembership := domain.ProjectMembership{
		UserID:    creatorUserID,
		ProjectID: project.ProjectID,
		Role:      domain.RoleSupplierPM,
		JoinedAt:  now,
	}
	if err := s.projectRepo.UpsertProjectMembership(ctx, creatorMembership); err != nil {
		logger.Error("Failed to add creator as supplier PM", slog.String("error", err.Error()), slog.String("project_id", project.ProjectID))
		return nil, fmt.Errorf("failed to add creator to project: %w", err)
	}

	logger.Info("Project created", slog.String("project_id", project.ProjectID), slog.String("organisation_id", organisationID))
	return &project, nil
}

// UpdateProjectStatus moves a project through its lifecycle.
func (s *projectService) UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, actorID string, expectedVersion int64) (*domain.Project, error) {
	if _, err := s.tenancy.RequireRole(ctx, actorID, projectID, domain.RoleSupplierPM); err != nil {
		return nil, err
	}

	switch status {
	case domain.ProjectActive, domain.ProjectOnHold, domain.ProjectCompleted, domain.ProjectArchived:
	default:
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown project status %s", status))
	}

	if err := s.projectRepo.UpdateProjectStatus(ctx, projectID, status, actorID, expectedVersion); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}

	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}
	return project, nil
}

// AddUserToProject adds or re-roles a member. One role per (user, project):
// the repository upserts on that pair.
func (s *projectService) AddUserToProject(ctx context.Context, requestingUserID, targetUserID, projectID string, role domain.ProjectRole) error {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, domain.RoleSupplierPM, domain.RoleCustomerPM); err != nil {
		return err
	}
	if !domain.ValidMembershipRole(role) {
		return apperrors.NewValidationFailedError(fmt.Sprintf("role %s cannot be stored on a membership", role))
	}
	if _, err := s.userRepo.FindUserByID(ctx, targetUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationFailedError(fmt.Sprintf("user %s does not exist", targetUserID))
		}
		return fmt.Errorf("failed to validate target user: %w", err)
	}

	membership := domain.ProjectMembership{
		UserID:    targetUserID,
		ProjectID: projectID,
		Role:      role,
		JoinedAt:  time.Now(),
	}
	if err := s.projectRepo.UpsertProjectMembership(ctx, membership); err != nil {
		return fmt.Errorf("failed to add user to project: %w", err)
	}
	return nil
}

// RemoveUserFromProject revokes a membership. Audit entries and recorded
// approval decisions survive the removal.
func (s *projectService) RemoveUserFromProject(ctx context.Context, requestingUserID, targetUserID, projectID string) error {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, domain.RoleSupplierPM, domain.RoleCustomerPM); err != nil {
		return err
	}
	if _, err := s.projectRepo.FindProjectMembership(ctx, targetUserID, projectID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("user %s is not a member of project %s", targetUserID, projectID))
		}
		return fmt.Errorf("failed to load target membership: %w", err)
	}
	if err := s.projectRepo.RemoveProjectMembership(ctx, targetUserID, projectID); err != nil {
		return fmt.Errorf("failed to remove user from project: %w", err)
	}
	return nil
}

// GetWorkflowSettings returns the project's settings with defaults filled in
// for unset keys.
func (s *projectService) GetWorkflowSettings(ctx context.Context, projectID, requestingUserID string) (*domain.WorkflowSettings, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, err
	}

	settings, err := s.projectRepo.FindWorkflowSettings(ctx, projectID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load workflow settings: %w", err)
		}
		settings = &domain.WorkflowSettings{ProjectID: projectID, Rules: map[domain.ApprovalKey]domain.ApprovalRule{}}
	}

	effective := make(map[domain.ApprovalKey]domain.ApprovalRule, len(domain.KnownApprovalKeys))
	for _, key := range domain.KnownApprovalKeys {
		effective[key] = settings.Rule(key)
	}
	settings.Rules = effective
	return settings, nil
}

// UpdateWorkflowSettings replaces the project's rule set. The keys and
// authority modes form closed enums; anything outside them is rejected.
func (s *projectService) UpdateWorkflowSettings(ctx context.Context, projectID string, req dto.UpdateWorkflowSettingsRequest, actorID string) (*domain.WorkflowSettings, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.tenancy.RequireRole(ctx, actorID, projectID, domain.RoleSupplierPM); err != nil {
		return nil, err
	}

	rules := make(map[domain.ApprovalKey]domain.ApprovalRule, len(req.Rules))
	for key, rule := range req.Rules {
		approvalKey := domain.ApprovalKey(key)
		known := false
		for _, k := range domain.KnownApprovalKeys {
			if k == approvalKey {
				known = true
				break
			}
		}
		if !known {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown approval key %q", key))
		}
		if !domain.ValidAuthorityMode(rule.Authority) {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown authority mode %q for key %q", rule.Authority, key))
		}
		rules[approvalKey] = domain.ApprovalRule{Required: rule.Required, Authority: rule.Authority}
	}

	now := time.Now()
	settings := domain.WorkflowSettings{
		ProjectID:   projectID,
		Rules:       rules,
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID},
		Version:     req.Version,
	}
	if err := s.projectRepo.SaveWorkflowSettings(ctx, settings); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			return nil, err
		}
		logger.Error("Failed to save workflow settings", slog.String("error", err.Error()), slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to save workflow settings: %w", err)
	}

	return s.GetWorkflowSettings(ctx, projectID, actorID)
}
