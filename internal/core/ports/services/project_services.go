package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	"github.com/planlane/project_delivery_app/internal/dto"
)

// ProjectReaderSvc defines read operations for project data
type ProjectReaderSvc interface {
	// GetProjectByID retrieves a project the requester can at least view.
	GetProjectByID(ctx context.Context, projectID, requestingUserID string) (*domain.Project, error)

	// ListOrganisationProjects lists projects of an organisation the
	// requester belongs to.
	ListOrganisationProjects(ctx context.Context, organisationID, requestingUserID string) ([]domain.Project, error)

	// ListUserProjects lists projects the user holds a membership in.
	ListUserProjects(ctx context.Context, userID string) ([]domain.Project, error)

	// ListProjectMembers lists a project's memberships.
	ListProjectMembers(ctx context.Context, projectID, requestingUserID string) ([]domain.ProjectMembership, error)
}

// ProjectWriterSvc defines write operations for project data
type ProjectWriterSvc interface {
	// CreateProject creates a project under an organisation; the creator
	// must be an org owner/admin and becomes the supplier PM.
	CreateProject(ctx context.Context, organisationID string, req dto.CreateProjectRequest, creatorUserID string) (*domain.Project, error)

	// UpdateProjectStatus moves a project through its lifecycle. Effective
	// role must be admin or supplier PM.
	UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, actorID string, expectedVersion int64) (*domain.Project, error)
}

// ProjectMembershipSvc defines operations for managing project membership
type ProjectMembershipSvc interface {
	// AddUserToProject adds or re-roles a member (upsert: one role per pair).
	AddUserToProject(ctx context.Context, requestingUserID, targetUserID, projectID string, role domain.ProjectRole) error

	// RemoveUserFromProject revokes a membership, leaving historical audit
	// entries and decisions intact.
	RemoveUserFromProject(ctx context.Context, requestingUserID, targetUserID, projectID string) error
}

// WorkflowSettingsSvc manages the per-project approval configuration.
type WorkflowSettingsSvc interface {
	// GetWorkflowSettings returns the project's settings with defaults
	// filled in for unset keys.
	GetWorkflowSettings(ctx context.Context, projectID, requestingUserID string) (*domain.WorkflowSettings, error)

	// UpdateWorkflowSettings replaces the project's rule set. Keys and
	// authority modes outside the closed enums are rejected as validation
	// errors.
	UpdateWorkflowSettings(ctx context.Context, projectID string, req dto.UpdateWorkflowSettingsRequest, actorID string) (*domain.WorkflowSettings, error)
}

// ProjectSvcFacade combines all project-related service interfaces
type ProjectSvcFacade interface {
	ProjectReaderSvc
	ProjectWriterSvc
	ProjectMembershipSvc
	WorkflowSettingsSvc
}
