package repositories

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// ProjectReader defines read operations for project data
type ProjectReader interface {
	// FindProjectByID retrieves a specific project by its ID.
	FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error)

	// ListProjectsByOrganisation retrieves all projects owned by an organisation.
	ListProjectsByOrganisation(ctx context.Context, organisationID string) ([]domain.Project, error)

	// ListProjectsByUserID retrieves all projects the user holds an explicit
	// membership in.
	ListProjectsByUserID(ctx context.Context, userID string) ([]domain.Project, error)
}

// ProjectWriter defines write operations for project data
type ProjectWriter interface {
	// SaveProject persists a new project.
	SaveProject(ctx context.Context, project domain.Project) error

	// UpdateProjectStatus moves a project through its lifecycle. Returns
	// apperrors.ErrStaleVersion when expectedVersion no longer matches.
	UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, updatedBy string, expectedVersion int64) error
}

// ProjectMembershipManager defines operations for managing project memberships.
// Rows are upserted on (user_id, project_id): exactly one role per pair.
//
// Membership visibility is keyed strictly by the (userID, projectID) pair the
// caller supplies. There is deliberately no "does anyone else see this
// project" lookup in the resolve path; a membership check that consulted
// other membership rows would deadlock visibility for everyone.
type ProjectMembershipManager interface {
	// UpsertProjectMembership adds a user to a project or updates their role.
	UpsertProjectMembership(ctx context.Context, membership domain.ProjectMembership) error

	// FindProjectMembership retrieves the membership row for one (user, project) pair.
	FindProjectMembership(ctx context.Context, userID, projectID string) (*domain.ProjectMembership, error)

	// ListProjectMembers retrieves all memberships of a project.
	ListProjectMembers(ctx context.Context, projectID string) ([]domain.ProjectMembership, error)

	// RemoveProjectMembership deletes a membership row. Audit entries and
	// recorded approval decisions survive removal.
	RemoveProjectMembership(ctx context.Context, userID, projectID string) error
}

// WorkflowSettingsManager stores the per-project approval configuration.
type WorkflowSettingsManager interface {
	// FindWorkflowSettings retrieves a project's workflow settings.
	// Returns apperrors.ErrNotFound when none were ever saved.
	FindWorkflowSettings(ctx context.Context, projectID string) (*domain.WorkflowSettings, error)

	// SaveWorkflowSettings upserts a project's workflow settings with a
	// version check on update.
	SaveWorkflowSettings(ctx context.Context, settings domain.WorkflowSettings) error
}

// ProjectRepositoryFacade combines all project-related repository interfaces
type ProjectRepositoryFacade interface {
	ProjectReader
	ProjectWriter
	ProjectMembershipManager
	WorkflowSettingsManager
}
