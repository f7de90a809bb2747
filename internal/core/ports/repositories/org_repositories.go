package repositories

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// OrgReader defines read operations for organisation data
type OrgReader interface {
	// FindOrganisationByID retrieves a specific organisation by its ID.
	FindOrganisationByID(ctx context.Context, organisationID string) (*domain.Organisation, error)

	// ListOrganisationsByUserID retrieves all organisations a user belongs to.
	ListOrganisationsByUserID(ctx context.Context, userID string) ([]domain.Organisation, error)
}

// OrgWriter defines write operations for organisation data
type OrgWriter interface {
	// SaveOrganisation persists a new organisation.
	SaveOrganisation(ctx context.Context, org domain.Organisation) error
}

// OrgMembershipManager defines operations for managing org memberships.
// Memberships are upserted on (user_id, organisation_id) so duplicate rows
// for the same pair cannot exist.
type OrgMembershipManager interface {
	// UpsertOrgMembership adds a user to an organisation or updates their role.
	UpsertOrgMembership(ctx context.Context, membership domain.OrgMembership) error

	// FindOrgMembership retrieves the membership row for one (user, organisation)
	// pair. Visibility needs nothing beyond the pair itself.
	FindOrgMembership(ctx context.Context, userID, organisationID string) (*domain.OrgMembership, error)

	// ListOrgMembers retrieves all memberships of an organisation.
	ListOrgMembers(ctx context.Context, organisationID string) ([]domain.OrgMembership, error)

	// RemoveOrgMembership deletes a membership row. Historical audit entries
	// and approval decisions recorded by the user are untouched.
	RemoveOrgMembership(ctx context.Context, userID, organisationID string) error
}

// OrgRepositoryFacade combines all organisation-related repository interfaces
type OrgRepositoryFacade interface {
	OrgReader
	OrgWriter
	OrgMembershipManager
}
