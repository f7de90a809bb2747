package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// OrgReaderSvc defines read operations for organisation data
type OrgReaderSvc interface {
	// GetOrganisationByID retrieves an organisation the requester belongs to.
	GetOrganisationByID(ctx context.Context, organisationID, requestingUserID string) (*domain.Organisation, error)

	// ListUserOrganisations lists organisations the user belongs to.
	ListUserOrganisations(ctx context.Context, userID string) ([]domain.Organisation, error)

	// ListOrgMembers lists an organisation's memberships. Requester must be
	// a member.
	ListOrgMembers(ctx context.Context, organisationID, requestingUserID string) ([]domain.OrgMembership, error)
}

// OrgWriterSvc defines write operations for organisation data
type OrgWriterSvc interface {
	// CreateOrganisation creates an organisation and makes the creator its owner.
	CreateOrganisation(ctx context.Context, name, creatorUserID string) (*domain.Organisation, error)
}

// OrgMembershipSvc defines operations for managing organisation membership.
type OrgMembershipSvc interface {
	// AddUserToOrganisation adds or re-roles a member. Requester must be
	// owner or admin; only an owner may grant owner.
	AddUserToOrganisation(ctx context.Context, requestingUserID, targetUserID, organisationID string, role domain.OrgRole) error

	// RemoveUserFromOrganisation revokes a membership. Historical audit
	// entries and approval decisions stay.
	RemoveUserFromOrganisation(ctx context.Context, requestingUserID, targetUserID, organisationID string) error
}

// OrgSvcFacade combines all organisation-related service interfaces
type OrgSvcFacade interface {
	OrgReaderSvc
	OrgWriterSvc
	OrgMembershipSvc
}
