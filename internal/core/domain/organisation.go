package domain

import "time"

// Organisation is the root tenant. It owns projects and org memberships.
type Organisation struct {
	OrganisationID string `json:"organisationID"` // Primary Key (UUID)
	Name           string `json:"name"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}

// OrgRole defines the possible roles a user can hold at organisation level.
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "OWNER"
	OrgRoleAdmin  OrgRole = "ADMIN"
	OrgRoleMember OrgRole = "MEMBER"
)

// OrgMembership represents the membership of a user in an organisation.
// One row per (user, organisation) pair; the repository upserts on that key.
type OrgMembership struct {
	UserID         string    `json:"userID"`         // FK -> users.user_id
	OrganisationID string    `json:"organisationID"` // FK -> organisations.organisation_id
	Role           OrgRole   `json:"role"`
	JoinedAt       time.Time `json:"joinedAt"`
}
