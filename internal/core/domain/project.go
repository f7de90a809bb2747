package domain

import "time"

// ProjectStatus indicates the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

// Project is a delivery engagement owned by an organisation.
type Project struct {
	ProjectID      string        `json:"projectID"`      // Primary Key (UUID)
	OrganisationID string        `json:"organisationID"` // FK -> organisations.organisation_id
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         ProjectStatus `json:"status"`
	AuditFields
	Version int64 `json:"version"`
}

// ProjectRole defines the possible roles a user can have within a project.
// RoleAdmin and RoleNone are effective-access values only; they are never
// stored on a membership row.
type ProjectRole string

const (
	RoleSupplierPM      ProjectRole = "SUPPLIER_PM"
	RoleCustomerPM      ProjectRole = "CUSTOMER_PM"
	RoleSupplierFinance ProjectRole = "SUPPLIER_FINANCE"
	RoleCustomerFinance ProjectRole = "CUSTOMER_FINANCE"
	RoleContributor     ProjectRole = "CONTRIBUTOR"
	RoleViewer          ProjectRole = "VIEWER"
	RoleAdmin           ProjectRole = "ADMIN"
	RoleNone            ProjectRole = "NONE"
)

// ValidMembershipRole reports whether a role may be stored on a
// ProjectMembership row.
func ValidMembershipRole(r ProjectRole) bool {
	switch r {
	case RoleSupplierPM, RoleCustomerPM, RoleSupplierFinance, RoleCustomerFinance, RoleContributor, RoleViewer:
		return true
	}
	return false
}

// ProjectMembership represents the membership of a user in a project.
// Exactly one role per (user, project); the repository upserts on that key.
type ProjectMembership struct {
	UserID    string      `json:"userID"`    // FK -> users.user_id
	ProjectID string      `json:"projectID"` // FK -> projects.project_id
	Role      ProjectRole `json:"role"`
	JoinedAt  time.Time   `json:"joinedAt"`
}

// AccessSource records which rule produced an effective access resolution.
type AccessSource string

const (
	SourceSystemOverride     AccessSource = "SYSTEM_OVERRIDE"
	SourceOrgOverride        AccessSource = "ORG_OVERRIDE"
	SourceExplicitMembership AccessSource = "EXPLICIT_MEMBERSHIP"
	SourceDenied             AccessSource = "DENIED"
)

// EffectiveAccess is the result of resolving a user's access to a project.
// "No access" is a normal result (RoleNone/SourceDenied), not an error.
type EffectiveAccess struct {
	Role   ProjectRole  `json:"role"`
	Source AccessSource `json:"source"`
}

// CanWrite reports whether the effective role may mutate project entities at
// all. Policy rules further restrict individual transitions.
func (a EffectiveAccess) CanWrite() bool {
	switch a.Role {
	case RoleNone, RoleViewer:
		return false
	}
	return true
}
