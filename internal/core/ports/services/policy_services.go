package services

import "github.com/planlane/project_delivery_app/internal/core/domain"

// PolicySvcFacade decides whether an approval is required for an
// entity-action and whether a given role may grant it. Implementations are
// pure functions of (settings, role, context): no storage access, so the
// self-referential-policy failure class cannot occur.
type PolicySvcFacade interface {
	// Requirement returns the approval rule gating (entityType, key) under
	// the project's settings, applying defaults for unset keys.
	Requirement(key domain.ApprovalKey, settings domain.WorkflowSettings) domain.ApprovalRule

	// CanAct reports whether an actor with the given effective role may
	// grant an approval under the rule. RoleAdmin always may; an
	// unrequired rule gates nothing.
	CanAct(rule domain.ApprovalRule, entityType domain.EntityType, role domain.ProjectRole, apctx domain.ApprovalContext) bool

	// AllowedRoles lists the project roles permitted by the rule, for error
	// messages that name the missing authority.
	AllowedRoles(rule domain.ApprovalRule, entityType domain.EntityType, apctx domain.ApprovalContext) []domain.ProjectRole
}
