package services

import (
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
)

// policyService answers "who may grant this approval" from the project's
// workflow settings. It is a pure decision table over the closed authority
// enum: no storage reads happen here, so evaluating a rule can never recurse
// into another authorization check.
type policyService struct{}

// NewPolicyService creates a new policyService.
func NewPolicyService() portssvc.PolicySvcFacade {
	return &policyService{}
}

var _ portssvc.PolicySvcFacade = (*policyService)(nil)

// Requirement returns the rule gating the given entity-action, with defaults
// applied for keys the project never configured.
func (s *policyService) Requirement(key domain.ApprovalKey, settings domain.WorkflowSettings) domain.ApprovalRule {
	return settings.Rule(key)
}

// AllowedRoles lists the project roles the rule's authority mode accepts.
// An unknown mode yields an empty set: nobody is allowed rather than everybody.
func (s *policyService) AllowedRoles(rule domain.ApprovalRule, entityType domain.EntityType, apctx domain.ApprovalContext) []domain.ProjectRole {
	switch rule.Authority {
	case domain.AuthorityBoth, domain.AuthorityEither:
		return []domain.ProjectRole{domain.RoleSupplierPM, domain.RoleCustomerPM}
	case domain.AuthoritySupplierOnly, domain.AuthoritySupplierRole:
		return []domain.ProjectRole{domain.RoleSupplierPM}
	case domain.AuthorityCustomerOnly, domain.AuthorityCustomerRole:
		return []domain.ProjectRole{domain.RoleCustomerPM}
	case domain.AuthorityNone:
		return nil
	case domain.AuthorityConditional:
		return conditionalRoles(entityType, apctx)
	}
	return []domain.ProjectRole{}
}

// conditionalRoles evaluates the per-entity predicate behind the conditional
// authority mode. Only expenses define one: chargeable expenses need both
// PMs, internal ones just the supplier PM. Other entity types degrade to
// supplier-PM-only.
func conditionalRoles(entityType domain.EntityType, apctx domain.ApprovalContext) []domain.ProjectRole {
	if entityType == domain.EntityExpense && apctx.ChargeableToCustomer {
		return []domain.ProjectRole{domain.RoleSupplierPM, domain.RoleCustomerPM}
	}
	return []domain.ProjectRole{domain.RoleSupplierPM}
}

// CanAct reports whether an actor with the given effective role may grant an
// approval under the rule. Unrequired rules gate nothing, AuthorityNone
// accepts anyone with write access, and RoleAdmin always passes.
func (s *policyService) CanAct(rule domain.ApprovalRule, entityType domain.EntityType, role domain.ProjectRole, apctx domain.ApprovalContext) bool {
	if !rule.Required {
		return true
	}
	if role == domain.RoleAdmin {
		return true
	}
	if rule.Authority == domain.AuthorityNone {
		return true
	}
	for _, allowed := range s.AllowedRoles(rule, entityType, apctx) {
		if role == allowed {
			return true
		}
	}
	return false
}
