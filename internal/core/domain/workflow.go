package domain

import "time"

// EntityType identifies the kind of tracked entity a workflow operates on.
type EntityType string

const (
	EntityMilestone   EntityType = "MILESTONE"
	EntityDeliverable EntityType = "DELIVERABLE"
	EntityTimesheet   EntityType = "TIMESHEET"
	EntityExpense     EntityType = "EXPENSE"
	EntityVariation   EntityType = "VARIATION"
)

// WorkflowStatus is the status vocabulary shared by all tracked entities.
// Each entity type only ever uses the subset its transition graph names.
type WorkflowStatus string

const (
	StatusNotStarted     WorkflowStatus = "NOT_STARTED"
	StatusInProgress     WorkflowStatus = "IN_PROGRESS"
	StatusComplete       WorkflowStatus = "COMPLETE"
	StatusSignedOff      WorkflowStatus = "SIGNED_OFF"
	StatusDraft          WorkflowStatus = "DRAFT"
	StatusReadyForReview WorkflowStatus = "READY_FOR_REVIEW"
	StatusDelivered      WorkflowStatus = "DELIVERED"
	StatusAccepted       WorkflowStatus = "ACCEPTED"
	StatusSubmitted      WorkflowStatus = "SUBMITTED"
	StatusApproved       WorkflowStatus = "APPROVED"
	StatusRejected       WorkflowStatus = "REJECTED"
	StatusImplemented    WorkflowStatus = "IMPLEMENTED"
)

// AuthorityMode names who may grant an approval.
type AuthorityMode string

const (
	AuthorityBoth         AuthorityMode = "BOTH" // supplier and customer PM must both approve
	AuthorityEither       AuthorityMode = "EITHER"
	AuthoritySupplierOnly AuthorityMode = "SUPPLIER_ONLY"
	AuthorityCustomerOnly AuthorityMode = "CUSTOMER_ONLY"
	AuthoritySupplierRole AuthorityMode = "SUPPLIER_ROLE" // legacy alias of SUPPLIER_ONLY
	AuthorityCustomerRole AuthorityMode = "CUSTOMER_ROLE" // legacy alias of CUSTOMER_ONLY
	AuthorityNone         AuthorityMode = "NONE"
	AuthorityConditional  AuthorityMode = "CONDITIONAL"
)

// ValidAuthorityMode reports whether m is a known authority mode.
func ValidAuthorityMode(m AuthorityMode) bool {
	switch m {
	case AuthorityBoth, AuthorityEither, AuthoritySupplierOnly, AuthorityCustomerOnly,
		AuthoritySupplierRole, AuthorityCustomerRole, AuthorityNone, AuthorityConditional:
		return true
	}
	return false
}

// ApprovalKey identifies a gated entity-action in the workflow settings.
type ApprovalKey string

const (
	KeyMilestoneBaseline  ApprovalKey = "milestone.baseline"
	KeyMilestoneComplete  ApprovalKey = "milestone.complete"
	KeyMilestoneSignoff   ApprovalKey = "milestone.signoff"
	KeyDeliverableSignoff ApprovalKey = "deliverable.signoff"
	KeyTimesheetApproval  ApprovalKey = "timesheet.approval"
	KeyExpenseApproval    ApprovalKey = "expense.approval"
	KeyVariationApproval  ApprovalKey = "variation.approval"
)

// KnownApprovalKeys is the closed set of configurable entity-actions.
var KnownApprovalKeys = []ApprovalKey{
	KeyMilestoneBaseline,
	KeyMilestoneComplete,
	KeyMilestoneSignoff,
	KeyDeliverableSignoff,
	KeyTimesheetApproval,
	KeyExpenseApproval,
	KeyVariationApproval,
}

// ApprovalRule configures one gated entity-action.
type ApprovalRule struct {
	Required  bool          `json:"required"`
	Authority AuthorityMode `json:"authority"`
}

// WorkflowSettings is the per-project approval configuration, a closed
// enum-keyed mapping rather than a free-form blob.
type WorkflowSettings struct {
	ProjectID string                      `json:"projectID"`
	Rules     map[ApprovalKey]ApprovalRule `json:"rules"`
	AuditFields
	Version int64 `json:"version"`
}

// DefaultWorkflowRules returns the rule set applied when a project has no
// explicit settings: dual sign-off on milestone sign-off, single-party
// approval everywhere else.
func DefaultWorkflowRules() map[ApprovalKey]ApprovalRule {
	return map[ApprovalKey]ApprovalRule{
		KeyMilestoneBaseline:  {Required: true, Authority: AuthorityEither},
		KeyMilestoneComplete:  {Required: false, Authority: AuthorityNone},
		KeyMilestoneSignoff:   {Required: true, Authority: AuthorityBoth},
		KeyDeliverableSignoff: {Required: true, Authority: AuthorityCustomerOnly},
		KeyTimesheetApproval:  {Required: true, Authority: AuthoritySupplierOnly},
		KeyExpenseApproval:    {Required: true, Authority: AuthorityConditional},
		KeyVariationApproval:  {Required: true, Authority: AuthorityBoth},
	}
}

// Rule returns the configured rule for a key, falling back to the defaults.
func (s WorkflowSettings) Rule(key ApprovalKey) ApprovalRule {
	if s.Rules != nil {
		if r, ok := s.Rules[key]; ok {
			return r
		}
	}
	return DefaultWorkflowRules()[key]
}

// Decision is the outcome recorded by an approver.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// ApprovalDecision is one recorded approval on a tracked entity. Decisions
// are immutable once recorded; membership revocation does not remove them.
type ApprovalDecision struct {
	DecisionID string         `json:"decisionID"`
	EntityType EntityType     `json:"entityType"`
	EntityID   string         `json:"entityID"`
	Role       ProjectRole    `json:"role"`
	ActorID    string         `json:"actorID"`
	Decision   Decision       `json:"decision"`
	ToState    WorkflowStatus `json:"toState"`
	DecidedAt  time.Time      `json:"decidedAt"`
}

// ApprovalContext carries per-entity facts consulted by conditional
// authority predicates.
type ApprovalContext struct {
	ChargeableToCustomer bool `json:"chargeableToCustomer"`
}

// WorkflowItem is the state-machine view of a tracked entity: just enough to
// validate and apply a transition, independent of the entity's full row.
type WorkflowItem struct {
	EntityType EntityType         `json:"entityType"`
	EntityID   string             `json:"entityID"`
	ProjectID  string             `json:"projectID"`
	Status     WorkflowStatus     `json:"status"`
	Version    int64              `json:"version"`
	Approvals  []ApprovalDecision `json:"approvals"`
	Context    ApprovalContext    `json:"context"`
}

// ApprovedRolesFor returns the distinct roles that have an approval recorded
// for the given target state.
func (w WorkflowItem) ApprovedRolesFor(toState WorkflowStatus) map[ProjectRole]bool {
	roles := make(map[ProjectRole]bool)
	for _, d := range w.Approvals {
		if d.Decision == DecisionApproved && d.ToState == toState {
			roles[d.Role] = true
		}
	}
	return roles
}
