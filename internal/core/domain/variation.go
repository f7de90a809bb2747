package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiffOpType is the kind of structural change a variation proposes.
type DiffOpType string

const (
	DiffAdd    DiffOpType = "ADD"
	DiffRemove DiffOpType = "REMOVE"
	DiffModify DiffOpType = "MODIFY"
)

// EntityValues is the subset of tracked-entity fields a variation may set.
// Nil fields are left untouched on modify.
type EntityValues struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	MilestoneID *string          `json:"milestoneID,omitempty"` // deliverable parent
	ComponentID *string          `json:"componentID,omitempty"` // milestone parent
	StartDate   *time.Time       `json:"startDate,omitempty"`
	EndDate     *time.Time       `json:"endDate,omitempty"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	EffortHours *decimal.Decimal `json:"effortHours,omitempty"`
	Value       *decimal.Decimal `json:"value,omitempty"`
}

// DiffOp is one add/remove/modify operation against a tracked entity.
// Add ops carry a caller-assigned EntityID so the diff is self-describing.
type DiffOp struct {
	Op         DiffOpType    `json:"op"`
	EntityType EntityType    `json:"entityType"` // MILESTONE or DELIVERABLE
	EntityID   string        `json:"entityID"`
	Values     *EntityValues `json:"values,omitempty"`
}

// PlanMutation is a validated diff resolved into concrete rows, ready to be
// applied in a single transaction. Update rows carry refreshed baseline
// snapshots; removals are soft-closes when the target is baselined.
type PlanMutation struct {
	AddMilestones        []Milestone
	AddDeliverables      []Deliverable
	UpdateMilestones     []Milestone
	UpdateDeliverables   []Deliverable
	RemoveMilestoneIDs   []string
	RemoveDeliverableIDs []string
}

// Empty reports whether the mutation would change nothing.
func (m PlanMutation) Empty() bool {
	return len(m.AddMilestones) == 0 && len(m.AddDeliverables) == 0 &&
		len(m.UpdateMilestones) == 0 && len(m.UpdateDeliverables) == 0 &&
		len(m.RemoveMilestoneIDs) == 0 && len(m.RemoveDeliverableIDs) == 0
}

// Variation is a formal change request, the only sanctioned path to
// structurally mutate a baselined plan.
type Variation struct {
	VariationID   string         `json:"variationID"` // Primary Key (UUID)
	ProjectID     string         `json:"projectID"`   // FK -> projects.project_id
	Title         string         `json:"title"`
	Rationale     string         `json:"rationale"`
	Status        WorkflowStatus `json:"status"`
	Diff          []DiffOp       `json:"diff"`
	ImplementedAt *time.Time     `json:"implementedAt,omitempty"`
	AuditFields
	Version int64 `json:"version"`
}
