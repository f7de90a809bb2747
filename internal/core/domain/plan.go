package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Component groups milestones inside a project plan. Components carry no
// workflow of their own; they exist for structure and breach roll-up.
type Component struct {
	ComponentID       string  `json:"componentID"` // Primary Key (UUID)
	ProjectID         string  `json:"projectID"`   // FK -> projects.project_id
	ParentComponentID *string `json:"parentComponentID,omitempty"`
	Name              string  `json:"name"`
	AuditFields
}

// Milestone is a dated, valued plan item that can require dual sign-off.
type Milestone struct {
	MilestoneID string            `json:"milestoneID"` // Primary Key (UUID)
	ProjectID   string            `json:"projectID"`   // FK -> projects.project_id
	ComponentID *string           `json:"componentID,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Status      WorkflowStatus    `json:"status"`
	StartDate   *time.Time        `json:"startDate,omitempty"`
	EndDate     *time.Time        `json:"endDate,omitempty"`
	EffortHours decimal.Decimal   `json:"effortHours"`
	Value       decimal.Decimal   `json:"value"`
	Baseline    *BaselineSnapshot `json:"baseline,omitempty"`
	SoftClosed  bool              `json:"softClosed"` // baselined entities are never deleted, only soft-closed
	AuditFields
	Version int64 `json:"version"`
}

// Deliverable is a unit of work under a milestone.
type Deliverable struct {
	DeliverableID string            `json:"deliverableID"` // Primary Key (UUID)
	ProjectID     string            `json:"projectID"`     // FK -> projects.project_id
	MilestoneID   string            `json:"milestoneID"`   // FK -> milestones.milestone_id
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Status        WorkflowStatus    `json:"status"`
	DueDate       *time.Time        `json:"dueDate,omitempty"`
	EffortHours   decimal.Decimal   `json:"effortHours"`
	Value         decimal.Decimal   `json:"value"`
	Baseline      *BaselineSnapshot `json:"baseline,omitempty"`
	SoftClosed    bool              `json:"softClosed"`
	AuditFields
	Version int64 `json:"version"`
}
