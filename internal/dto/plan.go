package dto

import (
	"time"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Component DTOs ---

// CreateComponentRequest defines data for creating a plan component.
type CreateComponentRequest struct {
	Name              string  `json:"name" binding:"required"`
	ParentComponentID *string `json:"parentComponentID"`
}

// ComponentResponse defines data returned for a component.
type ComponentResponse struct {
	ComponentID       string  `json:"componentID"`
	ProjectID         string  `json:"projectID"`
	ParentComponentID *string `json:"parentComponentID,omitempty"`
	Name              string  `json:"name"`
}

// ToComponentResponse converts domain.Component to DTO.
func ToComponentResponse(c *domain.Component) ComponentResponse {
	return ComponentResponse{
		ComponentID:       c.ComponentID,
		ProjectID:         c.ProjectID,
		ParentComponentID: c.ParentComponentID,
		Name:              c.Name,
	}
}

// --- Milestone DTOs ---

// CreateMilestoneRequest defines data for creating a milestone.
type CreateMilestoneRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	ComponentID *string          `json:"componentID"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	EffortHours *decimal.Decimal `json:"effortHours"`
	Value       *decimal.Decimal `json:"value"`
}

// UpdateMilestoneRequest edits milestone content. Dates and values stay
// editable after baselining; the difference shows up as variance.
type UpdateMilestoneRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	EffortHours *decimal.Decimal `json:"effortHours"`
	Value       *decimal.Decimal `json:"value"`
	Version     int64            `json:"version" binding:"required"`
}

// BaselineSnapshotDTO is the frozen plan values of an entity.
type BaselineSnapshotDTO struct {
	BaselineID  string          `json:"baselineID"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	EffortHours decimal.Decimal `json:"effortHours"`
	Value       decimal.Decimal `json:"value"`
	TakenAt     time.Time       `json:"takenAt"`
}

func toBaselineSnapshotDTO(b *domain.BaselineSnapshot) *BaselineSnapshotDTO {
	if b == nil {
		return nil
	}
	return &BaselineSnapshotDTO{
		BaselineID:  b.BaselineID,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		DueDate:     b.DueDate,
		EffortHours: b.EffortHours,
		Value:       b.Value,
		TakenAt:     b.TakenAt,
	}
}

// MilestoneResponse defines data returned for a milestone.
type MilestoneResponse struct {
	MilestoneID string                `json:"milestoneID"`
	ProjectID   string                `json:"projectID"`
	ComponentID *string               `json:"componentID,omitempty"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Status      domain.WorkflowStatus `json:"status"`
	StartDate   *time.Time            `json:"startDate,omitempty"`
	EndDate     *time.Time            `json:"endDate,omitempty"`
	EffortHours decimal.Decimal       `json:"effortHours"`
	Value       decimal.Decimal       `json:"value"`
	Baseline    *BaselineSnapshotDTO  `json:"baseline,omitempty"`
	SoftClosed  bool                  `json:"softClosed"`
	Version     int64                 `json:"version"`
}

// ToMilestoneResponse converts domain.Milestone to DTO.
func ToMilestoneResponse(m *domain.Milestone) MilestoneResponse {
	return MilestoneResponse{
		MilestoneID: m.MilestoneID,
		ProjectID:   m.ProjectID,
		ComponentID: m.ComponentID,
		Name:        m.Name,
		Description: m.Description,
		Status:      m.Status,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		EffortHours: m.EffortHours,
		Value:       m.Value,
		Baseline:    toBaselineSnapshotDTO(m.Baseline),
		SoftClosed:  m.SoftClosed,
		Version:     m.Version,
	}
}

// --- Deliverable DTOs ---

// CreateDeliverableRequest defines data for creating a deliverable.
type CreateDeliverableRequest struct {
	MilestoneID string           `json:"milestoneID" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	DueDate     *time.Time       `json:"dueDate"`
	EffortHours *decimal.Decimal `json:"effortHours"`
	Value       *decimal.Decimal `json:"value"`
}

// UpdateDeliverableRequest edits deliverable content.
type UpdateDeliverableRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	DueDate     *time.Time       `json:"dueDate"`
	EffortHours *decimal.Decimal `json:"effortHours"`
	Value       *decimal.Decimal `json:"value"`
	Version     int64            `json:"version" binding:"required"`
}

// DeliverableResponse defines data returned for a deliverable.
type DeliverableResponse struct {
	DeliverableID string                `json:"deliverableID"`
	ProjectID     string                `json:"projectID"`
	MilestoneID   string                `json:"milestoneID"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Status        domain.WorkflowStatus `json:"status"`
	DueDate       *time.Time            `json:"dueDate,omitempty"`
	EffortHours   decimal.Decimal       `json:"effortHours"`
	Value         decimal.Decimal       `json:"value"`
	Baseline      *BaselineSnapshotDTO  `json:"baseline,omitempty"`
	SoftClosed    bool                  `json:"softClosed"`
	Version       int64                 `json:"version"`
}

// ToDeliverableResponse converts domain.Deliverable to DTO.
func ToDeliverableResponse(d *domain.Deliverable) DeliverableResponse {
	return DeliverableResponse{
		DeliverableID: d.DeliverableID,
		ProjectID:     d.ProjectID,
		MilestoneID:   d.MilestoneID,
		Name:          d.Name,
		Description:   d.Description,
		Status:        d.Status,
		DueDate:       d.DueDate,
		EffortHours:   d.EffortHours,
		Value:         d.Value,
		Baseline:      toBaselineSnapshotDTO(d.Baseline),
		SoftClosed:    d.SoftClosed,
		Version:       d.Version,
	}
}
