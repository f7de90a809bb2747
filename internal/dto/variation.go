package dto

import (
	"time"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DiffOpDTO is one proposed add/remove/modify operation.
type DiffOpDTO struct {
	Op         domain.DiffOpType `json:"op" binding:"required,oneof=ADD REMOVE MODIFY"`
	EntityType domain.EntityType `json:"entityType" binding:"required,oneof=MILESTONE DELIVERABLE"`
	EntityID   string            `json:"entityID"`
	Values     *EntityValuesDTO  `json:"values"`
}

// EntityValuesDTO is the field set a diff operation may write.
type EntityValuesDTO struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	MilestoneID *string          `json:"milestoneID"`
	ComponentID *string          `json:"componentID"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	DueDate     *time.Time       `json:"dueDate"`
	EffortHours *decimal.Decimal `json:"effortHours"`
	Value       *decimal.Decimal `json:"value"`
}

// CreateVariationRequest defines data for raising a variation.
type CreateVariationRequest struct {
	Title     string      `json:"title" binding:"required"`
	Rationale string      `json:"rationale"`
	Diff      []DiffOpDTO `json:"diff" binding:"required,min=1,dive"`
}

// UpdateVariationRequest edits a draft variation.
type UpdateVariationRequest struct {
	Title     *string     `json:"title"`
	Rationale *string     `json:"rationale"`
	Diff      []DiffOpDTO `json:"diff"`
	Version   int64       `json:"version" binding:"required"`
}

// ToDomainDiff converts DTO diff operations to domain ones.
func ToDomainDiff(ops []DiffOpDTO) []domain.DiffOp {
	diff := make([]domain.DiffOp, len(ops))
	for i, op := range ops {
		var values *domain.EntityValues
		if op.Values != nil {
			values = &domain.EntityValues{
				Name:        op.Values.Name,
				Description: op.Values.Description,
				MilestoneID: op.Values.MilestoneID,
				ComponentID: op.Values.ComponentID,
				StartDate:   op.Values.StartDate,
				EndDate:     op.Values.EndDate,
				DueDate:     op.Values.DueDate,
				EffortHours: op.Values.EffortHours,
				Value:       op.Values.Value,
			}
		}
		diff[i] = domain.DiffOp{
			Op:         op.Op,
			EntityType: op.EntityType,
			EntityID:   op.EntityID,
			Values:     values,
		}
	}
	return diff
}

// VariationResponse defines data returned for a variation.
type VariationResponse struct {
	VariationID   string                `json:"variationID"`
	ProjectID     string                `json:"projectID"`
	Title         string                `json:"title"`
	Rationale     string                `json:"rationale"`
	Status        domain.WorkflowStatus `json:"status"`
	Diff          []domain.DiffOp       `json:"diff"`
	ImplementedAt *time.Time            `json:"implementedAt,omitempty"`
	Version       int64                 `json:"version"`
}

// ToVariationResponse converts domain.Variation to DTO.
func ToVariationResponse(v *domain.Variation) VariationResponse {
	return VariationResponse{
		VariationID:   v.VariationID,
		ProjectID:     v.ProjectID,
		Title:         v.Title,
		Rationale:     v.Rationale,
		Status:        v.Status,
		Diff:          v.Diff,
		ImplementedAt: v.ImplementedAt,
		Version:       v.Version,
	}
}

// ListVariationsResponse wraps a list of variations.
type ListVariationsResponse struct {
	Variations []VariationResponse `json:"variations"`
}

// ToListVariationsResponse converts a slice of domain.Variation to DTO.
func ToListVariationsResponse(vs []domain.Variation) ListVariationsResponse {
	list := make([]VariationResponse, len(vs))
	for i, v := range vs {
		list[i] = ToVariationResponse(&v)
	}
	return ListVariationsResponse{Variations: list}
}
