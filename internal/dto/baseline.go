package dto

import (
	"github.com/planlane/project_delivery_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CommitBaselineResponse returns the id of a freshly committed baseline.
type CommitBaselineResponse struct {
	BaselineID string `json:"baselineID"`
}

// VarianceEntry is the variance of one baselined entity.
type VarianceEntry struct {
	EntityType        domain.EntityType `json:"entityType"`
	EntityID          string            `json:"entityID"`
	ScheduleDeltaDays int               `json:"scheduleDeltaDays"`
	EffortDeltaHours  decimal.Decimal   `json:"effortDeltaHours"`
	CostDelta         decimal.Decimal   `json:"costDelta"`
	Breach            bool              `json:"breach"`
}

// VarianceReportResponse wraps a project's variance entries.
type VarianceReportResponse struct {
	ProjectID string          `json:"projectID"`
	Entries   []VarianceEntry `json:"entries"`
}

// ToVarianceReportResponse converts domain variances to DTO.
func ToVarianceReportResponse(projectID string, vs []domain.Variance) VarianceReportResponse {
	entries := make([]VarianceEntry, len(vs))
	for i, v := range vs {
		entries[i] = VarianceEntry{
			EntityType:        v.EntityType,
			EntityID:          v.EntityID,
			ScheduleDeltaDays: v.ScheduleDeltaDays,
			EffortDeltaHours:  v.EffortDeltaHours,
			CostDelta:         v.CostDelta,
			Breach:            v.Breach,
		}
	}
	return VarianceReportResponse{ProjectID: projectID, Entries: entries}
}
