package dto

import (
	"time"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// AuditEntryResponse defines data returned for one audit entry.
type AuditEntryResponse struct {
	AuditID    string                `json:"auditID"`
	ProjectID  string                `json:"projectID"`
	EntityType domain.EntityType     `json:"entityType"`
	EntityID   string                `json:"entityID"`
	ActorID    string                `json:"actorID"`
	FromState  domain.WorkflowStatus `json:"fromState"`
	ToState    domain.WorkflowStatus `json:"toState"`
	Authorized bool                  `json:"authorized"`
	Reason     string                `json:"reason,omitempty"`
	OccurredAt time.Time             `json:"occurredAt"`
}

// ToAuditEntryResponse converts domain.AuditEntry to DTO.
func ToAuditEntryResponse(e *domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		AuditID:    e.AuditID,
		ProjectID:  e.ProjectID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		ActorID:    e.ActorID,
		FromState:  e.FromState,
		ToState:    e.ToState,
		Authorized: e.Authorized,
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt,
	}
}

// ListAuditResponse wraps a page of audit entries.
type ListAuditResponse struct {
	Entries   []AuditEntryResponse `json:"entries"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// ToListAuditResponse converts a slice of domain.AuditEntry to DTO.
func ToListAuditResponse(entries []domain.AuditEntry, nextToken *string) ListAuditResponse {
	list := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		list[i] = ToAuditEntryResponse(&e)
	}
	return ListAuditResponse{Entries: list, NextToken: nextToken}
}
