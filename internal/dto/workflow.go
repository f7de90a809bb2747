package dto

import (
	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// TransitionRequest asks for a status transition on a tracked entity. Version
// is the version the caller last read; a stale observation is rejected.
type TransitionRequest struct {
	ToState domain.WorkflowStatus `json:"toState" binding:"required"`
	Version int64                 `json:"version" binding:"required"`
}

// ReverseApprovalRequest asks for an administrative reversal of an approved
// timesheet or expense.
type ReverseApprovalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransitionResponse reports the transition outcome.
type TransitionResponse struct {
	EntityType domain.EntityType     `json:"entityType"`
	EntityID   string                `json:"entityID"`
	Status     domain.WorkflowStatus `json:"status"`
	Advanced   bool                  `json:"advanced"`
	Version    int64                 `json:"version"`
	Warnings   []string              `json:"warnings,omitempty"`
}
