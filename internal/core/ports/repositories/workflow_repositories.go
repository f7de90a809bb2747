package repositories

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// WorkflowReader loads the state-machine view of any tracked entity.
type WorkflowReader interface {
	// FindWorkflowItem retrieves the workflow projection of an entity:
	// project, status, version, recorded approvals and approval context.
	FindWorkflowItem(ctx context.Context, entityType domain.EntityType, entityID string) (*domain.WorkflowItem, error)
}

// TransitionWriter applies an authorized transition atomically.
type TransitionWriter interface {
	// ApplyTransition updates the entity status, appends the approval
	// decision (when non-nil) and the audit entry in one transaction.
	// The status update is guarded by item.Version; a mismatch returns
	// apperrors.ErrStaleVersion and writes nothing.
	ApplyTransition(ctx context.Context, item domain.WorkflowItem, toState domain.WorkflowStatus, decision *domain.ApprovalDecision, entry domain.AuditEntry) error

	// RecordDecision appends an approval decision plus its audit entry
	// without changing status, for the first half of a dual sign-off.
	// Guarded by item.Version like ApplyTransition.
	RecordDecision(ctx context.Context, item domain.WorkflowItem, decision domain.ApprovalDecision, entry domain.AuditEntry) error
}

// WorkflowRepositoryFacade combines workflow reader and transition writer
type WorkflowRepositoryFacade interface {
	WorkflowReader
	TransitionWriter
}
