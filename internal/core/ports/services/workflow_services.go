package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// TransitionRequest asks the state machine to move one entity to a new state.
// Version is the entity version the caller last observed; a request against
// an entity whose stored version has moved on is rejected as stale.
type TransitionRequest struct {
	EntityType domain.EntityType
	EntityID   string
	ToState    domain.WorkflowStatus
	ActorID    string
	Version    int64
}

// TransitionResult reports the outcome of a successful transition call.
// Advanced is false when the call recorded the first half of a dual
// sign-off without moving the status. Warnings carry lenient, non-blocking
// observations such as incomplete children under a completed parent.
type TransitionResult struct {
	Item     domain.WorkflowItem
	Advanced bool
	Warnings []string
}

// WorkflowSvcFacade is the entry point for every status mutation of a
// tracked entity.
type WorkflowSvcFacade interface {
	// Transition validates the move against the entity's graph, re-resolves
	// the actor's role, consults policy, and applies the change atomically
	// with its approval decision and audit entry. Every attempt is audited,
	// denials included.
	Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error)

	// ReverseApproval is the administrative reversal of an approved
	// timesheet or expense back to draft. Admin-gated, audited with the
	// given reason, and not a graph edge.
	ReverseApproval(ctx context.Context, entityType domain.EntityType, entityID, actorID, reason string) (*TransitionResult, error)
}
