package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// TransitionEvent describes a successful transition for downstream delivery.
type TransitionEvent struct {
	ProjectID        string
	EntityType       domain.EntityType
	EntityID         string
	ToState          domain.WorkflowStatus
	ActorID          string
	AffectedActorIDs []string
}

// NotificationDispatcher is invoked fire-and-forget after a successful
// transition. Implementations must not block the request path; delivery
// failures are logged, never surfaced to the caller.
type NotificationDispatcher interface {
	NotifyTransition(ctx context.Context, event TransitionEvent)
}
