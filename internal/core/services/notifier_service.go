package services

import (
	"context"
	"log/slog"

	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// logNotifier is the default NotificationDispatcher: it records the event in
// the structured log and nothing else. A real delivery channel (email, chat
// webhook) slots in behind the same interface.
type logNotifier struct{}

// NewLogNotifier creates a dispatcher that logs transition events.
func NewLogNotifier() portssvc.NotificationDispatcher {
	return &logNotifier{}
}

var _ portssvc.NotificationDispatcher = (*logNotifier)(nil)

func (n *logNotifier) NotifyTransition(ctx context.Context, event portssvc.TransitionEvent) {
	middleware.GetLoggerFromCtx(ctx).Info("Transition notification",
		slog.String("project_id", event.ProjectID),
		slog.String("entity_type", string(event.EntityType)),
		slog.String("entity_id", event.EntityID),
		slog.String("to_state", string(event.ToState)),
		slog.String("actor_id", event.ActorID),
		slog.Int("affected_actors", len(event.AffectedActorIDs)),
	)
}
