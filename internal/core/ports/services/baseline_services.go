package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// BaselineSvcFacade owns baseline commits, variance and breach detection.
type BaselineSvcFacade interface {
	// CommitBaseline snapshots every milestone and deliverable in the
	// project atomically and returns the new baseline id. A project may be
	// committed directly at most once; afterwards only an implemented
	// variation refreshes baselines.
	CommitBaseline(ctx context.Context, projectID, actorID string) (string, error)

	// VarianceReport computes current-vs-baseline variance for every
	// baselined entity in the project.
	VarianceReport(ctx context.Context, projectID, actorID string) ([]domain.Variance, error)

	// DetectBreach reports whether any child deliverable's current due date
	// exceeds the milestone's frozen baseline end date. Nil when there is
	// no breach or the milestone has no baseline.
	DetectBreach(ctx context.Context, milestoneID string) (*domain.BreachInfo, error)
}
