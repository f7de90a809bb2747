package repositories

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// BaselineRepositoryFacade persists baseline commits.
type BaselineRepositoryFacade interface {
	// FindBaselineByProject retrieves the project's baseline record.
	// Returns apperrors.ErrNotFound when the project is not baselined.
	FindBaselineByProject(ctx context.Context, projectID string) (*domain.Baseline, error)

	// CommitBaseline inserts the baseline record and writes the given
	// snapshots onto every entity in one transaction: either every entity
	// gets its snapshot or none do. Returns apperrors.ErrAlreadyBaselined
	// when a baseline record already exists for the project.
	CommitBaseline(ctx context.Context, baseline domain.Baseline, milestones []domain.Milestone, deliverables []domain.Deliverable) error
}
