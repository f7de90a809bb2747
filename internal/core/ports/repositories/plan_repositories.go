package repositories

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// PlanReader defines read operations over the project plan hierarchy.
type PlanReader interface {
	FindComponentByID(ctx context.Context, componentID string) (*domain.Component, error)
	ListComponentsByProject(ctx context.Context, projectID string) ([]domain.Component, error)

	FindMilestoneByID(ctx context.Context, milestoneID string) (*domain.Milestone, error)
	ListMilestonesByProject(ctx context.Context, projectID string) ([]domain.Milestone, error)

	FindDeliverableByID(ctx context.Context, deliverableID string) (*domain.Deliverable, error)
	ListDeliverablesByProject(ctx context.Context, projectID string) ([]domain.Deliverable, error)
	ListDeliverablesByMilestone(ctx context.Context, milestoneID string) ([]domain.Deliverable, error)
}

// PlanWriter defines write operations over the project plan hierarchy.
// Updates are version-checked and return apperrors.ErrStaleVersion on
// mismatch. Structural deletes are hard deletes; the service layer blocks
// them once a baseline exists and soft-closes instead.
type PlanWriter interface {
	SaveComponent(ctx context.Context, component domain.Component) error

	SaveMilestone(ctx context.Context, milestone domain.Milestone) error
	UpdateMilestone(ctx context.Context, milestone domain.Milestone, expectedVersion int64) error
	DeleteMilestone(ctx context.Context, milestoneID string) error

	SaveDeliverable(ctx context.Context, deliverable domain.Deliverable) error
	UpdateDeliverable(ctx context.Context, deliverable domain.Deliverable, expectedVersion int64) error
	DeleteDeliverable(ctx context.Context, deliverableID string) error
}

// PlanRepositoryFacade combines plan reader and writer interfaces
type PlanRepositoryFacade interface {
	PlanReader
	PlanWriter
}
