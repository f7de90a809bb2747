package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	"github.com/planlane/project_delivery_app/internal/dto"
)

// PlanReaderSvc defines read operations over the plan hierarchy.
type PlanReaderSvc interface {
	GetMilestoneByID(ctx context.Context, milestoneID, requestingUserID string) (*domain.Milestone, error)
	ListProjectMilestones(ctx context.Context, projectID, requestingUserID string) ([]domain.Milestone, error)
	GetDeliverableByID(ctx context.Context, deliverableID, requestingUserID string) (*domain.Deliverable, error)
	ListProjectDeliverables(ctx context.Context, projectID, requestingUserID string) ([]domain.Deliverable, error)
	ListProjectComponents(ctx context.Context, projectID, requestingUserID string) ([]domain.Component, error)
}

// PlanWriterSvc defines write operations over the plan hierarchy. Structural
// creates and deletes are blocked with BaselineLocked once the project is
// baselined; date and description edits stay permitted and show up as
// variance.
type PlanWriterSvc interface {
	CreateComponent(ctx context.Context, projectID string, req dto.CreateComponentRequest, actorID string) (*domain.Component, error)

	CreateMilestone(ctx context.Context, projectID string, req dto.CreateMilestoneRequest, actorID string) (*domain.Milestone, error)
	UpdateMilestone(ctx context.Context, milestoneID string, req dto.UpdateMilestoneRequest, actorID string) (*domain.Milestone, error)
	DeleteMilestone(ctx context.Context, milestoneID, actorID string) error

	CreateDeliverable(ctx context.Context, projectID string, req dto.CreateDeliverableRequest, actorID string) (*domain.Deliverable, error)
	UpdateDeliverable(ctx context.Context, deliverableID string, req dto.UpdateDeliverableRequest, actorID string) (*domain.Deliverable, error)
	DeleteDeliverable(ctx context.Context, deliverableID, actorID string) error
}

// PlanSvcFacade combines plan reader and writer service interfaces
type PlanSvcFacade interface {
	PlanReaderSvc
	PlanWriterSvc
}
