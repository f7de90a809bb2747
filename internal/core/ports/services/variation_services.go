package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	"github.com/planlane/project_delivery_app/internal/dto"
)

// VariationSvcFacade manages formal change requests against a baselined plan.
type VariationSvcFacade interface {
	// CreateVariation persists a new draft variation.
	CreateVariation(ctx context.Context, projectID string, req dto.CreateVariationRequest, creatorUserID string) (*domain.Variation, error)

	// UpdateVariation replaces the diff/title of a draft variation.
	UpdateVariation(ctx context.Context, variationID string, req dto.UpdateVariationRequest, actorID string) (*domain.Variation, error)

	// GetVariationByID retrieves a variation, authorising against its project.
	GetVariationByID(ctx context.Context, variationID, actorID string) (*domain.Variation, error)

	// ListProjectVariations lists a project's variations.
	ListProjectVariations(ctx context.Context, projectID, actorID string) ([]domain.Variation, error)

	// Submit, Approve and Reject walk the variation graph via the workflow
	// state machine.
	Submit(ctx context.Context, variationID, actorID string) (*domain.Variation, error)
	Approve(ctx context.Context, variationID, actorID string) (*domain.Variation, error)
	Reject(ctx context.Context, variationID, actorID string) (*domain.Variation, error)

	// Implement validates the proposed diff against current entity state and
	// applies it atomically, re-baselining exactly the affected entities.
	// On any failure the variation stays approved and nothing is applied.
	Implement(ctx context.Context, variationID, actorID string) (*domain.Variation, error)
}
