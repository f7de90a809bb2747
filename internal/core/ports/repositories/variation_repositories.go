package repositories

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// VariationReader defines read operations for variations.
type VariationReader interface {
	FindVariationByID(ctx context.Context, variationID string) (*domain.Variation, error)
	ListVariationsByProject(ctx context.Context, projectID string) ([]domain.Variation, error)
}

// VariationWriter defines write operations for variations.
type VariationWriter interface {
	// SaveVariation persists a new draft variation.
	SaveVariation(ctx context.Context, variation domain.Variation) error

	// UpdateVariation updates a draft variation's content with a version check.
	UpdateVariation(ctx context.Context, variation domain.Variation, expectedVersion int64) error
}

// VariationImplementer applies an approved variation.
type VariationImplementer interface {
	// ImplementVariation moves the variation to implemented and applies the
	// plan mutation, including the refreshed baseline snapshots carried on
	// the update rows, in a single transaction. Any failure rolls the whole
	// transaction back, leaving the variation approved and the plan
	// untouched. The variation update is guarded by variation.Version.
	ImplementVariation(ctx context.Context, variation domain.Variation, mutation domain.PlanMutation, entry domain.AuditEntry) error
}

// VariationRepositoryFacade combines all variation repository interfaces
type VariationRepositoryFacade interface {
	VariationReader
	VariationWriter
	VariationImplementer
}
