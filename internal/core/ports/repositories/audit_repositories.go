package repositories

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// AuditWriter appends to the audit log. There are no update or delete
// operations anywhere on audit entries.
type AuditWriter interface {
	// SaveAuditEntry appends a single entry, used for denied or invalid
	// attempts where no entity write happens.
	SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error
}

// AuditReader lists audit entries for forensics.
type AuditReader interface {
	// ListAuditByProject retrieves entries newest-first with cursor pagination.
	ListAuditByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.AuditEntry, *string, error)

	// ListAuditByEntity retrieves all entries for one entity, newest-first.
	ListAuditByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.AuditEntry, error)
}

// AuditRepositoryFacade combines audit reader and writer interfaces
type AuditRepositoryFacade interface {
	AuditWriter
	AuditReader
}
