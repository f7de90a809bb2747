package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// AuditSvcFacade exposes the append-only audit log for forensics. There are
// no write operations here; entries are produced by the workflow state
// machine only.
type AuditSvcFacade interface {
	// ListProjectAudit retrieves a project's entries newest-first with
	// cursor pagination.
	ListProjectAudit(ctx context.Context, projectID, requestingUserID string, limit int, nextToken *string) ([]domain.AuditEntry, *string, error)

	// ListEntityAudit retrieves all entries for one entity, newest-first.
	ListEntityAudit(ctx context.Context, entityType domain.EntityType, entityID, requestingUserID string) ([]domain.AuditEntry, error)
}
