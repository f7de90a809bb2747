package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
)

// auditService exposes read access to the append-only audit log.
type auditService struct {
	auditRepo    portsrepo.AuditReader
	workflowRepo portsrepo.WorkflowReader
	tenancy      portssvc.TenancySvcFacade
}

// NewAuditService creates a new auditService.
func NewAuditService(ar portsrepo.AuditReader, wr portsrepo.WorkflowReader, tenancy portssvc.TenancySvcFacade) portssvc.AuditSvcFacade {
	return &auditService{
		auditRepo:    ar,
		workflowRepo: wr,
		tenancy:      tenancy,
	}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// ListProjectAudit retrieves a project's audit entries newest-first.
func (s *auditService) ListProjectAudit(ctx context.Context, projectID, requestingUserID string, limit int, nextToken *string) ([]domain.AuditEntry, *string, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, token, err := s.auditRepo.ListAuditByProject(ctx, projectID, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project audit: %w", err)
	}
	return entries, token, nil
}

// ListEntityAudit retrieves all entries for one entity, newest-first. The
// entity's project gates access.
func (s *auditService) ListEntityAudit(ctx context.Context, entityType domain.EntityType, entityID, requestingUserID string) ([]domain.AuditEntry, error) {
	item, err := s.workflowRepo.FindWorkflowItem(ctx, entityType, entityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", entityType, entityID))
		}
		return nil, fmt.Errorf("failed to load entity for audit listing: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, item.ProjectID, allProjectRoles...); err != nil {
		return nil, err
	}

	entries, err := s.auditRepo.ListAuditByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entity audit: %w", err)
	}
	return entries, nil
}
