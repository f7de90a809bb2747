package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// planService manages the plan hierarchy. Once a project is baselined,
// structural creates and deletes are locked behind variations; date and
// content edits stay open and surface as variance.
type planService struct {
	planRepo     portsrepo.PlanRepositoryFacade
	baselineRepo portsrepo.BaselineRepositoryFacade
	tenancy      portssvc.TenancySvcFacade
}

// NewPlanService creates a new planService.
func NewPlanService(plr portsrepo.PlanRepositoryFacade, br portsrepo.BaselineRepositoryFacade, tenancy portssvc.TenancySvcFacade) portssvc.PlanSvcFacade {
	return &planService{
		planRepo:     plr,
		baselineRepo: br,
		tenancy:      tenancy,
	}
}

var _ portssvc.PlanSvcFacade = (*planService)(nil)

// allProjectRoles is the read gate: any member, viewer included.
var allProjectRoles = []domain.ProjectRole{
	domain.RoleSupplierPM, domain.RoleCustomerPM,
	domain.RoleSupplierFinance, domain.RoleCustomerFinance,
	domain.RoleContributor, domain.RoleViewer,
}

func (s *planService) GetMilestoneByID(ctx context.Context, milestoneID, requestingUserID string) (*domain.Milestone, error) {
	milestone, err := s.planRepo.FindMilestoneByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("milestone %s not found", milestoneID))
		}
		return nil, fmt.Errorf("failed to load milestone: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, milestone.ProjectID, allProjectRoles...); err != nil {
		return nil, err
	}
	return milestone, nil
}

func (s *planService) ListProjectMilestones(ctx context.Context, projectID, requestingUserID string) ([]domain.Milestone, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, err
	}
	milestones, err := s.planRepo.ListMilestonesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return milestones, nil
}

func (s *planService) GetDeliverableByID(ctx context.Context, deliverableID, requestingUserID string) (*domain.Deliverable, error) {
	deliverable, err := s.planRepo.FindDeliverableByID(ctx, deliverableID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("deliverable %s not found", deliverableID))
		}
		return nil, fmt.Errorf("failed to load deliverable: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, deliverable.ProjectID, allProjectRoles...); err != nil {
		return nil, err
	}
	return deliverable, nil
}

func (s *planService) ListProjectDeliverables(ctx context.Context, projectID, requestingUserID string) ([]domain.Deliverable, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, err
	}
	deliverables, err := s.planRepo.ListDeliverablesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliverables: %w", err)
	}
	return deliverables, nil
}

func (s *planService) ListProjectComponents(ctx context.Context, projectID, requestingUserID string) ([]domain.Component, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, err
	}
	components, err := s.planRepo.ListComponentsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	return components, nil
}

// CreateComponent adds a grouping node to the plan.
func (s *planService) CreateComponent(ctx context.Context, projectID string, req dto.CreateComponentRequest, actorID string) (*domain.Component, error) {
	if _, err := s.tenancy.RequireRole(ctx, actorID, projectID, domain.RoleSupplierPM); err != nil {
		return nil, err
	}
	if err := s.requireNotBaselined(ctx, projectID); err != nil {
		return nil, err
	}

	if req.ParentComponentID != nil {
		parent, err := s.planRepo.FindComponentByID(ctx, *req.ParentComponentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationFailedError(fmt.Sprintf("parent component %s does not exist", *req.ParentComponentID))
			}
			return nil, fmt.Errorf("failed to validate parent component: %w", err)
		}
		if parent.ProjectID != projectID {
			return nil, apperrors.NewValidationFailedError("parent component belongs to a different project")
		}
	}

	now := time.Now()
	component := domain.Component{
		ComponentID:       uuid.NewString(),
		ProjectID:         projectID,
		ParentComponentID: req.ParentComponentID,
		Name:              req.Name,
		AuditFields:       domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID},
	}
	if err := s.planRepo.SaveComponent(ctx, component); err != nil {
		return nil, fmt.Errorf("failed to create component: %w", err)
	}
	return &component, nil
}

// CreateMilestone adds a milestone to an unbaselined plan.
func (s *planService) CreateMilestone(ctx context.Context, projectID string, req dto.CreateMilestoneRequest, actorID string) (*domain.Milestone, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.tenancy.RequireRole(ctx, actorID, projectID, domain.RoleSupplierPM); err != nil {
		return nil, err
	}
	if err := s.requireNotBaselined(ctx, projectID); err != nil {
		return nil, err
	}

	if req.ComponentID != nil {
		if _, err := s.planRepo.FindComponentByID(ctx, *req.ComponentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationFailedError(fmt.Sprintf("component %s does not exist", *req.ComponentID))
			}
			return nil, fmt.Errorf("failed to validate component: %w", err)
		}
	}

	now := time.Now()
	milestone := domain.Milestone{
		MilestoneID: uuid.NewString(),
		ProjectID:   projectID,
		ComponentID: req.ComponentID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.InitialStatus(domain.EntityMilestone),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID},
		Version:     1,
	}
	if req.EffortHours != nil {
		milestone.EffortHours = *req.EffortHours
	}
	if req.Value != nil {
		milestone.Value = *req.Value
	}

	if err := s.planRepo.SaveMilestone(ctx, milestone); err != nil {
		logger.Error("Failed to save milestone", slog.String("error", err.Error()), slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}
	return &milestone, nil
}

// UpdateMilestone edits milestone content. Allowed after baselining; the
// drift from the frozen snapshot is what variance reports.
func (s *planService) UpdateMilestone(ctx context.Context, milestoneID string, req dto.UpdateMilestoneRequest, actorID string) (*domain.Milestone, error) {
	milestone, err := s.planRepo.FindMilestoneByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("milestone %s not found", milestoneID))
		}
		return nil, fmt.Errorf("failed to load milestone: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, actorID, milestone.ProjectID, domain.RoleSupplierPM); err != nil {
		return nil, err
	}
	if milestone.SoftClosed {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("milestone %s is closed", milestoneID))
	}

	if req.Name != nil {
		milestone.Name = *req.Name
	}
	if req.Description != nil {
		milestone.Description = *req.Description
	}
	if req.StartDate != nil {
		milestone.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		milestone.EndDate = req.EndDate
	}
	if req.EffortHours != nil {
		milestone.EffortHours = *req.EffortHours
	}
	if req.Value != nil {
		milestone.Value = *req.Value
	}
	milestone.LastUpdatedAt = time.Now()
	milestone.LastUpdatedBy = actorID

	if err := s.planRepo.UpdateMilestone(ctx, *milestone, req.Version); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}
	milestone.Version = req.Version + 1
	return milestone, nil
}

// DeleteMilestone removes a milestone from an unbaselined plan. Once
// baselined, removal goes through a variation.
func (s *planService) DeleteMilestone(ctx context.Context, milestoneID, actorID string) error {
	milestone, err := s.planRepo.FindMilestoneByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("milestone %s not found", milestoneID))
		}
		return fmt.Errorf("failed to load milestone: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, actorID, milestone.ProjectID, domain.RoleSupplierPM); err != nil {
		return err
	}
	if err := s.requireNotBaselined(ctx, milestone.ProjectID); err != nil {
		return err
	}

	children, err := s.planRepo.ListDeliverablesByMilestone(ctx, milestoneID)
	if err != nil {
		return fmt.Errorf("failed to check milestone deliverables: %w", err)
	}
	if len(children) > 0 {
		return apperrors.NewValidationFailedError(fmt.Sprintf("milestone %s still has %d deliverables", milestoneID, len(children)))
	}

	if err := s.planRepo.DeleteMilestone(ctx, milestoneID); err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}
	return nil
}

// CreateDeliverable adds a deliverable under a milestone of an unbaselined plan.
func (s *planService) CreateDeliverable(ctx context.Context, projectID string, req dto.CreateDeliverableRequest, actorID string) (*domain.Deliverable, error) {
	if _, err := s.tenancy.RequireRole(ctx, actorID, projectID, domain.RoleSupplierPM); err != nil {
		return nil, err
	}
	if err := s.requireNotBaselined(ctx, projectID); err != nil {
		return nil, err
	}

	milestone, err := s.planRepo.FindMilestoneByID(ctx, req.MilestoneID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("milestone %s does not exist", req.MilestoneID))
		}
		return nil, fmt.Errorf("failed to validate milestone: %w", err)
	}
	if milestone.ProjectID != projectID {
		return nil, apperrors.NewValidationFailedError("milestone belongs to a different project")
	}

	now := time.Now()
	deliverable := domain.Deliverable{
		DeliverableID: uuid.NewString(),
		ProjectID:     projectID,
		MilestoneID:   req.MilestoneID,
		Name:          req.Name,
		Description:   req.Description,
		Status:        domain.InitialStatus(domain.EntityDeliverable),
		DueDate:       req.DueDate,
		AuditFields:   domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID},
		Version:       1,
	}
	if req.EffortHours != nil {
		deliverable.EffortHours = *req.EffortHours
	}
	if req.Value != nil {
		deliverable.Value = *req.Value
	}

	if err := s.planRepo.SaveDeliverable(ctx, deliverable); err != nil {
		return nil, fmt.Errorf("failed to create deliverable: %w", err)
	}
	return &deliverable, nil
}

// UpdateDeliverable edits deliverable content.
func (s *planService) UpdateDeliverable(ctx context.Context, deliverableID string, req dto.UpdateDeliverableRequest, actorID string) (*domain.Deliverable, error) {
	deliverable, err := s.planRepo.FindDeliverableByID(ctx, deliverableID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("deliverable %s not found", deliverableID))
		}
		return nil, fmt.Errorf("failed to load deliverable: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, actorID, deliverable.ProjectID, domain.RoleSupplierPM, domain.RoleContributor); err != nil {
		return nil, err
	}
	if deliverable.SoftClosed {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("deliverable %s is closed", deliverableID))
	}

	if req.Name != nil {
		deliverable.Name = *req.Name
	}
	if req.Description != nil {
		deliverable.Description = *req.Description
	}
	if req.DueDate != nil {
		deliverable.DueDate = req.DueDate
	}
	if req.EffortHours != nil {
		deliverable.EffortHours = *req.EffortHours
	}
	if req.Value != nil {
		deliverable.Value = *req.Value
	}
	deliverable.LastUpdatedAt = time.Now()
	deliverable.LastUpdatedBy = actorID

	if err := s.planRepo.UpdateDeliverable(ctx, *deliverable, req.Version); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update deliverable: %w", err)
	}
	deliverable.Version = req.Version + 1
	return deliverable, nil
}

// DeleteDeliverable removes a deliverable from an unbaselined plan.
func (s *planService) DeleteDeliverable(ctx context.Context, deliverableID, actorID string) error {
	deliverable, err := s.planRepo.FindDeliverableByID(ctx, deliverableID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("deliverable %s not found", deliverableID))
		}
		return fmt.Errorf("failed to load deliverable: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, actorID, deliverable.ProjectID, domain.RoleSupplierPM); err != nil {
		return err
	}
	if err := s.requireNotBaselined(ctx, deliverable.ProjectID); err != nil {
		return err
	}

	if err := s.planRepo.DeleteDeliverable(ctx, deliverableID); err != nil {
		return fmt.Errorf("failed to delete deliverable: %w", err)
	}
	return nil
}

// requireNotBaselined blocks structural plan changes once a baseline exists.
func (s *planService) requireNotBaselined(ctx context.Context, projectID string) error {
	_, err := s.baselineRepo.FindBaselineByProject(ctx, projectID)
	if err == nil {
		return fmt.Errorf("%w: project %s", apperrors.ErrBaselineLocked, projectID)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check baseline lock: %w", err)
}
