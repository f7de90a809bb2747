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
	"github.com/planlane/project_delivery_app/internal/utils/variance"
)

// variationService manages formal change requests against a baselined plan.
// Approval walks the shared workflow state machine; implementation resolves
// the approved diff into one atomic plan mutation.
type variationService struct {
	variationRepo portsrepo.VariationRepositoryFacade
	planRepo      portsrepo.PlanReader
	workflow      portssvc.WorkflowSvcFacade
	tenancy       portssvc.TenancySvcFacade
}

// NewVariationService creates a new variationService.
func NewVariationService(
	vr portsrepo.VariationRepositoryFacade,
	plr portsrepo.PlanReader,
	workflow portssvc.WorkflowSvcFacade,
	tenancy portssvc.TenancySvcFacade,
) portssvc.VariationSvcFacade {
	return &variationService{
		variationRepo: vr,
		planRepo:      plr,
		workflow:      workflow,
		tenancy:       tenancy,
	}
}

var _ portssvc.VariationSvcFacade = (*variationService)(nil)

// CreateVariation persists a new draft variation.
func (s *variationService) CreateVariation(ctx context.Context, projectID string, req dto.CreateVariationRequest, creatorUserID string) (*domain.Variation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.tenancy.RequireRole(ctx, creatorUserID, projectID, domain.RoleSupplierPM, domain.RoleCustomerPM); err != nil {
		return nil, err
	}

	diff := dto.ToDomainDiff(req.Diff)
	if err := validateDiff(diff); err != nil {
		return nil, err
	}

	now := time.Now()
	variation := domain.Variation{
		VariationID: uuid.NewString(),
		ProjectID:   projectID,
		Title:       req.Title,
		Rationale:   req.Rationale,
		Status:      domain.InitialStatus(domain.EntityVariation),
		Diff:        diff,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
		Version: 1,
	}

	if err := s.variationRepo.SaveVariation(ctx, variation); err != nil {
		logger.Error("Failed to save variation", slog.String("error", err.Error()), slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to create variation: %w", err)
	}

	logger.Info("Variation created", slog.String("variation_id", variation.VariationID), slog.String("project_id", projectID))
	return &variation, nil
}

// UpdateVariation replaces the content of a draft variation.
func (s *variationService) UpdateVariation(ctx context.Context, variationID string, req dto.UpdateVariationRequest, actorID string) (*domain.Variation, error) {
	variation, err := s.loadForActor(ctx, variationID, actorID, domain.RoleSupplierPM, domain.RoleCustomerPM)
	if err != nil {
		return nil, err
	}
	if variation.Status != domain.StatusDraft {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("only draft variations can be edited, status is %s", variation.Status))
	}

	if req.Title != nil {
		variation.Title = *req.Title
	}
	if req.Rationale != nil {
		variation.Rationale = *req.Rationale
	}
	if req.Diff != nil {
		diff := dto.ToDomainDiff(req.Diff)
		if err := validateDiff(diff); err != nil {
			return nil, err
		}
		variation.Diff = diff
	}
	variation.LastUpdatedAt = time.Now()
	variation.LastUpdatedBy = actorID

	if err := s.variationRepo.UpdateVariation(ctx, *variation, req.Version); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update variation: %w", err)
	}
	variation.Version = req.Version + 1
	return variation, nil
}

// GetVariationByID retrieves a variation, authorising against its project.
func (s *variationService) GetVariationByID(ctx context.Context, variationID, actorID string) (*domain.Variation, error) {
	variation, err := s.variationRepo.FindVariationByID(ctx, variationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("variation %s not found", variationID))
		}
		return nil, fmt.Errorf("failed to load variation: %w", err)
	}

	access, err := s.tenancy.ResolveAccess(ctx, actorID, variation.ProjectID)
	if err != nil {
		return nil, err
	}
	if access.Role == domain.RoleNone {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("variation %s not found", variationID))
	}
	return variation, nil
}

// ListProjectVariations lists a project's variations.
func (s *variationService) ListProjectVariations(ctx context.Context, projectID, actorID string) ([]domain.Variation, error) {
	access, err := s.tenancy.ResolveAccess(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if access.Role == domain.RoleNone {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("project %s not found", projectID))
	}
	variations, err := s.variationRepo.ListVariationsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variations: %w", err)
	}
	return variations, nil
}

// Submit moves a draft variation into review via the state machine.
func (s *variationService) Submit(ctx context.Context, variationID, actorID string) (*domain.Variation, error) {
	return s.transition(ctx, variationID, actorID, domain.StatusSubmitted)
}

// Approve records an approval. Under dual sign-off the first approval leaves
// the variation submitted; the counterparty's approval moves it to approved.
func (s *variationService) Approve(ctx context.Context, variationID, actorID string) (*domain.Variation, error) {
	return s.transition(ctx, variationID, actorID, domain.StatusApproved)
}

// Reject vetoes a submitted variation.
func (s *variationService) Reject(ctx context.Context, variationID, actorID string) (*domain.Variation, error) {
	return s.transition(ctx, variationID, actorID, domain.StatusRejected)
}

func (s *variationService) transition(ctx context.Context, variationID, actorID string, toState domain.WorkflowStatus) (*domain.Variation, error) {
	// Lifecycle calls carry no client version, so assert the freshest read;
	// the write itself is still version-guarded inside the repository.
	variation, err := s.variationRepo.FindVariationByID(ctx, variationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("variation %s not found", variationID))
		}
		return nil, fmt.Errorf("failed to load variation: %w", err)
	}
	if _, err := s.workflow.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityVariation,
		EntityID:   variationID,
		ToState:    toState,
		ActorID:    actorID,
		Version:    variation.Version,
	}); err != nil {
		return nil, err
	}
	reloaded, err := s.variationRepo.FindVariationByID(ctx, variationID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload variation after transition: %w", err)
	}
	return reloaded, nil
}

// Implement validates the approved diff against current entity state and
// applies it in one transaction. Affected entities get refreshed baseline
// snapshots; on any failure the whole apply rolls back and the variation
// stays approved.
func (s *variationService) Implement(ctx context.Context, variationID, actorID string) (*domain.Variation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	variation, err := s.loadForActor(ctx, variationID, actorID, domain.RoleSupplierPM)
	if err != nil {
		return nil, err
	}
	if variation.Status != domain.StatusApproved {
		return nil, fmt.Errorf("%w: status is %s", apperrors.ErrVariationNotApproved, variation.Status)
	}

	mutation, err := s.resolveDiff(ctx, variation, actorID)
	if err != nil {
		return nil, err
	}
	if mutation.Empty() {
		return nil, apperrors.NewValidationFailedError("variation diff resolves to no changes")
	}

	entry := domain.AuditEntry{
		AuditID:    uuid.NewString(),
		ProjectID:  variation.ProjectID,
		EntityType: domain.EntityVariation,
		EntityID:   variation.VariationID,
		ActorID:    actorID,
		FromState:  domain.StatusApproved,
		ToState:    domain.StatusImplemented,
		Authorized: true,
		OccurredAt: time.Now(),
	}

	if err := s.variationRepo.ImplementVariation(ctx, *variation, *mutation, entry); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			return nil, err
		}
		logger.Error("Variation apply failed and was rolled back",
			slog.String("error", err.Error()),
			slog.String("variation_id", variationID))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPartialApply, err)
	}

	logger.Info("Variation implemented",
		slog.String("variation_id", variationID),
		slog.String("project_id", variation.ProjectID))

	implemented, err := s.variationRepo.FindVariationByID(ctx, variationID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload variation after implement: %w", err)
	}
	return implemented, nil
}

func (s *variationService) loadForActor(ctx context.Context, variationID, actorID string, allowed ...domain.ProjectRole) (*domain.Variation, error) {
	variation, err := s.variationRepo.FindVariationByID(ctx, variationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("variation %s not found", variationID))
		}
		return nil, fmt.Errorf("failed to load variation: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, actorID, variation.ProjectID, allowed...); err != nil {
		return nil, err
	}
	return variation, nil
}

// validateDiff checks the structural shape of a proposed diff.
func validateDiff(diff []domain.DiffOp) error {
	if len(diff) == 0 {
		return apperrors.NewValidationFailedError("variation diff must contain at least one operation")
	}
	for i, op := range diff {
		if op.EntityType != domain.EntityMilestone && op.EntityType != domain.EntityDeliverable {
			return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: entity type %s cannot be varied", i, op.EntityType))
		}
		switch op.Op {
		case domain.DiffAdd:
			if op.Values == nil || op.Values.Name == nil {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: add requires values with a name", i))
			}
			if op.EntityType == domain.EntityDeliverable && op.Values.MilestoneID == nil {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: adding a deliverable requires a milestone id", i))
			}
		case domain.DiffModify:
			if op.EntityID == "" || op.Values == nil {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: modify requires an entity id and values", i))
			}
		case domain.DiffRemove:
			if op.EntityID == "" {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: remove requires an entity id", i))
			}
		default:
			return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: unknown op %s", i, op.Op))
		}
	}
	return nil
}

// resolveDiff turns the approved diff into concrete rows against the current
// plan state. Every added or modified entity gets a fresh baseline snapshot
// carrying this implement run's id; removals of baselined entities become
// soft-closes.
func (s *variationService) resolveDiff(ctx context.Context, variation *domain.Variation, actorID string) (*domain.PlanMutation, error) {
	now := time.Now()
	refreshID := uuid.NewString()
	mutation := &domain.PlanMutation{}

	for i, op := range variation.Diff {
		switch op.EntityType {
		case domain.EntityMilestone:
			if err := s.resolveMilestoneOp(ctx, variation.ProjectID, i, op, mutation, refreshID, actorID, now); err != nil {
				return nil, err
			}
		case domain.EntityDeliverable:
			if err := s.resolveDeliverableOp(ctx, variation.ProjectID, i, op, mutation, refreshID, actorID, now); err != nil {
				return nil, err
			}
		}
	}
	return mutation, nil
}

func (s *variationService) resolveMilestoneOp(ctx context.Context, projectID string, idx int, op domain.DiffOp, mutation *domain.PlanMutation, refreshID, actorID string, now time.Time) error {
	switch op.Op {
	case domain.DiffAdd:
		entityID := op.EntityID
		if entityID == "" {
			entityID = uuid.NewString()
		}
		if _, err := s.planRepo.FindMilestoneByID(ctx, entityID); err == nil {
			return apperrors.NewConflictError(fmt.Sprintf("diff op %d: milestone %s already exists", idx, entityID))
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to resolve diff op %d: %w", idx, err)
		}
		m := domain.Milestone{
			MilestoneID: entityID,
			ProjectID:   projectID,
			ComponentID: op.Values.ComponentID,
			Name:        *op.Values.Name,
			Status:      domain.InitialStatus(domain.EntityMilestone),
			StartDate:   op.Values.StartDate,
			EndDate:     op.Values.EndDate,
			AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID},
			Version:     1,
		}
		if op.Values.Description != nil {
			m.Description = *op.Values.Description
		}
		if op.Values.EffortHours != nil {
			m.EffortHours = *op.Values.EffortHours
		}
		if op.Values.Value != nil {
			m.Value = *op.Values.Value
		}
		snap := variance.SnapshotOfMilestone(m, refreshID, actorID, now)
		m.Baseline = &snap
		mutation.AddMilestones = append(mutation.AddMilestones, m)

	case domain.DiffModify:
		current, err := s.planRepo.FindMilestoneByID(ctx, op.EntityID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: milestone %s does not exist", idx, op.EntityID))
			}
			return fmt.Errorf("failed to resolve diff op %d: %w", idx, err)
		}
		if current.SoftClosed {
			return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: milestone %s is closed", idx, op.EntityID))
		}
		applyMilestoneValues(current, op.Values)
		current.LastUpdatedAt = now
		current.LastUpdatedBy = actorID
		snap := variance.SnapshotOfMilestone(*current, refreshID, actorID, now)
		current.Baseline = &snap
		mutation.UpdateMilestones = append(mutation.UpdateMilestones, *current)

	case domain.DiffRemove:
		current, err := s.planRepo.FindMilestoneByID(ctx, op.EntityID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: milestone %s does not exist", idx, op.EntityID))
			}
			return fmt.Errorf("failed to resolve diff op %d: %w", idx, err)
		}
		if current.Baseline != nil {
			// Baselined history is never deleted.
			current.SoftClosed = true
			current.LastUpdatedAt = now
			current.LastUpdatedBy = actorID
			mutation.UpdateMilestones = append(mutation.UpdateMilestones, *current)
		} else {
			mutation.RemoveMilestoneIDs = append(mutation.RemoveMilestoneIDs, current.MilestoneID)
		}
	}
	return nil
}

func (s *variationService) resolveDeliverableOp(ctx context.Context, projectID string, idx int, op domain.DiffOp, mutation *domain.PlanMutation, refreshID, actorID string, now time.Time) error {
	switch op.Op {
	case domain.DiffAdd:
		entityID := op.EntityID
		if entityID == "" {
			entityID = uuid.NewString()
		}
		if _, err := s.planRepo.FindDeliverableByID(ctx, entityID); err == nil {
			return apperrors.NewConflictError(fmt.Sprintf("diff op %d: deliverable %s already exists", idx, entityID))
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to resolve diff op %d: %w", idx, err)
		}
		if _, err := s.planRepo.FindMilestoneByID(ctx, *op.Values.MilestoneID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: parent milestone %s does not exist", idx, *op.Values.MilestoneID))
			}
			return fmt.Errorf("failed to resolve diff op %d: %w", idx, err)
		}
		d := domain.Deliverable{
			DeliverableID: entityID,
			ProjectID:     projectID,
			MilestoneID:   *op.Values.MilestoneID,
			Name:          *op.Values.Name,
			Status:        domain.InitialStatus(domain.EntityDeliverable),
			DueDate:       op.Values.DueDate,
			AuditFields:   domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID},
			Version:       1,
		}
		if op.Values.Description != nil {
			d.Description = *op.Values.Description
		}
		if op.Values.EffortHours != nil {
			d.EffortHours = *op.Values.EffortHours
		}
		if op.Values.Value != nil {
			d.Value = *op.Values.Value
		}
		snap := variance.SnapshotOfDeliverable(d, refreshID, actorID, now)
		d.Baseline = &snap
		mutation.AddDeliverables = append(mutation.AddDeliverables, d)

	case domain.DiffModify:
		current, err := s.planRepo.FindDeliverableByID(ctx, op.EntityID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: deliverable %s does not exist", idx, op.EntityID))
			}
			return fmt.Errorf("failed to resolve diff op %d: %w", idx, err)
		}
		if current.SoftClosed {
			return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: deliverable %s is closed", idx, op.EntityID))
		}
		applyDeliverableValues(current, op.Values)
		current.LastUpdatedAt = now
		current.LastUpdatedBy = actorID
		snap := variance.SnapshotOfDeliverable(*current, refreshID, actorID, now)
		current.Baseline = &snap
		mutation.UpdateDeliverables = append(mutation.UpdateDeliverables, *current)

	case domain.DiffRemove:
		current, err := s.planRepo.FindDeliverableByID(ctx, op.EntityID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationFailedError(fmt.Sprintf("diff op %d: deliverable %s does not exist", idx, op.EntityID))
			}
			return fmt.Errorf("failed to resolve diff op %d: %w", idx, err)
		}
		if current.Baseline != nil {
			current.SoftClosed = true
			current.LastUpdatedAt = now
			current.LastUpdatedBy = actorID
			mutation.UpdateDeliverables = append(mutation.UpdateDeliverables, *current)
		} else {
			mutation.RemoveDeliverableIDs = append(mutation.RemoveDeliverableIDs, current.DeliverableID)
		}
	}
	return nil
}

func applyMilestoneValues(m *domain.Milestone, values *domain.EntityValues) {
	if values == nil {
		return
	}
	if values.Name != nil {
		m.Name = *values.Name
	}
	if values.Description != nil {
		m.Description = *values.Description
	}
	if values.ComponentID != nil {
		m.ComponentID = values.ComponentID
	}
	if values.StartDate != nil {
		m.StartDate = values.StartDate
	}
	if values.EndDate != nil {
		m.EndDate = values.EndDate
	}
	if values.EffortHours != nil {
		m.EffortHours = *values.EffortHours
	}
	if values.Value != nil {
		m.Value = *values.Value
	}
}

func applyDeliverableValues(d *domain.Deliverable, values *domain.EntityValues) {
	if values == nil {
		return
	}
	if values.Name != nil {
		d.Name = *values.Name
	}
	if values.Description != nil {
		d.Description = *values.Description
	}
	if values.MilestoneID != nil {
		d.MilestoneID = *values.MilestoneID
	}
	if values.DueDate != nil {
		d.DueDate = values.DueDate
	}
	if values.EffortHours != nil {
		d.EffortHours = *values.EffortHours
	}
	if values.Value != nil {
		d.Value = *values.Value
	}
}
