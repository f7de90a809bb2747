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
	"github.com/planlane/project_delivery_app/internal/middleware"
	"github.com/planlane/project_delivery_app/internal/utils/variance"
)

// baselineService commits project baselines and reports variance against
// them. A baseline freezes every milestone and deliverable at once; after
// that, only an implemented variation refreshes the frozen values.
type baselineService struct {
	baselineRepo portsrepo.BaselineRepositoryFacade
	planRepo     portsrepo.PlanReader
	projectRepo  portsrepo.ProjectRepositoryFacade
	tenancy      portssvc.TenancySvcFacade
	policy       portssvc.PolicySvcFacade
}

// NewBaselineService creates a new baselineService.
func NewBaselineService(
	br portsrepo.BaselineRepositoryFacade,
	plr portsrepo.PlanReader,
	pr portsrepo.ProjectRepositoryFacade,
	tenancy portssvc.TenancySvcFacade,
	policy portssvc.PolicySvcFacade,
) portssvc.BaselineSvcFacade {
	return &baselineService{
		baselineRepo: br,
		planRepo:     plr,
		projectRepo:  pr,
		tenancy:      tenancy,
		policy:       policy,
	}
}

var _ portssvc.BaselineSvcFacade = (*baselineService)(nil)

// CommitBaseline snapshots the whole plan atomically and returns the new
// baseline id.
func (s *baselineService) CommitBaseline(ctx context.Context, projectID, actorID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	access, err := s.tenancy.RequireRole(ctx, actorID, projectID, domain.RoleSupplierPM, domain.RoleCustomerPM)
	if err != nil {
		return "", err
	}

	// The baseline commit is gated like any other approval; the default
	// rule lets either PM commit.
	settings, err := s.projectRepo.FindWorkflowSettings(ctx, projectID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("failed to load workflow settings: %w", err)
		}
		settings = &domain.WorkflowSettings{ProjectID: projectID, Rules: domain.DefaultWorkflowRules()}
	}
	rule := s.policy.Requirement(domain.KeyMilestoneBaseline, *settings)
	if !s.policy.CanAct(rule, domain.EntityMilestone, access.Role, domain.ApprovalContext{}) {
		return "", apperrors.NewForbiddenError(fmt.Sprintf("role %s may not commit the baseline", access.Role))
	}

	if _, err := s.baselineRepo.FindBaselineByProject(ctx, projectID); err == nil {
		return "", fmt.Errorf("%w: project %s", apperrors.ErrAlreadyBaselined, projectID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to check existing baseline: %w", err)
	}

	milestones, err := s.planRepo.ListMilestonesByProject(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("failed to list milestones for baseline: %w", err)
	}
	deliverables, err := s.planRepo.ListDeliverablesByProject(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("failed to list deliverables for baseline: %w", err)
	}
	if len(milestones) == 0 {
		return "", apperrors.NewValidationFailedError("cannot baseline a project with no milestones")
	}

	now := time.Now()
	baselineID := uuid.NewString()

	for i := range milestones {
		snap := variance.SnapshotOfMilestone(milestones[i], baselineID, actorID, now)
		milestones[i].Baseline = &snap
	}
	for i := range deliverables {
		snap := variance.SnapshotOfDeliverable(deliverables[i], baselineID, actorID, now)
		deliverables[i].Baseline = &snap
	}

	baseline := domain.Baseline{
		BaselineID:  baselineID,
		ProjectID:   projectID,
		CommittedAt: now,
		CommittedBy: actorID,
	}

	// The repository re-checks uniqueness inside the transaction, so two
	// racing commits cannot both land.
	if err := s.baselineRepo.CommitBaseline(ctx, baseline, milestones, deliverables); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyBaselined) {
			return "", err
		}
		logger.Error("Failed to commit baseline", slog.String("error", err.Error()), slog.String("project_id", projectID))
		return "", fmt.Errorf("failed to commit baseline: %w", err)
	}

	logger.Info("Baseline committed",
		slog.String("project_id", projectID),
		slog.String("baseline_id", baselineID),
		slog.Int("milestones", len(milestones)),
		slog.Int("deliverables", len(deliverables)))

	return baselineID, nil
}

// VarianceReport computes current-vs-baseline variance for every baselined
// entity in the project. Any project member may read it.
func (s *baselineService) VarianceReport(ctx context.Context, projectID, actorID string) ([]domain.Variance, error) {
	access, err := s.tenancy.ResolveAccess(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if access.Role == domain.RoleNone {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("project %s not found", projectID))
	}

	milestones, err := s.planRepo.ListMilestonesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones for variance: %w", err)
	}
	deliverables, err := s.planRepo.ListDeliverablesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliverables for variance: %w", err)
	}

	var report []domain.Variance
	for _, m := range milestones {
		if v := variance.MilestoneVariance(m); v != nil {
			report = append(report, *v)
		}
	}
	for _, d := range deliverables {
		if v := variance.DeliverableVariance(d); v != nil {
			report = append(report, *v)
		}
	}
	return report, nil
}

// DetectBreach reports whether any child deliverable's current due date has
// slipped past the milestone's frozen baseline end date, and which component
// chain the breach rolls up to. Nil means no breach.
func (s *baselineService) DetectBreach(ctx context.Context, milestoneID string) (*domain.BreachInfo, error) {
	milestone, err := s.planRepo.FindMilestoneByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("milestone %s not found", milestoneID))
		}
		return nil, fmt.Errorf("failed to load milestone: %w", err)
	}
	if milestone.Baseline == nil || milestone.Baseline.EndDate == nil {
		return nil, nil
	}
	baselineEnd := *milestone.Baseline.EndDate

	deliverables, err := s.planRepo.ListDeliverablesByMilestone(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliverables for breach detection: %w", err)
	}

	var breached []string
	worst := baselineEnd
	for _, d := range deliverables {
		if d.SoftClosed || d.DueDate == nil {
			continue
		}
		if variance.IsBreach(baselineEnd, *d.DueDate) {
			breached = append(breached, d.DeliverableID)
			if d.DueDate.After(worst) {
				worst = *d.DueDate
			}
		}
	}
	if len(breached) == 0 {
		return nil, nil
	}

	info := &domain.BreachInfo{
		MilestoneID:      milestoneID,
		BaselineEnd:      baselineEnd,
		WorstDueDate:     worst,
		DaysOver:         variance.DaysBetween(baselineEnd, worst),
		BreachedChildren: breached,
	}

	// The breach flag cascades to the containing component and its ancestors.
	if milestone.ComponentID != nil {
		components, err := s.planRepo.ListComponentsByProject(ctx, milestone.ProjectID)
		if err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Failed to list components for breach roll-up", slog.String("error", err.Error()), slog.String("milestone_id", milestoneID))
			return info, nil
		}
		info.AtRiskComponents = componentChain(components, *milestone.ComponentID)
	}

	return info, nil
}

// componentChain walks from a component up through its parents, innermost
// first. A cycle in the data terminates the walk rather than hanging it.
func componentChain(components []domain.Component, componentID string) []string {
	byID := make(map[string]domain.Component, len(components))
	for _, c := range components {
		byID[c.ComponentID] = c
	}

	var chain []string
	seen := make(map[string]bool)
	for id := componentID; id != "" && !seen[id]; {
		seen[id] = true
		c, ok := byID[id]
		if !ok {
			break
		}
		chain = append(chain, c.ComponentID)
		if c.ParentComponentID == nil {
			break
		}
		id = *c.ParentComponentID
	}
	return chain
}
