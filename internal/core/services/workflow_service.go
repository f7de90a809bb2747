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
)

// workflowService is the single entry point for status mutations of tracked
// entities. Every transition re-resolves the actor's role, consults the
// policy table, and is applied atomically with its approval decision and
// audit entry. Denied and invalid attempts are audited too.
type workflowService struct {
	workflowRepo portsrepo.WorkflowRepositoryFacade
	auditRepo    portsrepo.AuditWriter
	projectRepo  portsrepo.ProjectRepositoryFacade
	planRepo     portsrepo.PlanReader
	tenancy      portssvc.TenancySvcFacade
	policy       portssvc.PolicySvcFacade
	notifier     portssvc.NotificationDispatcher
}

// NewWorkflowService creates a new workflowService. The notifier may be nil.
func NewWorkflowService(
	wr portsrepo.WorkflowRepositoryFacade,
	ar portsrepo.AuditWriter,
	pr portsrepo.ProjectRepositoryFacade,
	plr portsrepo.PlanReader,
	tenancy portssvc.TenancySvcFacade,
	policy portssvc.PolicySvcFacade,
	notifier portssvc.NotificationDispatcher,
) portssvc.WorkflowSvcFacade {
	return &workflowService{
		workflowRepo: wr,
		auditRepo:    ar,
		projectRepo:  pr,
		planRepo:     plr,
		tenancy:      tenancy,
		policy:       policy,
		notifier:     notifier,
	}
}

var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// Transition validates and applies one status change.
func (s *workflowService) Transition(ctx context.Context, req portssvc.TransitionRequest) (*portssvc.TransitionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	item, err := s.workflowRepo.FindWorkflowItem(ctx, req.EntityType, req.EntityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", req.EntityType, req.EntityID))
		}
		logger.Error("Failed to load workflow item", slog.String("error", err.Error()), slog.String("entity_id", req.EntityID))
		return nil, fmt.Errorf("failed to load workflow item: %w", err)
	}

	// A caller acting on an outdated read is rejected before anything else:
	// their whole view of the entity is suspect, not just this move.
	if req.Version != item.Version {
		s.auditAttempt(ctx, item, req.ToState, req.ActorID, false, fmt.Sprintf("observed version %d, stored version %d", req.Version, item.Version))
		return nil, fmt.Errorf("%w: observed version %d, stored version %d", apperrors.ErrStaleVersion, req.Version, item.Version)
	}

	graph, ok := domain.GraphFor(req.EntityType)
	if !ok {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown entity type %s", req.EntityType))
	}

	// Graph legality before any role check; the attempt still lands in the
	// audit log.
	if !graph.CanTransition(item.Status, req.ToState) {
		s.auditAttempt(ctx, item, req.ToState, req.ActorID, false, fmt.Sprintf("no edge from %s to %s", item.Status, req.ToState))
		return nil, fmt.Errorf("%w: %s cannot move from %s to %s", apperrors.ErrInvalidTransition, req.EntityType, item.Status, req.ToState)
	}

	// Effective role is re-resolved on every call; nothing is cached across
	// requests.
	access, err := s.tenancy.ResolveAccess(ctx, req.ActorID, item.ProjectID)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite() {
		s.auditAttempt(ctx, item, req.ToState, req.ActorID, false, "actor has no write access to the project")
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("user %s may not modify project %s", req.ActorID, item.ProjectID))
	}

	settings, err := s.loadSettings(ctx, item.ProjectID)
	if err != nil {
		return nil, err
	}

	var decision *domain.ApprovalDecision
	if key, gated := domain.ApprovalKeyFor(req.EntityType, req.ToState); gated {
		rule := s.policy.Requirement(key, *settings)

		// Milestone sign-off only exists as a state when the project
		// configures dual sign-off for it.
		if req.EntityType == domain.EntityMilestone && req.ToState == domain.StatusSignedOff &&
			(!rule.Required || rule.Authority != domain.AuthorityBoth) {
			s.auditAttempt(ctx, item, req.ToState, req.ActorID, false, "dual sign-off is not configured for this project")
			return nil, fmt.Errorf("%w: sign-off requires dual approval to be configured", apperrors.ErrInvalidTransition)
		}

		if rule.Required {
			if !s.policy.CanAct(rule, req.EntityType, access.Role, item.Context) {
				allowed := s.policy.AllowedRoles(rule, req.EntityType, item.Context)
				s.auditAttempt(ctx, item, req.ToState, req.ActorID, false, fmt.Sprintf("role %s is not in the allowed set %v", access.Role, allowed))
				return nil, apperrors.NewForbiddenError(fmt.Sprintf("role %s may not approve %s; allowed: %v", access.Role, key, allowed))
			}

			decision = s.newDecision(item, req, access.Role)

			// Dual sign-off is an AND-join: the first approval is recorded
			// without moving the status; the second, from the counterparty
			// role, advances it. A rejection vetoes immediately.
			if rule.Authority == domain.AuthorityBoth && decision.Decision == domain.DecisionApproved {
				already := item.ApprovedRolesFor(req.ToState)
				if already[access.Role] {
					return nil, apperrors.NewConflictError(fmt.Sprintf("an approval from role %s is already recorded for %s", access.Role, req.ToState))
				}
				withMine := map[domain.ProjectRole]bool{access.Role: true}
				for r := range already {
					withMine[r] = true
				}
				if !dualSignoffSatisfied(withMine) {
					entry := s.newAuditEntry(item, req.ToState, req.ActorID, true, "approval recorded; awaiting counterparty sign-off")
					if err := s.workflowRepo.RecordDecision(ctx, *item, *decision, entry); err != nil {
						if errors.Is(err, apperrors.ErrStaleVersion) {
							// The in-tx entry rolled back with the write;
							// record the losing attempt separately.
							s.auditAttempt(ctx, item, req.ToState, req.ActorID, false, "lost a concurrent version race")
							return nil, err
						}
						logger.Error("Failed to record approval decision", slog.String("error", err.Error()), slog.String("entity_id", item.EntityID))
						return nil, fmt.Errorf("failed to record approval decision: %w", err)
					}
					item.Approvals = append(item.Approvals, *decision)
					logger.Info("First half of dual sign-off recorded",
						slog.String("entity_id", item.EntityID),
						slog.String("role", string(access.Role)))
					return &portssvc.TransitionResult{Item: *item, Advanced: false}, nil
				}
			}
		}
	}

	entry := s.newAuditEntry(item, req.ToState, req.ActorID, true, "")
	if err := s.workflowRepo.ApplyTransition(ctx, *item, req.ToState, decision, entry); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			s.auditAttempt(ctx, item, req.ToState, req.ActorID, false, "lost a concurrent version race")
			return nil, err
		}
		logger.Error("Failed to apply transition", slog.String("error", err.Error()), slog.String("entity_id", item.EntityID))
		return nil, fmt.Errorf("failed to apply transition: %w", err)
	}

	warnings := s.collectWarnings(ctx, item, req.ToState)

	item.Status = req.ToState
	item.Version++
	if decision != nil {
		item.Approvals = append(item.Approvals, *decision)
	}

	logger.Info("Transition applied",
		slog.String("entity_type", string(req.EntityType)),
		slog.String("entity_id", req.EntityID),
		slog.String("to_state", string(req.ToState)))

	s.dispatch(ctx, item, req.ToState, req.ActorID)

	return &portssvc.TransitionResult{Item: *item, Advanced: true, Warnings: warnings}, nil
}

// ReverseApproval moves an approved timesheet or expense back to draft. This
// is an administrative action outside the transition graph: approved is
// terminal for regular actors.
func (s *workflowService) ReverseApproval(ctx context.Context, entityType domain.EntityType, entityID, actorID, reason string) (*portssvc.TransitionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if entityType != domain.EntityTimesheet && entityType != domain.EntityExpense {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("approval reversal is not supported for %s", entityType))
	}

	item, err := s.workflowRepo.FindWorkflowItem(ctx, entityType, entityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", entityType, entityID))
		}
		return nil, fmt.Errorf("failed to load workflow item: %w", err)
	}

	if item.Status != domain.StatusApproved {
		return nil, fmt.Errorf("%w: only approved items can be reversed, current status is %s", apperrors.ErrInvalidTransition, item.Status)
	}

	access, err := s.tenancy.ResolveAccess(ctx, actorID, item.ProjectID)
	if err != nil {
		return nil, err
	}
	if access.Role != domain.RoleAdmin {
		s.auditAttempt(ctx, item, domain.StatusDraft, actorID, false, "approval reversal requires administrator access")
		return nil, apperrors.NewForbiddenError("approval reversal requires administrator access")
	}

	entry := s.newAuditEntry(item, domain.StatusDraft, actorID, true, fmt.Sprintf("administrative reversal: %s", reason))
	if err := s.workflowRepo.ApplyTransition(ctx, *item, domain.StatusDraft, nil, entry); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			s.auditAttempt(ctx, item, domain.StatusDraft, actorID, false, "lost a concurrent version race")
			return nil, err
		}
		logger.Error("Failed to reverse approval", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to reverse approval: %w", err)
	}

	item.Status = domain.StatusDraft
	item.Version++

	logger.Info("Approval reversed",
		slog.String("entity_type", string(entityType)),
		slog.String("entity_id", entityID),
		slog.String("reason", reason))

	s.dispatch(ctx, item, domain.StatusDraft, actorID)

	return &portssvc.TransitionResult{Item: *item, Advanced: true}, nil
}

// dualSignoffSatisfied reports whether the recorded approvals cover both
// sides of a dual sign-off. An administrator's approval substitutes for one
// missing side, never for both.
func dualSignoffSatisfied(roles map[domain.ProjectRole]bool) bool {
	if roles[domain.RoleSupplierPM] && roles[domain.RoleCustomerPM] {
		return true
	}
	return roles[domain.RoleAdmin] && (roles[domain.RoleSupplierPM] || roles[domain.RoleCustomerPM])
}

func (s *workflowService) newDecision(item *domain.WorkflowItem, req portssvc.TransitionRequest, role domain.ProjectRole) *domain.ApprovalDecision {
	outcome := domain.DecisionApproved
	if req.ToState == domain.StatusRejected {
		outcome = domain.DecisionRejected
	}
	return &domain.ApprovalDecision{
		DecisionID: uuid.NewString(),
		EntityType: item.EntityType,
		EntityID:   item.EntityID,
		Role:       role,
		ActorID:    req.ActorID,
		Decision:   outcome,
		ToState:    req.ToState,
		DecidedAt:  time.Now(),
	}
}

func (s *workflowService) newAuditEntry(item *domain.WorkflowItem, toState domain.WorkflowStatus, actorID string, authorized bool, reason string) domain.AuditEntry {
	return domain.AuditEntry{
		AuditID:    uuid.NewString(),
		ProjectID:  item.ProjectID,
		EntityType: item.EntityType,
		EntityID:   item.EntityID,
		ActorID:    actorID,
		FromState:  item.Status,
		ToState:    toState,
		Authorized: authorized,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
}

// auditAttempt appends the audit record for a denied or invalid attempt. The
// denial itself is the caller's error; a failing audit write is only logged.
func (s *workflowService) auditAttempt(ctx context.Context, item *domain.WorkflowItem, toState domain.WorkflowStatus, actorID string, authorized bool, reason string) {
	entry := s.newAuditEntry(item, toState, actorID, authorized, reason)
	if err := s.auditRepo.SaveAuditEntry(ctx, entry); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to write audit entry for denied attempt",
			slog.String("error", err.Error()),
			slog.String("entity_id", item.EntityID))
	}
}

// loadSettings returns the project's workflow settings, falling back to the
// defaults when none were ever saved.
func (s *workflowService) loadSettings(ctx context.Context, projectID string) (*domain.WorkflowSettings, error) {
	settings, err := s.projectRepo.FindWorkflowSettings(ctx, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.WorkflowSettings{ProjectID: projectID, Rules: domain.DefaultWorkflowRules()}, nil
		}
		return nil, fmt.Errorf("failed to load workflow settings: %w", err)
	}
	return settings, nil
}

// collectWarnings gathers lenient, non-blocking observations about the
// transition. Completing a milestone over unfinished deliverables is allowed;
// it just gets called out.
func (s *workflowService) collectWarnings(ctx context.Context, item *domain.WorkflowItem, toState domain.WorkflowStatus) []string {
	if item.EntityType != domain.EntityMilestone || toState != domain.StatusComplete {
		return nil
	}

	deliverables, err := s.planRepo.ListDeliverablesByMilestone(ctx, item.EntityID)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to inspect deliverables for completion warnings", slog.String("error", err.Error()), slog.String("milestone_id", item.EntityID))
		return nil
	}

	var warnings []string
	for _, d := range deliverables {
		if d.SoftClosed || d.Status == domain.StatusAccepted {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("deliverable %s (%s) is still %s", d.Name, d.DeliverableID, d.Status))
	}
	return warnings
}

// dispatch hands the transition to the notifier without blocking the request.
func (s *workflowService) dispatch(ctx context.Context, item *domain.WorkflowItem, toState domain.WorkflowStatus, actorID string) {
	if s.notifier == nil {
		return
	}
	event := portssvc.TransitionEvent{
		ProjectID:  item.ProjectID,
		EntityType: item.EntityType,
		EntityID:   item.EntityID,
		ToState:    toState,
		ActorID:    actorID,
	}
	for _, d := range item.Approvals {
		if d.ActorID != actorID {
			event.AffectedActorIDs = append(event.AffectedActorIDs, d.ActorID)
		}
	}
	go s.notifier.NotifyTransition(context.WithoutCancel(ctx), event)
}
