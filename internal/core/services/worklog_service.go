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

// writeCapableRoles are the membership roles that may record work.
var writeCapableRoles = []domain.ProjectRole{
	domain.RoleSupplierPM, domain.RoleCustomerPM,
	domain.RoleSupplierFinance, domain.RoleCustomerFinance,
	domain.RoleContributor,
}

// worklogService manages timesheets and expenses. Content edits are only
// legal in draft; status moves go through the workflow state machine.
type worklogService struct {
	worklogRepo portsrepo.WorklogRepositoryFacade
	tenancy     portssvc.TenancySvcFacade
}

// NewWorklogService creates a new worklogService.
func NewWorklogService(wr portsrepo.WorklogRepositoryFacade, tenancy portssvc.TenancySvcFacade) portssvc.WorklogSvcFacade {
	return &worklogService{
		worklogRepo: wr,
		tenancy:     tenancy,
	}
}

var _ portssvc.WorklogSvcFacade = (*worklogService)(nil)

func (s *worklogService) GetTimesheetByID(ctx context.Context, timesheetID, requestingUserID string) (*domain.Timesheet, error) {
	timesheet, err := s.worklogRepo.FindTimesheetByID(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("timesheet %s not found", timesheetID))
		}
		return nil, fmt.Errorf("failed to load timesheet: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, timesheet.ProjectID, allProjectRoles...); err != nil {
		return nil, err
	}
	return timesheet, nil
}

func (s *worklogService) ListProjectTimesheets(ctx context.Context, projectID, requestingUserID string, limit, offset int) ([]domain.Timesheet, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, err
	}
	timesheets, err := s.worklogRepo.ListTimesheetsByProject(ctx, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	return timesheets, nil
}

func (s *worklogService) GetExpenseByID(ctx context.Context, expenseID, requestingUserID string) (*domain.Expense, error) {
	expense, err := s.worklogRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("expense %s not found", expenseID))
		}
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, expense.ProjectID, allProjectRoles...); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *worklogService) ListProjectExpenses(ctx context.Context, projectID, requestingUserID string, limit, offset int) ([]domain.Expense, error) {
	if _, err := s.tenancy.RequireRole(ctx, requestingUserID, projectID, allProjectRoles...); err != nil {
		return nil, err
	}
	expenses, err := s.worklogRepo.ListExpensesByProject(ctx, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// CreateTimesheet records a draft weekly timesheet for the acting user.
func (s *worklogService) CreateTimesheet(ctx context.Context, projectID string, req dto.CreateTimesheetRequest, actorID string) (*domain.Timesheet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.tenancy.RequireRole(ctx, actorID, projectID, writeCapableRoles...); err != nil {
		return nil, err
	}
	if req.Hours.IsNegative() {
		return nil, apperrors.NewValidationFailedError("hours must not be negative")
	}

	now := time.Now()
	timesheet := domain.Timesheet{
		TimesheetID:  uuid.NewString(),
		ProjectID:    projectID,
		UserID:       actorID,
		WeekStarting: req.WeekStarting,
		Hours:        req.Hours,
		Description:  req.Description,
		Status:       domain.InitialStatus(domain.EntityTimesheet),
		AuditFields:  domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID},
		Version:      1,
	}

	if err := s.worklogRepo.SaveTimesheet(ctx, timesheet); err != nil {
		logger.Error("Failed to save timesheet", slog.String("error", err.Error()), slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}
	return &timesheet, nil
}

// UpdateTimesheet edits a draft timesheet. Only its owner or an admin may
// edit, and only while it stays in draft.
func (s *worklogService) UpdateTimesheet(ctx context.Context, timesheetID string, req dto.UpdateTimesheetRequest, actorID string) (*domain.Timesheet, error) {
	timesheet, err := s.worklogRepo.FindTimesheetByID(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("timesheet %s not found", timesheetID))
		}
		return nil, fmt.Errorf("failed to load timesheet: %w", err)
	}

	access, err := s.tenancy.RequireRole(ctx, actorID, timesheet.ProjectID, writeCapableRoles...)
	if err != nil {
		return nil, err
	}
	if timesheet.UserID != actorID && access.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenError("only the owner may edit a timesheet")
	}
	if timesheet.Status != domain.StatusDraft {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("timesheet is %s; only drafts can be edited", timesheet.Status))
	}

	if req.Hours != nil {
		if req.Hours.IsNegative() {
			return nil, apperrors.NewValidationFailedError("hours must not be negative")
		}
		timesheet.Hours = *req.Hours
	}
	if req.Description != nil {
		timesheet.Description = *req.Description
	}
	timesheet.LastUpdatedAt = time.Now()
	timesheet.LastUpdatedBy = actorID

	if err := s.worklogRepo.UpdateTimesheet(ctx, *timesheet, req.Version); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update timesheet: %w", err)
	}
	timesheet.Version = req.Version + 1
	return timesheet, nil
}

// CreateExpense records a draft expense for the acting user. Whether the
// customer PM later joins the approval depends on ChargeableToCustomer.
func (s *worklogService) CreateExpense(ctx context.Context, projectID string, req dto.CreateExpenseRequest, actorID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.tenancy.RequireRole(ctx, actorID, projectID, writeCapableRoles...); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationFailedError("amount must be positive")
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:            uuid.NewString(),
		ProjectID:            projectID,
		UserID:               actorID,
		IncurredOn:           req.IncurredOn,
		Amount:               req.Amount,
		CurrencyCode:         req.CurrencyCode,
		ChargeableToCustomer: req.ChargeableToCustomer,
		Description:          req.Description,
		Status:               domain.InitialStatus(domain.EntityExpense),
		AuditFields:          domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID},
		Version:              1,
	}

	if err := s.worklogRepo.SaveExpense(ctx, expense); err != nil {
		logger.Error("Failed to save expense", slog.String("error", err.Error()), slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return &expense, nil
}

// UpdateExpense edits a draft expense, same ownership rules as timesheets.
func (s *worklogService) UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, actorID string) (*domain.Expense, error) {
	expense, err := s.worklogRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("expense %s not found", expenseID))
		}
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}

	access, err := s.tenancy.RequireRole(ctx, actorID, expense.ProjectID, writeCapableRoles...)
	if err != nil {
		return nil, err
	}
	if expense.UserID != actorID && access.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenError("only the owner may edit an expense")
	}
	if expense.Status != domain.StatusDraft {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("expense is %s; only drafts can be edited", expense.Status))
	}

	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, apperrors.NewValidationFailedError("amount must be positive")
		}
		expense.Amount = *req.Amount
	}
	if req.ChargeableToCustomer != nil {
		expense.ChargeableToCustomer = *req.ChargeableToCustomer
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	expense.LastUpdatedAt = time.Now()
	expense.LastUpdatedBy = actorID

	if err := s.worklogRepo.UpdateExpense(ctx, *expense, req.Version); err != nil {
		if errors.Is(err, apperrors.ErrStaleVersion) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	expense.Version = req.Version + 1
	return expense, nil
}
