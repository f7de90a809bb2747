package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	"github.com/planlane/project_delivery_app/internal/dto"
)

// WorklogReaderSvc defines read operations for timesheets and expenses.
type WorklogReaderSvc interface {
	GetTimesheetByID(ctx context.Context, timesheetID, requestingUserID string) (*domain.Timesheet, error)
	ListProjectTimesheets(ctx context.Context, projectID, requestingUserID string, limit, offset int) ([]domain.Timesheet, error)
	GetExpenseByID(ctx context.Context, expenseID, requestingUserID string) (*domain.Expense, error)
	ListProjectExpenses(ctx context.Context, projectID, requestingUserID string, limit, offset int) ([]domain.Expense, error)
}

// WorklogWriterSvc defines write operations for timesheets and expenses.
// Content edits are only legal while the entity is in draft.
type WorklogWriterSvc interface {
	CreateTimesheet(ctx context.Context, projectID string, req dto.CreateTimesheetRequest, actorID string) (*domain.Timesheet, error)
	UpdateTimesheet(ctx context.Context, timesheetID string, req dto.UpdateTimesheetRequest, actorID string) (*domain.Timesheet, error)

	CreateExpense(ctx context.Context, projectID string, req dto.CreateExpenseRequest, actorID string) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, actorID string) (*domain.Expense, error)
}

// WorklogSvcFacade combines worklog reader and writer service interfaces
type WorklogSvcFacade interface {
	WorklogReaderSvc
	WorklogWriterSvc
}
