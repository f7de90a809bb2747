package repositories

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// WorklogReader defines read operations for timesheets and expenses.
type WorklogReader interface {
	FindTimesheetByID(ctx context.Context, timesheetID string) (*domain.Timesheet, error)
	ListTimesheetsByProject(ctx context.Context, projectID string, limit int, offset int) ([]domain.Timesheet, error)

	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)
	ListExpensesByProject(ctx context.Context, projectID string, limit int, offset int) ([]domain.Expense, error)
}

// WorklogWriter defines write operations for timesheets and expenses.
// Content edits are only legal in draft; status changes go through the
// workflow repository.
type WorklogWriter interface {
	SaveTimesheet(ctx context.Context, timesheet domain.Timesheet) error
	UpdateTimesheet(ctx context.Context, timesheet domain.Timesheet, expectedVersion int64) error

	SaveExpense(ctx context.Context, expense domain.Expense) error
	UpdateExpense(ctx context.Context, expense domain.Expense, expectedVersion int64) error
}

// WorklogRepositoryFacade combines worklog reader and writer interfaces
type WorklogRepositoryFacade interface {
	WorklogReader
	WorklogWriter
}
