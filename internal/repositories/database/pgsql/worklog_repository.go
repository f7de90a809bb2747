package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
)

type PgxWorklogRepository struct {
	db *pgxpool.Pool
}

func newPgxWorklogRepository(db *pgxpool.Pool) portsrepo.WorklogRepositoryFacade {
	return &PgxWorklogRepository{db: db}
}

var _ portsrepo.WorklogRepositoryFacade = (*PgxWorklogRepository)(nil)

const timesheetColumns = `timesheet_id, project_id, user_id, week_starting, hours, description, status, created_at, created_by, last_updated_at, last_updated_by, version`

const expenseColumns = `expense_id, project_id, user_id, incurred_on, amount, currency_code, chargeable_to_customer, description, status, created_at, created_by, last_updated_at, last_updated_by, version`

func scanTimesheet(row pgx.Row) (*domain.Timesheet, error) {
	var t domain.Timesheet
	err := row.Scan(
		&t.TimesheetID,
		&t.ProjectID,
		&t.UserID,
		&t.WeekStarting,
		&t.Hours,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(
		&e.ExpenseID,
		&e.ProjectID,
		&e.UserID,
		&e.IncurredOn,
		&e.Amount,
		&e.CurrencyCode,
		&e.ChargeableToCustomer,
		&e.Description,
		&e.Status,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
		&e.Version,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgxWorklogRepository) SaveTimesheet(ctx context.Context, timesheet domain.Timesheet) error {
	query := `
		INSERT INTO timesheets (timesheet_id, project_id, user_id, week_starting, hours, description, status, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		timesheet.TimesheetID,
		timesheet.ProjectID,
		timesheet.UserID,
		timesheet.WeekStarting,
		timesheet.Hours,
		timesheet.Description,
		timesheet.Status,
		timesheet.CreatedAt,
		timesheet.CreatedBy,
		timesheet.LastUpdatedAt,
		timesheet.LastUpdatedBy,
		timesheet.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("timesheet already exists: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save timesheet: %w", err)
	}
	return nil
}

func (r *PgxWorklogRepository) FindTimesheetByID(ctx context.Context, timesheetID string) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE timesheet_id = $1;`
	timesheet, err := scanTimesheet(r.db.QueryRow(ctx, query, timesheetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet by ID %s: %w", timesheetID, err)
	}
	return timesheet, nil
}

func (r *PgxWorklogRepository) ListTimesheetsByProject(ctx context.Context, projectID string, limit int, offset int) ([]domain.Timesheet, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE project_id = $1
		ORDER BY week_starting DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	timesheets := []domain.Timesheet{}
	for rows.Next() {
		t, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet row: %w", err)
		}
		timesheets = append(timesheets, *t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating timesheet rows: %w", rows.Err())
	}
	return timesheets, nil
}

func (r *PgxWorklogRepository) UpdateTimesheet(ctx context.Context, timesheet domain.Timesheet, expectedVersion int64) error {
	query := `
		UPDATE timesheets
		SET week_starting = $1, hours = $2, description = $3, last_updated_at = $4, last_updated_by = $5, version = version + 1
		WHERE timesheet_id = $6 AND version = $7;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		timesheet.WeekStarting,
		timesheet.Hours,
		timesheet.Description,
		timesheet.LastUpdatedAt,
		timesheet.LastUpdatedBy,
		timesheet.TimesheetID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, r.db, "timesheets", "timesheet_id", timesheet.TimesheetID)
	}
	return nil
}

func (r *PgxWorklogRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	query := `
		INSERT INTO expenses (expense_id, project_id, user_id, incurred_on, amount, currency_code, chargeable_to_customer, description, status, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.db.Exec(ctx, query,
		expense.ExpenseID,
		expense.ProjectID,
		expense.UserID,
		expense.IncurredOn,
		expense.Amount,
		expense.CurrencyCode,
		expense.ChargeableToCustomer,
		expense.Description,
		expense.Status,
		expense.CreatedAt,
		expense.CreatedBy,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
		expense.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("expense already exists: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (r *PgxWorklogRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	expense, err := scanExpense(r.db.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense by ID %s: %w", expenseID, err)
	}
	return expense, nil
}

func (r *PgxWorklogRepository) ListExpensesByProject(ctx context.Context, projectID string, limit int, offset int) ([]domain.Expense, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE project_id = $1
		ORDER BY incurred_on DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", rows.Err())
	}
	return expenses, nil
}

func (r *PgxWorklogRepository) UpdateExpense(ctx context.Context, expense domain.Expense, expectedVersion int64) error {
	query := `
		UPDATE expenses
		SET incurred_on = $1, amount = $2, currency_code = $3, chargeable_to_customer = $4, description = $5, last_updated_at = $6, last_updated_by = $7, version = version + 1
		WHERE expense_id = $8 AND version = $9;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		expense.IncurredOn,
		expense.Amount,
		expense.CurrencyCode,
		expense.ChargeableToCustomer,
		expense.Description,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
		expense.ExpenseID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, r.db, "expenses", "expense_id", expense.ExpenseID)
	}
	return nil
}
