package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timesheet records hours worked by a user on a project for one week.
type Timesheet struct {
	TimesheetID  string          `json:"timesheetID"` // Primary Key (UUID)
	ProjectID    string          `json:"projectID"`   // FK -> projects.project_id
	UserID       string          `json:"userID"`      // FK -> users.user_id
	WeekStarting time.Time       `json:"weekStarting"`
	Hours        decimal.Decimal `json:"hours"`
	Description  string          `json:"description"`
	Status       WorkflowStatus  `json:"status"`
	AuditFields
	Version int64 `json:"version"`
}

// Expense records a cost incurred by a user on a project. Whether the
// customer PM participates in approval depends on ChargeableToCustomer.
type Expense struct {
	ExpenseID            string          `json:"expenseID"` // Primary Key (UUID)
	ProjectID            string          `json:"projectID"` // FK -> projects.project_id
	UserID               string          `json:"userID"`    // FK -> users.user_id
	IncurredOn           time.Time       `json:"incurredOn"`
	Amount               decimal.Decimal `json:"amount"`
	CurrencyCode         string          `json:"currencyCode"`
	ChargeableToCustomer bool            `json:"chargeableToCustomer"`
	Description          string          `json:"description"`
	Status               WorkflowStatus  `json:"status"`
	AuditFields
	Version int64 `json:"version"`
}
