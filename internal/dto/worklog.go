package dto

import (
	"time"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Timesheet DTOs ---

// CreateTimesheetRequest defines data for submitting a weekly timesheet.
type CreateTimesheetRequest struct {
	WeekStarting time.Time       `json:"weekStarting" binding:"required"`
	Hours        decimal.Decimal `json:"hours" binding:"required"`
	Description  string          `json:"description"`
}

// UpdateTimesheetRequest edits a draft timesheet.
type UpdateTimesheetRequest struct {
	Hours       *decimal.Decimal `json:"hours"`
	Description *string          `json:"description"`
	Version     int64            `json:"version" binding:"required"`
}

// TimesheetResponse defines data returned for a timesheet.
type TimesheetResponse struct {
	TimesheetID  string                `json:"timesheetID"`
	ProjectID    string                `json:"projectID"`
	UserID       string                `json:"userID"`
	WeekStarting time.Time             `json:"weekStarting"`
	Hours        decimal.Decimal       `json:"hours"`
	Description  string                `json:"description"`
	Status       domain.WorkflowStatus `json:"status"`
	Version      int64                 `json:"version"`
}

// ToTimesheetResponse converts domain.Timesheet to DTO.
func ToTimesheetResponse(t *domain.Timesheet) TimesheetResponse {
	return TimesheetResponse{
		TimesheetID:  t.TimesheetID,
		ProjectID:    t.ProjectID,
		UserID:       t.UserID,
		WeekStarting: t.WeekStarting,
		Hours:        t.Hours,
		Description:  t.Description,
		Status:       t.Status,
		Version:      t.Version,
	}
}

// --- Expense DTOs ---

// CreateExpenseRequest defines data for recording an expense.
type CreateExpenseRequest struct {
	IncurredOn           time.Time       `json:"incurredOn" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode         string          `json:"currencyCode" binding:"required,iso4217"`
	ChargeableToCustomer bool            `json:"chargeableToCustomer"`
	Description          string          `json:"description"`
}

// UpdateExpenseRequest edits a draft expense.
type UpdateExpenseRequest struct {
	Amount               *decimal.Decimal `json:"amount"`
	ChargeableToCustomer *bool            `json:"chargeableToCustomer"`
	Description          *string          `json:"description"`
	Version              int64            `json:"version" binding:"required"`
}

// ExpenseResponse defines data returned for an expense.
type ExpenseResponse struct {
	ExpenseID            string                `json:"expenseID"`
	ProjectID            string                `json:"projectID"`
	UserID               string                `json:"userID"`
	IncurredOn           time.Time             `json:"incurredOn"`
	Amount               decimal.Decimal       `json:"amount"`
	CurrencyCode         string                `json:"currencyCode"`
	ChargeableToCustomer bool                  `json:"chargeableToCustomer"`
	Description          string                `json:"description"`
	Status               domain.WorkflowStatus `json:"status"`
	Version              int64                 `json:"version"`
}

// ToExpenseResponse converts domain.Expense to DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:            e.ExpenseID,
		ProjectID:            e.ProjectID,
		UserID:               e.UserID,
		IncurredOn:           e.IncurredOn,
		Amount:               e.Amount,
		CurrencyCode:         e.CurrencyCode,
		ChargeableToCustomer: e.ChargeableToCustomer,
		Description:          e.Description,
		Status:               e.Status,
		Version:              e.Version,
	}
}
