package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a missing or invalid authentication context.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the actor's effective role is not in the allowed set
// for the required authority. Recoverable by acting through the correct role;
// never retried automatically.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition indicates the requested state is not a legal successor
// of the entity's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrStaleVersion indicates an optimistic concurrency mismatch: the stored
// version changed since the caller's read. Callers must re-read before retrying.
var ErrStaleVersion = errors.New("stale version conflict")

// ErrBaselineLocked indicates a structural mutation was attempted on a
// baselined plan outside of a variation.
var ErrBaselineLocked = errors.New("plan is baselined; raise a variation instead")

// ErrAlreadyBaselined indicates a direct baseline commit was attempted on a
// project that already holds one.
var ErrAlreadyBaselined = errors.New("project already baselined")

// ErrVariationNotApproved indicates implement was attempted on a variation
// that is not in the approved state.
var ErrVariationNotApproved = errors.New("variation is not approved")

// ErrPartialApply indicates a variation implementation failed mid-transaction.
// The apply is rolled back whole and the variation stays approved for retry.
var ErrPartialApply = errors.New("variation apply failed and was rolled back")

// ErrRefreshTokenExpired indicates the presented refresh token is past its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// AppError carries an HTTP-ish status code alongside the wrapped cause so
// handlers can map failures without string matching.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a generic AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError for a missing resource.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewConflictError creates an AppError for duplicate resources.
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrDuplicate}
}

// NewValidationFailedError creates an AppError for failed input validation.
func NewValidationFailedError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewBadRequestError creates an AppError for malformed requests.
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewForbiddenError creates an AppError for an authorization denial.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message, Err: ErrForbidden}
}
