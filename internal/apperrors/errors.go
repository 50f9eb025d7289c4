package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflicting state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Settlement / ledger specific errors. Callers match these with errors.Is;
// wrapping sites attach the offending line/account/prepayment identifier.
var (
	// ErrOverAllocation indicates an allocation exceeds a line's remaining balance.
	ErrOverAllocation = errors.New("allocation exceeds remaining balance")

	// ErrAllocationMismatch indicates the allocation targets do not reconcile with the settlement total.
	ErrAllocationMismatch = errors.New("allocation does not reconcile with settlement total")

	// ErrInsufficientPrepayment indicates a draw exceeds a prepayment's available balance.
	ErrInsufficientPrepayment = errors.New("draw exceeds available prepayment balance")

	// ErrUnbalancedEntry indicates a journal entry's debits and credits are not equal.
	ErrUnbalancedEntry = errors.New("journal entry debits do not equal credits")

	// ErrInvalidAccount indicates a posting line references an unknown or non-detail account.
	ErrInvalidAccount = errors.New("invalid posting account")

	// ErrInvalidHierarchy indicates a chart-of-accounts mutation would break tree invariants.
	ErrInvalidHierarchy = errors.New("invalid account hierarchy")

	// ErrVersionConflict indicates a concurrent modification was detected on an optimistic version check.
	ErrVersionConflict = errors.New("version conflict")
)

// AppError carries a status code alongside the underlying cause.
// Used by repositories for infrastructure failures.
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

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
