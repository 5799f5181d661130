package exec

import (
	"errors"
	"fmt"
)

// ExecError represents an error detected during statement execution.
//
// Execution errors include:
//   - Closed executor: an operation was attempted after Close
//   - Store access: the statement runner or transaction failed
//   - Pending fetch: a query hit its own in-flight placeholder
//   - Result extraction: cached rows could not fill a deferred load's target
//
// Store-access errors wrap the runner's cause and surface it via Unwrap.
type ExecError struct {
	// Code identifies the error category.
	Code ExecErrorCode

	// Message is a human-readable description.
	Message string

	// StatementID identifies the affected statement, when known.
	StatementID string

	// Err is the wrapped cause (for store-access errors).
	Err error
}

// ExecErrorCode categorizes execution errors.
type ExecErrorCode string

const (
	// ErrCodeClosedExecutor indicates an operation on a closed executor.
	ErrCodeClosedExecutor ExecErrorCode = "CLOSED_EXECUTOR"

	// ErrCodeStoreAccess indicates a failure propagated from the statement
	// runner or the transaction.
	ErrCodeStoreAccess ExecErrorCode = "STORE_ACCESS"

	// ErrCodePendingFetch indicates a query observed the placeholder of an
	// in-flight fetch for its own fingerprint. Callers break circular
	// references by deferring the load instead of re-entering the fetch.
	ErrCodePendingFetch ExecErrorCode = "PENDING_FETCH"

	// ErrCodeResultExtraction indicates cached rows could not be shaped
	// into a deferred load's target type.
	ErrCodeResultExtraction ExecErrorCode = "RESULT_EXTRACTION"
)

// Error implements the error interface.
func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.StatementID != "" {
		msg = fmt.Sprintf("%s: %s (statement=%s)", e.Code, e.Message, e.StatementID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the wrapped cause.
func (e *ExecError) Unwrap() error { return e.Err }

// IsClosedError returns true if the error is a closed-executor error.
// Uses errors.As to handle wrapped errors.
func IsClosedError(err error) bool {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeClosedExecutor
	}
	return false
}

// IsStoreAccessError returns true if the error is a store-access error.
// Uses errors.As to handle wrapped errors.
func IsStoreAccessError(err error) bool {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeStoreAccess
	}
	return false
}

// IsPendingFetchError returns true if the error marks a hit on an in-flight
// placeholder. Uses errors.As to handle wrapped errors.
func IsPendingFetchError(err error) bool {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodePendingFetch
	}
	return false
}

// newClosedError creates an ExecError for an operation on a closed executor.
func newClosedError(op string) *ExecError {
	return &ExecError{
		Code:    ErrCodeClosedExecutor,
		Message: "executor was closed: cannot " + op,
	}
}

// newStoreError wraps a statement runner or transaction failure.
func newStoreError(statementID string, cause error) *ExecError {
	return &ExecError{
		Code:        ErrCodeStoreAccess,
		Message:     "store access failed",
		StatementID: statementID,
		Err:         cause,
	}
}

// newPendingError creates an ExecError for a query that hit its own
// placeholder.
func newPendingError(statementID string) *ExecError {
	return &ExecError{
		Code:        ErrCodePendingFetch,
		Message:     "fetch already in flight for this fingerprint",
		StatementID: statementID,
	}
}
