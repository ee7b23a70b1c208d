package core

import (
	"fmt"
)

// HarnessError represents a structured failure with category and context.
// Assertion and uncaught failures are caught at the nearest test-case
// boundary and become that test's terminal failed state; misuse errors
// indicate a caller bug and are fatal to report generation.
type HarnessError struct {
	Category FailureCategory
	Code     string // Machine-readable code: assertion_mismatch, timeout, etc.
	Message  string // Human-readable message
	Expected string // Human-readable expected value (assertion failures)
	Actual   string // Human-readable actual value (assertion failures)
	Cause    error  // Underlying error
}

// Error implements the error interface
func (e *HarnessError) Error() string {
	if e.Expected != "" || e.Actual != "" {
		return fmt.Sprintf("%s: expected %s, got %s", e.Message, e.Expected, e.Actual)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of the error with the given cause
func (e *HarnessError) WithCause(cause error) *HarnessError {
	return &HarnessError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Expected: e.Expected,
		Actual:   e.Actual,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *HarnessError) WithMessage(msg string) *HarnessError {
	return &HarnessError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Expected: e.Expected,
		Actual:   e.Actual,
		Cause:    e.Cause,
	}
}

// NewAssertionFailure creates the failure raised when an assertion's
// actual value does not match its expected value.
func NewAssertionFailure(expected, actual, message string) *HarnessError {
	return &HarnessError{
		Category: FailureAssertion,
		Code:     "assertion_mismatch",
		Message:  message,
		Expected: expected,
		Actual:   actual,
	}
}

// NewUncaughtFailure wraps an exception that escaped a test body or step
// without being raised by an assertion.
func NewUncaughtFailure(cause error) *HarnessError {
	return &HarnessError{
		Category: FailureUncaught,
		Code:     "uncaught_error",
		Message:  "uncaught error",
		Cause:    cause,
	}
}

// Predefined errors
var (
	ErrTestTimeout = &HarnessError{
		Category: FailureTimeout,
		Code:     "timeout",
		Message:  "test timed out",
	}
	ErrUnreached = &HarnessError{
		Category: FailureAssertion,
		Code:     "unreached",
		Message:  "reached unreachable code",
	}

	// Misuse errors (caller bugs, not failures of the system under test)
	ErrReportNotReady = &HarnessError{
		Category: FailureMisuse,
		Code:     "report_not_ready",
		Message:  "report requested before every test case reached a terminal state",
	}
	ErrDuplicateName = &HarnessError{
		Category: FailureMisuse,
		Code:     "duplicate_name",
		Message:  "test case with this name already registered",
	}
	ErrSuiteClosed = &HarnessError{
		Category: FailureMisuse,
		Code:     "suite_closed",
		Message:  "registration after the suite was drained",
	}

	// Config/manifest errors
	ErrInvalidConfig = &HarnessError{
		Category: FailureMisuse,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrInvalidManifest = &HarnessError{
		Category: FailureMisuse,
		Code:     "invalid_manifest",
		Message:  "invalid suite manifest",
	}
)

// NewHarnessError creates a new HarnessError with the given parameters
func NewHarnessError(category FailureCategory, code, message string) *HarnessError {
	return &HarnessError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
