package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestHarnessError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *HarnessError
		expected string
	}{
		{
			name:     "message only",
			err:      &HarnessError{Message: "test timed out"},
			expected: "test timed out",
		},
		{
			name: "with expected and actual",
			err: &HarnessError{
				Message:  "wrong count",
				Expected: "3",
				Actual:   "2",
			},
			expected: "wrong count: expected 3, got 2",
		},
		{
			name: "with cause",
			err: &HarnessError{
				Message: "uncaught error",
				Cause:   errors.New("boom"),
			},
			expected: "uncaught error: boom",
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.expected {
			t.Errorf("%s: Error() = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestHarnessError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := ErrTestTimeout.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Category != FailureTimeout {
		t.Errorf("WithCause changed category to %s", err.Category)
	}
	// The predefined value must stay untouched.
	if ErrTestTimeout.Cause != nil {
		t.Error("WithCause mutated the predefined error")
	}
}

func TestHarnessError_WithMessage(t *testing.T) {
	err := ErrReportNotReady.WithMessage("still running: t1")
	if err.Message != "still running: t1" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != ErrReportNotReady.Code {
		t.Errorf("Code changed to %q", err.Code)
	}
	if ErrReportNotReady.Message == err.Message {
		t.Error("WithMessage mutated the predefined error")
	}
}

func TestNewAssertionFailure(t *testing.T) {
	err := NewAssertionFailure("1", "2", "index matches")
	if err.Category != FailureAssertion {
		t.Errorf("Category = %s, want assertion", err.Category)
	}
	if err.Expected != "1" || err.Actual != "2" {
		t.Errorf("Expected/Actual = %q/%q", err.Expected, err.Actual)
	}
}

func TestNewUncaughtFailure(t *testing.T) {
	cause := fmt.Errorf("nil pointer")
	err := NewUncaughtFailure(cause)
	if err.Category != FailureUncaught {
		t.Errorf("Category = %s, want uncaught", err.Category)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not wrapped")
	}
}
