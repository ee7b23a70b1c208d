package core

import "testing"

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusPassed, "passed"},
		{StatusFailed, "failed"},
		{StatusTimeout, "timeout"},
		{StatusNotRun, "notrun"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	terminalStatuses := []Status{StatusPassed, StatusFailed, StatusTimeout, StatusNotRun}
	nonTerminalStatuses := []Status{StatusPending, StatusRunning}

	for _, s := range terminalStatuses {
		if !s.IsTerminal() {
			t.Errorf("Status(%s).IsTerminal() = false, want true", s)
		}
	}

	for _, s := range nonTerminalStatuses {
		if s.IsTerminal() {
			t.Errorf("Status(%s).IsTerminal() = true, want false", s)
		}
	}
}

func TestStatus_IsSuccess(t *testing.T) {
	if !StatusPassed.IsSuccess() {
		t.Error("StatusPassed.IsSuccess() = false, want true")
	}
	for _, s := range []Status{StatusPending, StatusRunning, StatusFailed, StatusTimeout, StatusNotRun} {
		if s.IsSuccess() {
			t.Errorf("Status(%s).IsSuccess() = true, want false", s)
		}
	}
}

func TestFailureCategory_String(t *testing.T) {
	tests := []struct {
		category FailureCategory
		expected string
	}{
		{FailureNone, "none"},
		{FailureAssertion, "assertion"},
		{FailureUncaught, "uncaught"},
		{FailureTimeout, "timeout"},
		{FailureMisuse, "misuse"},
		{FailureCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("FailureCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}
