// Package report provides JSON-based result reporting for harness runs.
//
// Layout:
//   - report.json: run index (small, rewritten after every scenario)
//   - scenarios/scenario-XXX.json: per-scenario detail files
//
// The index is the single source of truth for run status; consumers
// poll it and fetch scenario details as needed.
package report

import (
	"time"

	"github.com/webplat-dev/harness-runner/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// Status represents an execution status in serialized reports.
type Status string

// Status values.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusNotRun  Status = "notrun"
)

// FromStatus converts a core status to its serialized form.
func FromStatus(s core.Status) Status {
	return Status(s.String())
}

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusTimeout, StatusNotRun:
		return true
	default:
		return false
	}
}

// Assertion is one recorded assertion outcome inside a test entry.
type Assertion struct {
	Pass     bool   `json:"pass"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Entry is the terminal record of one test case.
type Entry struct {
	Name       string      `json:"name"`
	Ordinal    int         `json:"ordinal"`
	Status     Status      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Expected   string      `json:"expected,omitempty"`
	Actual     string      `json:"actual,omitempty"`
	DurationMs int64       `json:"durationMs"`
	Assertions []Assertion `json:"assertions,omitempty"`
}

// Report aggregates every test case's terminal state for one scenario,
// in registration order. Produced once per suite and read-only after.
type Report struct {
	Entries []Entry `json:"entries"`
	Summary Summary `json:"summary"`
}

// Summary holds per-status test counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Timeout int `json:"timeout"`
	NotRun  int `json:"notrun"`
}

// ComputeSummary recalculates the summary from the entries.
func (r *Report) ComputeSummary() {
	r.Summary = Summary{Total: len(r.Entries)}
	for _, e := range r.Entries {
		switch e.Status {
		case StatusPassed:
			r.Summary.Passed++
		case StatusFailed:
			r.Summary.Failed++
		case StatusTimeout:
			r.Summary.Timeout++
		case StatusNotRun:
			r.Summary.NotRun++
		}
	}
}

// Success returns true if no entry failed, timed out, or was skipped.
func (r *Report) Success() bool {
	return r.Summary.Failed == 0 && r.Summary.Timeout == 0 && r.Summary.NotRun == 0
}

// Index is the run-level report file binding all scenarios together.
type Index struct {
	Version     string          `json:"version"`
	RunID       string          `json:"runId"`
	Status      Status          `json:"status"`
	StartTime   time.Time       `json:"startTime"`
	EndTime     *time.Time      `json:"endTime,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Summary     RunSummary      `json:"summary"`
	Scenarios   []ScenarioEntry `json:"scenarios"`
}

// RunSummary aggregates scenario and test counts across the run.
type RunSummary struct {
	TotalScenarios  int `json:"totalScenarios"`
	PassedScenarios int `json:"passedScenarios"`
	FailedScenarios int `json:"failedScenarios"`
	TotalTests      int `json:"totalTests"`
	PassedTests     int `json:"passedTests"`
	FailedTests     int `json:"failedTests"`
	TimeoutTests    int `json:"timeoutTests"`
	NotRunTests     int `json:"notrunTests"`
}

// ScenarioEntry is the index record for one scenario file.
type ScenarioEntry struct {
	Index      int    `json:"index"`
	ID         string `json:"id"` // scenario-XXX
	Name       string `json:"name"`
	File       string `json:"file"`
	Status     Status `json:"status"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`  // scenario-level error (script failure)
	Detail     string `json:"detail,omitempty"` // relative path to the detail file
}
