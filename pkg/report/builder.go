package report

import (
	"fmt"
	"time"
)

// ScenarioRef identifies a scenario file going into a run.
type ScenarioRef struct {
	Name string
	File string
}

// BuildIndex creates the initial run index with every scenario pending.
// Called after manifest validation, before execution starts, so that
// consumers polling report.json see the full plan immediately.
func BuildIndex(runID string, scenarios []ScenarioRef) *Index {
	now := time.Now().UTC()
	index := &Index{
		Version:     Version,
		RunID:       runID,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Summary: RunSummary{
			TotalScenarios: len(scenarios),
		},
		Scenarios: make([]ScenarioEntry, len(scenarios)),
	}
	for i, ref := range scenarios {
		id := fmt.Sprintf("scenario-%03d", i)
		index.Scenarios[i] = ScenarioEntry{
			Index:  i,
			ID:     id,
			Name:   ref.Name,
			File:   ref.File,
			Status: StatusPending,
			Detail: fmt.Sprintf("scenarios/%s.json", id),
		}
	}
	return index
}

// MarkRunning flags scenario i as in progress.
func (ix *Index) MarkRunning(i int) {
	ix.Scenarios[i].Status = StatusRunning
	ix.Status = StatusRunning
	ix.LastUpdated = time.Now().UTC()
}

// MarkScenario records scenario i's terminal outcome and folds its test
// counts into the run summary.
func (ix *Index) MarkScenario(i int, rep *Report, durationMs int64, scenarioErr string) {
	entry := &ix.Scenarios[i]
	entry.DurationMs = durationMs
	entry.Error = scenarioErr

	switch {
	case scenarioErr != "" || !rep.Success():
		entry.Status = StatusFailed
		ix.Summary.FailedScenarios++
	default:
		entry.Status = StatusPassed
		ix.Summary.PassedScenarios++
	}

	ix.Summary.TotalTests += rep.Summary.Total
	ix.Summary.PassedTests += rep.Summary.Passed
	ix.Summary.FailedTests += rep.Summary.Failed
	ix.Summary.TimeoutTests += rep.Summary.Timeout
	ix.Summary.NotRunTests += rep.Summary.NotRun
	ix.LastUpdated = time.Now().UTC()
}

// Finalize latches the run-level status and end time.
func (ix *Index) Finalize() {
	now := time.Now().UTC()
	ix.EndTime = &now
	ix.LastUpdated = now
	if ix.Summary.FailedScenarios > 0 {
		ix.Status = StatusFailed
		return
	}
	ix.Status = StatusPassed
}

// Success returns true if every scenario passed.
func (ix *Index) Success() bool {
	return ix.Summary.TotalScenarios > 0 && ix.Summary.FailedScenarios == 0
}
