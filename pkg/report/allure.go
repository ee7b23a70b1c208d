package report

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
}

// AllureStep represents a step within a test result.
type AllureStep struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Stage  string `json:"stage"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// AllureCategory defines a failure category with regex matching.
type AllureCategory struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex"`
}

// AllureExecutor holds executor branding info.
type AllureExecutor struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	ReportName string `json:"reportName"`
}

// GenerateAllure generates Allure-compatible result files in
// <reportDir>/allure-results/, one per test case across all scenarios.
func GenerateAllure(reportDir, runnerVersion string) error {
	index, err := ReadIndex(reportDir)
	if err != nil {
		return err
	}

	allureDir := filepath.Join(reportDir, "allure-results")
	if err := os.MkdirAll(allureDir, 0o755); err != nil {
		return fmt.Errorf("create allure-results dir: %w", err)
	}

	for _, sc := range index.Scenarios {
		detail, err := ReadScenario(reportDir, sc.ID)
		if err != nil {
			// A scenario stopped before execution has no detail file.
			continue
		}
		for _, entry := range detail.Entries {
			result := buildAllureResult(index, sc, entry)
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal allure result for %s: %w", result.FullName, err)
			}
			path := filepath.Join(allureDir, result.UUID+"-result.json")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write allure result %s: %w", result.UUID, err)
			}
		}
	}

	if err := writeAllureCategories(allureDir); err != nil {
		return err
	}
	if err := writeAllureEnvironment(allureDir, index, runnerVersion); err != nil {
		return err
	}
	return writeAllureExecutor(allureDir)
}

// buildAllureResult maps one test entry onto an Allure result. Assertion
// records become flat steps; the run has no per-test wall-clock
// timestamps, so start/stop derive from the run start and the entry
// duration.
func buildAllureResult(index *Index, sc ScenarioEntry, entry Entry) AllureResult {
	fullName := sc.Name + "::" + entry.Name
	startMs := index.StartTime.UnixMilli()
	stopMs := startMs + entry.DurationMs

	labels := []AllureLabel{
		{Name: "suite", Value: sc.Name},
		{Name: "parentSuite", Value: filepath.Base(sc.File)},
		{Name: "framework", Value: "harness-runner"},
		{Name: "severity", Value: "normal"},
	}

	var statusDetails AllureStatusDetails
	if entry.Message != "" {
		statusDetails.Message = entry.Message
		if entry.Expected != "" || entry.Actual != "" {
			statusDetails.Trace = fmt.Sprintf("expected: %s\nactual: %s", entry.Expected, entry.Actual)
		}
	}

	steps := make([]AllureStep, 0, len(entry.Assertions))
	for _, a := range entry.Assertions {
		status := "passed"
		if !a.Pass {
			status = "failed"
		}
		steps = append(steps, AllureStep{
			Name:   a.Message,
			Status: status,
			Stage:  "finished",
		})
	}

	return AllureResult{
		UUID:          fmt.Sprintf("%s-%03d", sc.ID, entry.Ordinal),
		HistoryID:     fnv32aHash(fullName),
		FullName:      fullName,
		Name:          entry.Name,
		Status:        mapAllureStatus(entry.Status),
		Stage:         "finished",
		Start:         startMs,
		Stop:          stopMs,
		Labels:        labels,
		StatusDetails: statusDetails,
		Steps:         steps,
	}
}

// mapAllureStatus maps report Status to Allure status string. Allure has
// no timeout state; timed out and abandoned tests surface as broken.
func mapAllureStatus(s Status) string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusTimeout, StatusNotRun:
		return "broken"
	default:
		return "unknown"
	}
}

// fnv32aHash returns a hex-encoded FNV-32a hash of the input string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

// writeAllureCategories writes categories.json for failure categorization.
func writeAllureCategories(allureDir string) error {
	categories := []AllureCategory{
		{Name: "Assertion Failed", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*expected.*|.*assert.*"},
		{Name: "Timeout", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*timeout.*|.*timed out.*"},
		{Name: "Uncaught Error", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*uncaught.*"},
		{Name: "Promise Rejection", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*promise rejected.*"},
		{Name: "Script Error", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*script.*error.*"},
	}

	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	path := filepath.Join(allureDir, "categories.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write categories.json: %w", err)
	}
	return nil
}

// writeAllureEnvironment writes environment.properties with run metadata.
func writeAllureEnvironment(allureDir string, index *Index, runnerVersion string) error {
	var b strings.Builder
	b.WriteString("framework=harness-runner\n")
	if runnerVersion != "" {
		b.WriteString(fmt.Sprintf("runner.version=%s\n", runnerVersion))
	}
	b.WriteString(fmt.Sprintf("run.id=%s\n", index.RunID))
	b.WriteString(fmt.Sprintf("report.version=%s\n", index.Version))

	path := filepath.Join(allureDir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}

// writeAllureExecutor writes executor.json identifying the runner.
func writeAllureExecutor(allureDir string) error {
	executor := AllureExecutor{
		Name:       "harness-runner",
		Type:       "cli",
		ReportName: "Conformance Report",
	}

	data, err := json.MarshalIndent(executor, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal executor: %w", err)
	}
	path := filepath.Join(allureDir, "executor.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write executor.json: %w", err)
	}
	return nil
}
