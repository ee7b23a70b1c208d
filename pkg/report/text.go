package report

import (
	"fmt"
	"io"
)

// RenderText writes a console summary of the run index to w: one line
// per scenario plus aggregate counts, the same shape the HTML report
// carries.
func RenderText(w io.Writer, ix *Index) {
	for _, sc := range ix.Scenarios {
		mark := "PASS"
		switch sc.Status {
		case StatusFailed:
			mark = "FAIL"
		case StatusTimeout:
			mark = "TIMEOUT"
		case StatusNotRun, StatusPending:
			mark = "NOTRUN"
		case StatusRunning:
			mark = "RUNNING"
		}
		fmt.Fprintf(w, "  [%s] %s (%dms)\n", mark, sc.Name, sc.DurationMs)
		if sc.Error != "" {
			fmt.Fprintf(w, "         %s\n", sc.Error)
		}
	}
	s := ix.Summary
	fmt.Fprintf(w, "\n%d scenarios: %d passed, %d failed\n",
		s.TotalScenarios, s.PassedScenarios, s.FailedScenarios)
	fmt.Fprintf(w, "%d tests: %d passed, %d failed, %d timeout, %d not run\n",
		s.TotalTests, s.PassedTests, s.FailedTests, s.TimeoutTests, s.NotRunTests)
}

// RenderFailures writes expected/actual detail for every non-passing
// test in the scenario report.
func RenderFailures(w io.Writer, scenarioName string, rep *Report) {
	for _, e := range rep.Entries {
		if e.Status == StatusPassed {
			continue
		}
		fmt.Fprintf(w, "  %s :: %s [%s]\n", scenarioName, e.Name, e.Status)
		if e.Message != "" {
			fmt.Fprintf(w, "      %s\n", e.Message)
		}
		if e.Expected != "" || e.Actual != "" {
			fmt.Fprintf(w, "      expected: %s\n      actual:   %s\n", e.Expected, e.Actual)
		}
	}
}
