package harness

import (
	"time"

	"github.com/webplat-dev/harness-runner/pkg/core"
)

type testKind int

const (
	kindSync testKind = iota
	kindAsync
	kindPromise
)

// TestCase is one registered test scenario. It is owned by the suite's
// registry; its status moves to a terminal state at most once and the
// assertion list is append-only until that point.
type TestCase struct {
	suite   *Suite
	name    string
	ordinal int
	kind    testKind

	status  core.Status
	asserts []core.AssertionResult
	failure *core.HarnessError

	timeout time.Duration
	timerID int

	issued    int // step wrappers created
	completed int // guarded callbacks that began execution

	started  time.Time
	duration time.Duration
}

// Name returns the test case name.
func (tc *TestCase) Name() string { return tc.name }

// Ordinal returns the zero-based registration position.
func (tc *TestCase) Ordinal() int { return tc.ordinal }

// Status returns the current status.
func (tc *TestCase) Status() core.Status {
	tc.suite.mu.Lock()
	defer tc.suite.mu.Unlock()
	return tc.status
}

// Failure returns the failure reason for a failed or timed-out test,
// nil otherwise.
func (tc *TestCase) Failure() *core.HarnessError {
	tc.suite.mu.Lock()
	defer tc.suite.mu.Unlock()
	return tc.failure
}

// Assertions returns a copy of the recorded assertion results.
func (tc *TestCase) Assertions() []core.AssertionResult {
	tc.suite.mu.Lock()
	defer tc.suite.mu.Unlock()
	out := make([]core.AssertionResult, len(tc.asserts))
	copy(out, tc.asserts)
	return out
}

// settle latches a terminal status. Returns false if the test case was
// already terminal, in which case nothing changes.
func (tc *TestCase) settle(status core.Status, failure *core.HarnessError) bool {
	tc.suite.mu.Lock()
	defer tc.suite.mu.Unlock()
	return tc.settleLocked(status, failure)
}

func (tc *TestCase) settleLocked(status core.Status, failure *core.HarnessError) bool {
	if tc.status.IsTerminal() {
		return false
	}
	tc.status = status
	tc.failure = failure
	if !tc.started.IsZero() {
		tc.duration = time.Since(tc.started)
	}
	if tc.timerID != 0 {
		tc.suite.sched.cancel(tc.timerID)
		tc.timerID = 0
	}
	return true
}

// record appends an assertion result. No-op once the test is terminal,
// so a late-firing callback cannot grow a finished test's record.
func (tc *TestCase) record(res core.AssertionResult) {
	tc.suite.mu.Lock()
	defer tc.suite.mu.Unlock()
	if tc.status.IsTerminal() {
		return
	}
	tc.asserts = append(tc.asserts, res)
}

func (tc *TestCase) terminal() bool {
	tc.suite.mu.Lock()
	defer tc.suite.mu.Unlock()
	return tc.status.IsTerminal()
}
