package harness

import (
	"github.com/webplat-dev/harness-runner/pkg/core"
)

// Handle controls one asynchronous test case. Step wrappers created
// through it attribute later failures to exactly this case and become
// no-ops once the case is terminal, so a late-firing callback can
// neither revive nor corrupt a finished result.
type Handle struct {
	tc    *TestCase
	suite *Suite
}

// Name returns the owning test case's name.
func (h *Handle) Name() string { return h.tc.name }

// Status returns the owning test case's current status.
func (h *Handle) Status() core.Status { return h.tc.Status() }

// Step returns a guarded wrapper around fn. Invoking the wrapper, from
// any goroutine, schedules fn onto the suite's run loop; a failure
// raised while fn executes marks this test case failed without
// propagating further. Each call advances the issuance counter.
func (h *Handle) Step(fn func(*T)) func() {
	h.issue()
	return func() {
		h.suite.sched.post(func() { h.runStep(func(t *T) { fn(t) }) })
	}
}

// StepArg is Step for callbacks that carry a payload (an event, a
// response, a result record). The payload is handed through unchanged.
func (h *Handle) StepArg(fn func(*T, any)) func(any) {
	h.issue()
	return func(arg any) {
		h.suite.sched.post(func() { h.runStep(func(t *T) { fn(t, arg) }) })
	}
}

// RunStep executes fn immediately under this case's guard. Callers must
// already be on the suite's timeline (a test body, another step, or a
// scheduled job); host callbacks arriving from other goroutines go
// through Step instead. Issuance and completion coincide here, so a
// RunStep ignored after a terminal state moves neither counter.
func (h *Handle) RunStep(fn func(*T)) {
	s := h.suite
	s.mu.Lock()
	if h.tc.status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	h.tc.issued++
	s.mu.Unlock()
	h.runStep(fn)
}

// Done marks the test case passed if it is still running. Idempotent:
// calling it again after any terminal state is a no-op.
func (h *Handle) Done() {
	h.tc.settle(core.StatusPassed, nil)
}

// Fail settles the test case as failed with the given reason, for host
// layers that detect failure outside an assertion.
func (h *Handle) Fail(failure *core.HarnessError) {
	if failure == nil {
		failure = core.NewHarnessError(core.FailureUncaught, "failed", "test failed")
	}
	h.tc.settle(core.StatusFailed, failure)
}

// Issued returns how many step wrappers have been created for this
// case. Together with Completed it lets assertion code observe both the
// issuance order and the completion order of overlapping operations.
func (h *Handle) Issued() int {
	h.suite.mu.Lock()
	defer h.suite.mu.Unlock()
	return h.tc.issued
}

// Completed returns how many guarded callbacks have begun executing.
// Inside a step callback, Completed()-1 is that callback's zero-based
// completion ordinal.
func (h *Handle) Completed() int {
	h.suite.mu.Lock()
	defer h.suite.mu.Unlock()
	return h.tc.completed
}

func (h *Handle) issue() {
	h.suite.mu.Lock()
	h.tc.issued++
	h.suite.mu.Unlock()
}

func (h *Handle) runStep(fn func(*T)) {
	s := h.suite
	s.mu.Lock()
	if h.tc.status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	h.tc.completed++
	s.mu.Unlock()

	t := &T{tc: h.tc, suite: s}
	if failure := runProtected(func() { fn(t) }); failure != nil {
		h.tc.settle(core.StatusFailed, failure)
	}
}
