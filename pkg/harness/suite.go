// Package harness implements the test harness runtime shared by web
// platform conformance scenarios: synchronous, callback-based and
// promise-based test registration, assertion primitives, per-test
// failure isolation, timeouts, and structured result reporting.
//
// Execution is single-threaded and cooperative. Test bodies, step
// callbacks and promise continuations all run on one logical timeline,
// interleaved only at suspension points (timers, promise settlement,
// host callbacks routed through step guards).
package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/webplat-dev/harness-runner/pkg/core"
	"github.com/webplat-dev/harness-runner/pkg/report"
)

// Suite owns the test case registry for one scenario run. The registry
// is append-only during registration and drained exactly once by
// Report. Registration-time misuse (duplicate name, registering after
// the drain) panics with a *core.HarnessError: it is a caller bug, not
// a failure of the system under test.
type Suite struct {
	mu      sync.Mutex
	sched   *scheduler
	cfg     suiteConfig
	tests   []*TestCase
	byName  map[string]struct{}
	drained bool
}

// NewSuite creates an empty suite with the given policy options.
func NewSuite(opts ...Option) *Suite {
	cfg := suiteConfig{
		defaultTimeout: DefaultTimeout,
		longMultiplier: DefaultLongMultiplier,
		classifier:     core.ClassifyGoValue,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Suite{
		sched:  newScheduler(),
		cfg:    cfg,
		byName: make(map[string]struct{}),
	}
}

func (s *Suite) register(name string, kind testKind, timeout time.Duration) *TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drained {
		panic(core.ErrSuiteClosed)
	}
	if _, dup := s.byName[name]; dup {
		panic(core.ErrDuplicateName.WithMessage(
			fmt.Sprintf("test case %q already registered", name)))
	}
	tc := &TestCase{
		suite:   s,
		name:    name,
		ordinal: len(s.tests),
		kind:    kind,
		status:  core.StatusPending,
		timeout: timeout,
	}
	s.tests = append(s.tests, tc)
	s.byName[name] = struct{}{}
	return tc
}

func (s *Suite) resolveTimeout(opts []TestOption) time.Duration {
	cfg := testConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.noTimeout {
		return 0
	}
	if cfg.timeout > 0 {
		return cfg.timeout
	}
	if cfg.long {
		return s.cfg.defaultTimeout * time.Duration(s.cfg.longMultiplier)
	}
	return s.cfg.defaultTimeout
}

// Test registers a synchronous test case and runs its body immediately,
// in registration order. Any assertion failure or panic inside the body
// marks the case failed with the captured reason; otherwise it passes.
func (s *Suite) Test(name string, body func(*T)) {
	tc := s.register(name, kindSync, 0)

	s.mu.Lock()
	tc.status = core.StatusRunning
	tc.started = time.Now()
	s.mu.Unlock()

	t := &T{tc: tc, suite: s}
	if failure := runProtected(func() { body(t) }); failure != nil {
		tc.settle(core.StatusFailed, failure)
		return
	}
	tc.settle(core.StatusPassed, nil)
}

// AsyncTest registers a test case that completes later, through step
// callbacks and an explicit Done signal. The returned handle is the
// only way to attribute asynchronous work to this case. The timeout
// window opens at declaration; if neither Done nor a failure arrives in
// time the case settles as timed out.
func (s *Suite) AsyncTest(name string, opts ...TestOption) *Handle {
	tc := s.register(name, kindAsync, s.resolveTimeout(opts))

	s.mu.Lock()
	tc.status = core.StatusRunning
	tc.started = time.Now()
	s.mu.Unlock()

	s.armTimeout(tc)
	return &Handle{tc: tc, suite: s}
}

// PromiseTest registers a test case tied to a deferred computation. The
// factory runs immediately; the case passes when the returned promise
// fulfills and fails when it rejects, with the rejection reason as
// context. A factory that panics, or returns nil, fails the case.
func (s *Suite) PromiseTest(name string, factory func(*T) *Promise, opts ...TestOption) {
	tc := s.register(name, kindPromise, s.resolveTimeout(opts))

	s.mu.Lock()
	tc.status = core.StatusRunning
	tc.started = time.Now()
	s.mu.Unlock()

	s.armTimeout(tc)

	t := &T{tc: tc, suite: s}
	var p *Promise
	if failure := runProtected(func() { p = factory(t) }); failure != nil {
		tc.settle(core.StatusFailed, failure)
		return
	}
	if p == nil {
		tc.settle(core.StatusFailed, core.NewHarnessError(
			core.FailureUncaught, "no_promise", "promise test returned no promise"))
		return
	}
	p.Then(
		func(any) { tc.settle(core.StatusPassed, nil) },
		func(reason any) { tc.settle(core.StatusFailed, rejectionFailure(reason)) },
	)
}

func (s *Suite) armTimeout(tc *TestCase) {
	s.mu.Lock()
	d := tc.timeout
	s.mu.Unlock()
	if d <= 0 {
		// Timeout disabled; the case settles only through Done, a
		// failure, or AbandonPending.
		return
	}
	id := s.sched.after(d, func() {
		tc.settle(core.StatusTimeout, core.ErrTestTimeout)
	})
	s.mu.Lock()
	if tc.status.IsTerminal() {
		s.mu.Unlock()
		s.sched.cancel(id)
		return
	}
	tc.timerID = id
	s.mu.Unlock()
}

// Run drives the cooperative loop until every registered test case has
// reached a terminal state. Callbacks execute one at a time on the
// calling goroutine, in the order they were delivered. If ctx is
// canceled first, all still-pending cases settle as not run.
func (s *Suite) Run(ctx context.Context) error {
	for {
		if job, ok := s.sched.pop(); ok {
			job()
			continue
		}
		if s.allTerminal() {
			return nil
		}
		select {
		case <-ctx.Done():
			s.AbandonPending("run canceled: " + ctx.Err().Error())
			return ctx.Err()
		case <-s.sched.wake:
		}
	}
}

// Schedule posts fn onto the suite's run loop. Host layers use this to
// deliver completion signals on the single-threaded timeline.
func (s *Suite) Schedule(fn func()) {
	s.sched.post(fn)
}

// ScheduleAfter posts fn onto the run loop once d has elapsed. The
// returned function cancels the timer if it has not fired yet.
func (s *Suite) ScheduleAfter(d time.Duration, fn func()) (cancel func()) {
	id := s.sched.after(d, fn)
	return func() { s.sched.cancel(id) }
}

// AbandonPending settles every non-terminal test case as not run, with
// the given reason. Used when a scenario aborts before its tests can
// execute (e.g. a script-level error outside any test body).
func (s *Suite) AbandonPending(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tc := range s.tests {
		tc.settleLocked(core.StatusNotRun, core.NewHarnessError(
			core.FailureUncaught, "not_run", reason))
	}
}

func (s *Suite) allTerminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tc := range s.tests {
		if !tc.status.IsTerminal() {
			return false
		}
	}
	return true
}

// Len returns the number of registered test cases.
func (s *Suite) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tests)
}

// Report drains the registry into the final aggregate, one entry per
// test case in registration order. It may be called exactly once, and
// only after every case is terminal; anything else is harness misuse
// and returns an error naming the unmet precondition.
func (s *Suite) Report() (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drained {
		return nil, core.ErrSuiteClosed
	}
	for _, tc := range s.tests {
		if !tc.status.IsTerminal() {
			return nil, core.ErrReportNotReady.WithMessage(fmt.Sprintf(
				"report requested while test case %q is still %s", tc.name, tc.status))
		}
	}
	s.drained = true

	rep := &report.Report{
		Entries: make([]report.Entry, len(s.tests)),
	}
	for i, tc := range s.tests {
		entry := report.Entry{
			Name:       tc.name,
			Ordinal:    tc.ordinal,
			Status:     report.FromStatus(tc.status),
			DurationMs: tc.duration.Milliseconds(),
		}
		if tc.failure != nil {
			entry.Message = tc.failure.Message
			if tc.failure.Cause != nil {
				entry.Message = tc.failure.Error()
			}
			entry.Expected = tc.failure.Expected
			entry.Actual = tc.failure.Actual
		}
		entry.Assertions = make([]report.Assertion, len(tc.asserts))
		for j, a := range tc.asserts {
			entry.Assertions[j] = report.Assertion{
				Pass:     a.Pass,
				Expected: a.Expected,
				Actual:   a.Actual,
				Message:  a.Message,
			}
		}
		rep.Entries[i] = entry
	}
	rep.ComputeSummary()
	return rep, nil
}

// runProtected executes fn, converting a raised assertion failure or
// any other panic into the failure that should latch the test case.
// Returns nil when fn completes normally.
func runProtected(fn func()) (failure *core.HarnessError) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch v := r.(type) {
		case *core.HarnessError:
			failure = v
		case error:
			failure = core.NewUncaughtFailure(v)
		default:
			failure = core.NewUncaughtFailure(fmt.Errorf("%v", v))
		}
	}()
	fn()
	return nil
}

func rejectionFailure(reason any) *core.HarnessError {
	switch v := reason.(type) {
	case *core.HarnessError:
		return v
	case error:
		return &core.HarnessError{
			Category: core.FailureUncaught,
			Code:     "promise_rejected",
			Message:  "promise rejected",
			Cause:    v,
		}
	default:
		return &core.HarnessError{
			Category: core.FailureUncaught,
			Code:     "promise_rejected",
			Message:  "promise rejected",
			Cause:    fmt.Errorf("%v", v),
		}
	}
}
