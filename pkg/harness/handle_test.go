package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webplat-dev/harness-runner/pkg/core"
	"github.com/webplat-dev/harness-runner/pkg/report"
)

func TestStep_CompletionFollowsIssuance(t *testing.T) {
	s := NewSuite()
	h := s.AsyncTest("ordered callbacks", WithTimeout(time.Second))

	// Three wrappers issued up front, delivered in the same order.
	var steps []func(any)
	for i := 0; i < 3; i++ {
		steps = append(steps, h.StepArg(func(tt *T, arg any) {
			tt.AssertEqual(arg, h.Completed()-1, "completion order follows issuance order")
			if h.Completed() == 3 {
				h.Done()
			}
		}))
	}
	if h.Issued() != 3 {
		t.Fatalf("issued = %d, want 3", h.Issued())
	}
	for i, step := range steps {
		step(i)
	}

	rep := runToCompletion(t, s)
	if rep.Entries[0].Status != report.StatusPassed {
		t.Errorf("status = %s, want passed", rep.Entries[0].Status)
	}
	if h.Completed() != 3 {
		t.Errorf("completed = %d, want 3", h.Completed())
	}
}

func TestStep_OutOfOrderDeliveryDetected(t *testing.T) {
	s := NewSuite()
	h := s.AsyncTest("reordered callbacks", WithTimeout(time.Second))

	var steps []func(any)
	for i := 0; i < 3; i++ {
		steps = append(steps, h.StepArg(func(tt *T, arg any) {
			tt.AssertEqual(arg, h.Completed()-1, "completion order follows issuance order")
			if h.Completed() == 3 {
				h.Done()
			}
		}))
	}
	// Second wrapper fires first: its argument says 1, the completion
	// ordinal says 0.
	steps[1](1)
	steps[0](0)
	steps[2](2)

	rep := runToCompletion(t, s)
	e := rep.Entries[0]
	if e.Status != report.StatusFailed {
		t.Fatalf("status = %s, want failed", e.Status)
	}
	if e.Expected != "0" || e.Actual != "1" {
		t.Errorf("expected/actual = %q/%q", e.Expected, e.Actual)
	}
	// The first mismatch latches the case; later deliveries are ignored.
	if len(e.Assertions) != 1 {
		t.Errorf("assertions = %d, want 1", len(e.Assertions))
	}
}

func TestStep_FailureStaysOnOwningCase(t *testing.T) {
	s := NewSuite()
	h := s.AsyncTest("fails in a step", WithTimeout(time.Second))
	other := s.AsyncTest("neighbour", WithTimeout(time.Second))

	step := h.Step(func(tt *T) {
		tt.AssertTrue(false, "step failure")
	})
	step()
	s.Schedule(func() { other.Done() })

	rep := runToCompletion(t, s)
	if rep.Entries[0].Status != report.StatusFailed {
		t.Errorf("owning case = %s, want failed", rep.Entries[0].Status)
	}
	if rep.Entries[1].Status != report.StatusPassed {
		t.Errorf("neighbour = %s, step failure leaked", rep.Entries[1].Status)
	}
}

func TestStep_LateCallbackAfterTimeoutIgnored(t *testing.T) {
	s := NewSuite()
	h := s.AsyncTest("times out first", WithTimeout(20*time.Millisecond))
	late := h.Step(func(tt *T) {
		tt.AssertTrue(true, "must never run")
	})

	rep := runToCompletion(t, s)
	if rep.Entries[0].Status != report.StatusTimeout {
		t.Fatalf("status = %s, want timeout", rep.Entries[0].Status)
	}

	// The callback arrives after the verdict. Draining the queue must
	// not execute it.
	late()
	s.Run(context.Background())
	if h.Completed() != 0 {
		t.Errorf("completed = %d, late step ran", h.Completed())
	}
	if h.Status() != core.StatusTimeout {
		t.Errorf("status = %s, verdict changed", h.Status())
	}
}

func TestStep_AfterDoneIgnored(t *testing.T) {
	s := NewSuite()
	h := s.AsyncTest("finished early", WithTimeout(time.Second))
	h.Done()

	h.RunStep(func(tt *T) {
		tt.AssertTrue(false, "must not run after done")
	})

	rep := runToCompletion(t, s)
	if rep.Entries[0].Status != report.StatusPassed {
		t.Errorf("status = %s, want passed", rep.Entries[0].Status)
	}
	if h.Issued() != 0 || h.Completed() != 0 {
		t.Errorf("counters moved: issued=%d completed=%d", h.Issued(), h.Completed())
	}
}

func TestHandle_Fail(t *testing.T) {
	s := NewSuite()
	h := s.AsyncTest("host-detected failure", WithTimeout(time.Second))
	h.Fail(core.NewUncaughtFailure(errors.New("socket closed")))

	rep := runToCompletion(t, s)
	e := rep.Entries[0]
	if e.Status != report.StatusFailed {
		t.Fatalf("status = %s, want failed", e.Status)
	}
	if e.Message != "uncaught error: socket closed" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestStep_CrossGoroutineDelivery(t *testing.T) {
	s := NewSuite()
	h := s.AsyncTest("callback from another goroutine", WithTimeout(time.Second))
	step := h.Step(func(tt *T) {
		tt.AssertTrue(true, "delivered")
		h.Done()
	})
	go func() {
		time.Sleep(5 * time.Millisecond)
		step()
	}()

	rep := runToCompletion(t, s)
	if rep.Entries[0].Status != report.StatusPassed {
		t.Errorf("status = %s, want passed", rep.Entries[0].Status)
	}
}
