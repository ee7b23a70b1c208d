package harness

import (
	"testing"
	"time"
)

func TestSchedule_RunsInPostOrder(t *testing.T) {
	s := NewSuite()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		s.Schedule(func() { order = append(order, i) })
	}
	drain(t, s)

	for i, got := range order {
		if got != i {
			t.Fatalf("order = %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("ran %d jobs, want 5", len(order))
	}
}

func TestScheduleAfter_Cancel(t *testing.T) {
	s := NewSuite()

	fired := false
	cancel := s.ScheduleAfter(10*time.Millisecond, func() { fired = true })
	cancel()

	// Give the timer a chance to misfire before draining.
	time.Sleep(30 * time.Millisecond)
	drain(t, s)
	if fired {
		t.Error("canceled timer fired")
	}
}

func TestScheduleAfter_PostsOntoRunLoop(t *testing.T) {
	s := NewSuite()

	fired := false
	s.ScheduleAfter(5*time.Millisecond, func() { fired = true })
	if fired {
		t.Fatal("timer callback ran off the run loop")
	}

	// The job only executes once the loop drains it.
	time.Sleep(30 * time.Millisecond)
	if fired {
		t.Fatal("timer callback ran without the run loop")
	}
	drain(t, s)
	if !fired {
		t.Error("timer job never delivered")
	}
}
