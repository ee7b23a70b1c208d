package harness

import (
	"sync"
	"time"
)

// scheduler is the suite's single-threaded cooperative run queue. Jobs
// are appended from any goroutine but only ever executed by the suite's
// run loop, one at a time, in post order. Timers fire by posting their
// job back onto the queue, so timer callbacks share the same timeline
// as everything else.
type scheduler struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	timers map[int]*time.Timer
	nextID int
}

func newScheduler() *scheduler {
	return &scheduler{
		wake:   make(chan struct{}, 1),
		timers: make(map[int]*time.Timer),
		nextID: 1,
	}
}

// post appends a job and signals the run loop.
func (s *scheduler) post(job func()) {
	s.mu.Lock()
	s.queue = append(s.queue, job)
	s.mu.Unlock()
	s.signal()
}

// pop removes and returns the next job in FIFO order.
func (s *scheduler) pop() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	job := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return job, true
}

// after schedules a job to be posted onto the queue once d has elapsed.
// Returns a timer ID usable with cancel.
func (s *scheduler) after(d time.Duration, job func()) int {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	t := time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.post(job)
	})

	s.mu.Lock()
	s.timers[id] = t
	s.mu.Unlock()
	return id
}

// cancel stops a pending timer. Canceling an already-fired or unknown
// timer is a no-op.
func (s *scheduler) cancel(id int) {
	s.mu.Lock()
	t, ok := s.timers[id]
	if ok {
		delete(s.timers, id)
	}
	s.mu.Unlock()
	if ok {
		t.Stop()
	}
}

func (s *scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
