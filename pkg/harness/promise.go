package harness

import "sync"

// PromiseState represents the lifecycle state of a Promise.
type PromiseState int

const (
	// PromisePending indicates the deferred computation has not settled.
	PromisePending PromiseState = iota
	// PromiseFulfilled indicates the computation completed with a value.
	PromiseFulfilled
	// PromiseRejected indicates the computation failed with a reason.
	PromiseRejected
)

// Promise is a deferred result settled at most once. Continuations
// registered with Then are delivered on the owning suite's run loop,
// never inline, so settlement from a host callback cannot interleave
// with test code mid-step.
type Promise struct {
	sched *scheduler

	mu            sync.Mutex
	state         PromiseState
	result        any
	continuations []func(PromiseState, any)
}

// NewPromise creates a pending promise bound to the suite's run loop,
// along with its resolve and reject functions. The first settlement
// wins; later calls to either function are no-ops.
func (s *Suite) NewPromise() (p *Promise, resolve func(any), reject func(any)) {
	p = &Promise{sched: s.sched}
	resolve = func(v any) { p.settle(PromiseFulfilled, v) }
	reject = func(reason any) { p.settle(PromiseRejected, reason) }
	return p, resolve, reject
}

// Resolved returns a promise already fulfilled with v.
func (s *Suite) Resolved(v any) *Promise {
	return &Promise{sched: s.sched, state: PromiseFulfilled, result: v}
}

// Rejected returns a promise already rejected with reason.
func (s *Suite) Rejected(reason any) *Promise {
	return &Promise{sched: s.sched, state: PromiseRejected, result: reason}
}

// State returns the current settlement state.
func (p *Promise) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result returns the fulfillment value or rejection reason, nil while
// pending.
func (p *Promise) Result() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Then registers continuations invoked on the run loop once the promise
// settles. Either callback may be nil. If the promise is already
// settled the continuation is still delivered asynchronously.
func (p *Promise) Then(onFulfilled, onRejected func(any)) {
	cont := func(state PromiseState, result any) {
		switch state {
		case PromiseFulfilled:
			if onFulfilled != nil {
				onFulfilled(result)
			}
		case PromiseRejected:
			if onRejected != nil {
				onRejected(result)
			}
		}
	}

	p.mu.Lock()
	if p.state == PromisePending {
		p.continuations = append(p.continuations, cont)
		p.mu.Unlock()
		return
	}
	state, result := p.state, p.result
	p.mu.Unlock()

	p.sched.post(func() { cont(state, result) })
}

func (p *Promise) settle(state PromiseState, result any) {
	p.mu.Lock()
	if p.state != PromisePending {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.result = result
	conts := p.continuations
	p.continuations = nil
	p.mu.Unlock()

	for _, cont := range conts {
		cont := cont
		p.sched.post(func() { cont(state, result) })
	}
}
