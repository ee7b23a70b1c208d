// Package jsengine embeds goja and installs the testharness surface
// scenario scripts are written against: test(), async_test(),
// promise_test(), the assert_* primitives, and scheduler-backed timers.
// One engine hosts one scenario file; scripts in different engines
// cannot observe each other.
package jsengine

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/webplat-dev/harness-runner/pkg/core"
	"github.com/webplat-dev/harness-runner/pkg/harness"
	"github.com/webplat-dev/harness-runner/pkg/logger"
)

// Engine wraps a goja runtime bound to one harness suite. All engine
// state is touched only from the scenario's goroutine: registration
// during Run, callbacks during the suite's run loop.
type Engine struct {
	vm       *goja.Runtime
	suite    *harness.Suite
	scenario string

	current       *harness.T // attribution target while a body or step executes
	setupLong     bool       // setup({timeout: "long"}) applies to later declarations
	setupExplicit bool       // setup({explicit_timeout: true}) disables timeouts

	timers    map[int]func() // cancel funcs for live timeouts
	nextTimer int

	promiseQueue []promiseBody // promise test bodies waiting on the chain in flight
	promiseBusy  bool

	uncaught []string // errors escaping bare timer callbacks
}

// New creates an engine for one scenario and installs the harness
// globals. The suite should be built with harness.WithClassifier
// (Classify) so kind assertions understand script values.
func New(suite *harness.Suite, scenario string) *Engine {
	e := &Engine{
		vm:        goja.New(),
		suite:     suite,
		scenario:  scenario,
		timers:    make(map[int]func()),
		nextTimer: 1,
	}
	e.setupConsole()
	e.setupTimers()
	e.setupHarness()
	return e
}

// Run evaluates the scenario source. Test registration happens here;
// asynchronous completion is driven afterwards by the suite's run loop.
func (e *Engine) Run(src string) error {
	if _, err := e.vm.RunScript(e.scenario, src); err != nil {
		return fmt.Errorf("script error: %w", err)
	}
	return nil
}

// SetLongTimeout applies the extended timeout window to every
// subsequently declared test, equivalent to the script calling
// setup({timeout: "long"}) itself.
func (e *Engine) SetLongTimeout() { e.setupLong = true }

// Uncaught returns errors that escaped bare timer callbacks, outside
// any step guard. A non-empty slice means the scenario itself is
// broken, independent of individual test outcomes.
func (e *Engine) Uncaught() []string {
	return e.uncaught
}

// setupConsole routes console output into the run log.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]any, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			logger.Script(e.scenario, level, fmt.Sprintln(parts...))
			return goja.Undefined()
		}
	}

	console := e.vm.NewObject()
	console.Set("log", makeConsoleFunc("log"))
	console.Set("warn", makeConsoleFunc("warn"))
	console.Set("error", makeConsoleFunc("error"))
	e.vm.Set("console", console)
}

// setupTimers adds setTimeout/clearTimeout backed by the suite's
// scheduler, so timer callbacks run on the single cooperative timeline
// instead of stray goroutines.
func (e *Engine) setupTimers() {
	e.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(e.vm.NewTypeError("setTimeout: first argument must be a function"))
		}
		delay := call.Argument(1).ToInteger()

		id := e.addTimer(time.Duration(delay)*time.Millisecond, func() {
			if _, err := callback(goja.Undefined()); err != nil {
				e.reportUncaught(err)
			}
		})
		return e.vm.ToValue(id)
	})

	e.vm.Set("clearTimeout", func(call goja.FunctionCall) goja.Value {
		id := int(call.Argument(0).ToInteger())
		if cancel, ok := e.timers[id]; ok {
			cancel()
			delete(e.timers, id)
		}
		return goja.Undefined()
	})
}

// addTimer arms a scheduler-backed timer and tracks its cancel func
// under a script-visible id, shared by setTimeout and step_timeout so
// clearTimeout can cancel either kind.
func (e *Engine) addTimer(delay time.Duration, run func()) int {
	id := e.nextTimer
	e.nextTimer++
	e.timers[id] = e.suite.ScheduleAfter(delay, func() {
		delete(e.timers, id)
		run()
	})
	return id
}

func (e *Engine) reportUncaught(err error) {
	msg := jsErrorMessage(err)
	e.uncaught = append(e.uncaught, msg)
	logger.Error("%s: uncaught error in timer callback: %s", e.scenario, msg)
}

// callWithT invokes a script function with assertion attribution set to
// t for the duration of the call. A thrown script error is raised to
// the surrounding test-case boundary; a rethrown assertion failure
// keeps its structure on the way through.
func (e *Engine) callWithT(t *harness.T, fn goja.Callable, this goja.Value, args ...goja.Value) {
	prev := e.current
	e.current = t
	defer func() { e.current = prev }()
	if _, err := fn(this, args...); err != nil {
		panic(failureFromJS(err))
	}
}

func (e *Engine) mustCurrent(name string) *harness.T {
	if e.current == nil {
		panic(e.vm.NewGoError(fmt.Errorf("%s called outside a test", name)))
	}
	return e.current
}

// rethrowFailure converts a raised assertion failure into a script
// exception, so it follows the script's control flow: it rejects the
// promise chain a continuation runs in and stays catchable by scenario
// code, instead of unwinding through the scheduler. The boundary that
// ends up with the exception recovers the original failure through
// failureFromJS or rejectionReason.
func (e *Engine) rethrowFailure() {
	r := recover()
	if r == nil {
		return
	}
	if he, ok := r.(*core.HarnessError); ok {
		panic(e.vm.NewGoError(he))
	}
	panic(r)
}

func failureFromJS(err error) *core.HarnessError {
	if he, ok := harnessFailure(err); ok {
		return he
	}
	return core.NewUncaughtFailure(errors.New(jsErrorMessage(err)))
}

// harnessFailure recovers a structured failure that was rethrown as a
// script exception.
func harnessFailure(err error) (*core.HarnessError, bool) {
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		return nil, false
	}
	return failureFromValue(ex.Value())
}

// failureFromValue extracts the wrapped failure from the value property
// of a rethrown GoError, when v carries one.
func failureFromValue(v goja.Value) (*core.HarnessError, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	wrapped := obj.Get("value")
	if wrapped == nil {
		return nil, false
	}
	he, ok := wrapped.Export().(*core.HarnessError)
	return he, ok
}

func jsErrorMessage(err error) string {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return ex.Value().String()
	}
	return err.Error()
}
