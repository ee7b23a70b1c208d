package jsengine

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/webplat-dev/harness-runner/pkg/core"
	"github.com/webplat-dev/harness-runner/pkg/harness"
)

// setupHarness installs the test declaration and assertion globals.
func (e *Engine) setupHarness() {
	vm := e.vm

	vm.Set("setup", func(call goja.FunctionCall) goja.Value {
		props := call.Argument(0)
		if obj, ok := props.(*goja.Object); ok {
			if tv := obj.Get("timeout"); tv != nil && tv.String() == "long" {
				e.setupLong = true
			}
			if ev := obj.Get("explicit_timeout"); ev != nil && ev.ToBoolean() {
				e.setupExplicit = true
			}
		}
		return goja.Undefined()
	})

	vm.Set("test", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("test: first argument must be a function"))
		}
		name := argString(call, 1)
		e.suite.Test(name, func(t *harness.T) {
			e.callWithT(t, fn, goja.Undefined())
		})
		return goja.Undefined()
	})

	vm.Set("async_test", func(call goja.FunctionCall) goja.Value {
		name := argString(call, 0)
		h := e.suite.AsyncTest(name, e.testOptions()...)
		return e.makeTestObject(h)
	})

	vm.Set("promise_test", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("promise_test: first argument must be a function"))
		}
		name := argString(call, 1)
		e.suite.PromiseTest(name, func(t *harness.T) *harness.Promise {
			p, resolve, reject := e.suite.NewPromise()
			e.enqueuePromiseBody(promiseBody{t: t, fn: fn, resolve: resolve, reject: reject})
			return p
		}, e.testOptions()...)
		return goja.Undefined()
	})

	e.setupAsserts()
}

func (e *Engine) testOptions() []harness.TestOption {
	if e.setupExplicit {
		return []harness.TestOption{harness.WithNoTimeout()}
	}
	if e.setupLong {
		return []harness.TestOption{harness.WithLongTimeout()}
	}
	return nil
}

// makeTestObject builds the script-side view of an async test handle:
// step/step_func/step_timeout/done/unreached_func, mirroring the
// surface conformance scenarios expect.
func (e *Engine) makeTestObject(h *harness.Handle) *goja.Object {
	vm := e.vm
	obj := vm.NewObject()
	obj.Set("name", h.Name())

	runGuarded := func(fn goja.Callable, this goja.Value, args ...goja.Value) {
		h.RunStep(func(t *harness.T) {
			e.callWithT(t, fn, this, args...)
		})
	}

	obj.Set("step", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("step: first argument must be a function"))
		}
		runGuarded(fn, goja.Undefined(), call.Arguments[1:]...)
		return goja.Undefined()
	})

	obj.Set("step_func", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("step_func: first argument must be a function"))
		}
		return vm.ToValue(func(inner goja.FunctionCall) goja.Value {
			runGuarded(fn, inner.This, inner.Arguments...)
			return goja.Undefined()
		})
	})

	obj.Set("step_timeout", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("step_timeout: first argument must be a function"))
		}
		delay := call.Argument(1).ToInteger()
		id := e.addTimer(time.Duration(delay)*time.Millisecond, func() {
			runGuarded(fn, goja.Undefined())
		})
		return vm.ToValue(id)
	})

	obj.Set("unreached_func", func(call goja.FunctionCall) goja.Value {
		desc := argString(call, 0)
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			h.RunStep(func(t *harness.T) {
				t.Unreached(desc)
			})
			return goja.Undefined()
		})
	})

	obj.Set("done", func(goja.FunctionCall) goja.Value {
		h.Done()
		return goja.Undefined()
	})

	return obj
}

// promiseBody is one promise test waiting to run. Bodies execute one
// at a time: the next starts only after the previous chain settles, so
// assertion attribution stays on the owning test for the whole life of
// its continuations, which the script engine delivers long after the
// body itself returned.
type promiseBody struct {
	t       *harness.T
	fn      goja.Callable
	resolve func(any)
	reject  func(any)
}

func (e *Engine) enqueuePromiseBody(b promiseBody) {
	e.promiseQueue = append(e.promiseQueue, b)
	if e.promiseBusy {
		return
	}
	e.promiseBusy = true
	e.runNextPromiseBody()
}

func (e *Engine) runNextPromiseBody() {
	for len(e.promiseQueue) > 0 {
		b := e.promiseQueue[0]
		e.promiseQueue = e.promiseQueue[1:]
		if e.startPromiseBody(b) {
			return
		}
	}
	e.promiseBusy = false
}

// startPromiseBody invokes the body and ties the chain it returns to
// the harness promise: fulfillment passes the test, rejection fails it
// with the reason as context. Reports whether the chain is still
// pending; a body that throws or returns a non-thenable settles here.
func (e *Engine) startPromiseBody(b promiseBody) bool {
	prev := e.current
	e.current = b.t

	ret, err := b.fn(goja.Undefined())
	if err != nil {
		e.current = prev
		b.reject(failureFromJS(err))
		return false
	}

	obj, thenFn, ok := thenable(ret)
	if !ok {
		e.current = prev
		b.reject(core.NewHarnessError(core.FailureUncaught,
			"no_promise", "promise test returned no promise"))
		return false
	}

	onFulfilled := e.vm.ToValue(func(goja.FunctionCall) goja.Value {
		e.current = prev
		b.resolve(nil)
		e.runNextPromiseBody()
		return goja.Undefined()
	})
	onRejected := e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		e.current = prev
		b.reject(rejectionReason(call.Argument(0)))
		e.runNextPromiseBody()
		return goja.Undefined()
	})
	if _, err := thenFn(obj, onFulfilled, onRejected); err != nil {
		e.current = prev
		b.reject(failureFromJS(err))
		return false
	}
	return true
}

func thenable(v goja.Value) (*goja.Object, goja.Callable, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, nil, false
	}
	thenFn, ok := goja.AssertFunction(obj.Get("then"))
	if !ok {
		return nil, nil, false
	}
	return obj, thenFn, true
}

// rejectionReason converts a script rejection value into the failure
// context for the test: a rethrown assertion failure keeps its
// structure, anything else is rendered as text.
func rejectionReason(v goja.Value) any {
	if he, ok := failureFromValue(v); ok {
		return he
	}
	return fmt.Errorf("%s", reasonString(v))
}

func (e *Engine) setupAsserts() {
	vm := e.vm

	vm.Set("assert_equals", func(call goja.FunctionCall) goja.Value {
		defer e.rethrowFailure()
		t := e.mustCurrent("assert_equals")
		t.AssertEqual(export(call.Argument(0)), export(call.Argument(1)), argString(call, 2))
		return goja.Undefined()
	})

	vm.Set("assert_not_equals", func(call goja.FunctionCall) goja.Value {
		defer e.rethrowFailure()
		t := e.mustCurrent("assert_not_equals")
		t.AssertNotEqual(export(call.Argument(0)), export(call.Argument(1)), argString(call, 2))
		return goja.Undefined()
	})

	vm.Set("assert_true", func(call goja.FunctionCall) goja.Value {
		defer e.rethrowFailure()
		t := e.mustCurrent("assert_true")
		t.AssertTrue(call.Argument(0).ToBoolean(), argString(call, 1))
		return goja.Undefined()
	})

	vm.Set("assert_false", func(call goja.FunctionCall) goja.Value {
		defer e.rethrowFailure()
		t := e.mustCurrent("assert_false")
		t.AssertFalse(call.Argument(0).ToBoolean(), argString(call, 1))
		return goja.Undefined()
	})

	vm.Set("assert_array_equals", func(call goja.FunctionCall) goja.Value {
		defer e.rethrowFailure()
		t := e.mustCurrent("assert_array_equals")
		desc := argString(call, 2)
		actual, aok := export(call.Argument(0)).([]any)
		expected, eok := export(call.Argument(1)).([]any)
		if !aok || !eok {
			t.AssertTrue(false, desc+" (both values must be arrays)")
			return goja.Undefined()
		}
		t.AssertArrayEqual(actual, expected, desc)
		return goja.Undefined()
	})

	vm.Set("assert_class_string", func(call goja.FunctionCall) goja.Value {
		defer e.rethrowFailure()
		t := e.mustCurrent("assert_class_string")
		kind, ok := core.KindFromString(call.Argument(1).String())
		if !ok {
			panic(vm.NewTypeError("assert_class_string: unrecognized class %q",
				call.Argument(1).String()))
		}
		t.AssertClassOf(call.Argument(0), kind, argString(call, 2))
		return goja.Undefined()
	})

	vm.Set("assert_unreached", func(call goja.FunctionCall) goja.Value {
		defer e.rethrowFailure()
		t := e.mustCurrent("assert_unreached")
		t.Unreached(argString(call, 0))
		return goja.Undefined()
	})
}

// jsUndefined marks exported undefined so it stays distinct from null.
type jsUndefined struct{}

func (jsUndefined) String() string { return "undefined" }

// export converts a script value for assertion comparison.
func export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) {
		return jsUndefined{}
	}
	return v.Export()
}

// argString returns the i-th argument as a string, empty when absent.
func argString(call goja.FunctionCall, i int) string {
	arg := call.Argument(i)
	if goja.IsUndefined(arg) {
		return ""
	}
	return arg.String()
}

// reasonString renders a rejection reason, preferring an Error-like
// message property.
func reasonString(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
	}
	return v.String()
}
