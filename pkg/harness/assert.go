package harness

import (
	"math"
	"reflect"

	"github.com/webplat-dev/harness-runner/pkg/core"
)

// T is the assertion surface handed to test bodies and step callbacks.
// Every assertion records a result on the owning test case; a mismatch
// raises a structured failure that the nearest test-case boundary (the
// synchronous body or a step guard) catches and attributes.
type T struct {
	tc    *TestCase
	suite *Suite
}

// Name returns the owning test case's name.
func (t *T) Name() string { return t.tc.name }

// AssertEqual checks that actual equals expected. Numbers compare by
// value across numeric types; NaN equals NaN, matching how conformance
// assertions treat same-value equality.
func (t *T) AssertEqual(actual, expected any, message string) {
	if sameValue(actual, expected) {
		t.pass(core.FormatValue(expected), core.FormatValue(actual), message)
		return
	}
	t.fail(core.FormatValue(expected), core.FormatValue(actual), message)
}

// AssertNotEqual checks that actual differs from unexpected.
func (t *T) AssertNotEqual(actual, unexpected any, message string) {
	if !sameValue(actual, unexpected) {
		t.pass("anything but "+core.FormatValue(unexpected), core.FormatValue(actual), message)
		return
	}
	t.fail("anything but "+core.FormatValue(unexpected), core.FormatValue(actual), message)
}

// AssertTrue checks that cond holds.
func (t *T) AssertTrue(cond bool, message string) {
	if cond {
		t.pass("true", "true", message)
		return
	}
	t.fail("true", "false", message)
}

// AssertFalse checks that cond does not hold.
func (t *T) AssertFalse(cond bool, message string) {
	if !cond {
		t.pass("false", "false", message)
		return
	}
	t.fail("false", "true", message)
}

// AssertArrayEqual checks length and element-wise same-value equality.
func (t *T) AssertArrayEqual(actual, expected []any, message string) {
	if len(actual) != len(expected) {
		t.fail(core.FormatValue(expected), core.FormatValue(actual), message)
		return
	}
	for i := range expected {
		if !sameValue(actual[i], expected[i]) {
			t.fail(core.FormatValue(expected), core.FormatValue(actual), message)
			return
		}
	}
	t.pass(core.FormatValue(expected), core.FormatValue(actual), message)
}

// AssertClassOf checks a value's runtime classification against an
// expected kind, using the suite's classifier. This is how scenarios
// distinguish semantically different but structurally similar results
// (a Blob versus a raw ArrayBuffer).
func (t *T) AssertClassOf(value any, kind core.ValueKind, message string) {
	got := t.suite.cfg.classifier(value)
	if got == kind {
		t.pass(kind.String(), got.String(), message)
		return
	}
	t.fail(kind.String(), got.String(), message)
}

// Unreached fails the test; it marks code paths the scenario must never
// take (an error callback on a request that should succeed).
func (t *T) Unreached(message string) {
	t.fail("code path not taken", "reached", message)
}

// Fatal raises an uncaught failure with the given error, for scenario
// conditions that are not assertion mismatches.
func (t *T) Fatal(err error) {
	panic(core.NewUncaughtFailure(err))
}

func (t *T) pass(expected, actual, message string) {
	t.tc.record(core.AssertionResult{
		Pass:     true,
		Expected: expected,
		Actual:   actual,
		Message:  message,
	})
}

func (t *T) fail(expected, actual, message string) {
	t.tc.record(core.AssertionResult{
		Expected: expected,
		Actual:   actual,
		Message:  message,
	})
	panic(core.NewAssertionFailure(expected, actual, message))
}

// sameValue implements same-value equality: numeric values compare by
// value regardless of Go type, NaN equals NaN, everything else falls
// back to deep equality.
func sameValue(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum || bNum {
		if !aNum || !bNum {
			return false
		}
		if math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
