package harness

import (
	"time"

	"github.com/webplat-dev/harness-runner/pkg/core"
)

// Default timeout policy. The long multiplier mirrors the declarative
// "long timeout" tag conformance test files use to opt into an extended
// window; both values are policy, not hard constants.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultLongMultiplier = 6
)

type suiteConfig struct {
	defaultTimeout time.Duration
	longMultiplier int
	classifier     core.Classifier
}

// Option configures a Suite.
type Option func(*suiteConfig)

// WithDefaultTimeout overrides the per-test timeout applied to async and
// promise tests that do not set their own.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *suiteConfig) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

// WithLongMultiplier overrides the factor applied to the default timeout
// for tests declared with WithLongTimeout.
func WithLongMultiplier(m int) Option {
	return func(c *suiteConfig) {
		if m > 0 {
			c.longMultiplier = m
		}
	}
}

// WithClassifier supplies the runtime value classifier used by
// AssertClassOf. Host layers that produce their own value representation
// (e.g. a script engine) install their classifier here.
func WithClassifier(cl core.Classifier) Option {
	return func(c *suiteConfig) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

type testConfig struct {
	timeout   time.Duration
	long      bool
	noTimeout bool
}

// TestOption configures a single async or promise test.
type TestOption func(*testConfig)

// WithTimeout replaces the test's timeout outright.
func WithTimeout(d time.Duration) TestOption {
	return func(c *testConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLongTimeout multiplies the suite default timeout by the configured
// long multiplier, for tests that legitimately run long.
func WithLongTimeout() TestOption {
	return func(c *testConfig) {
		c.long = true
	}
}

// WithNoTimeout disables the timeout entirely, for runs driven under an
// external watchdog. Takes precedence over the other timeout options.
func WithNoTimeout() TestOption {
	return func(c *testConfig) {
		c.noTimeout = true
	}
}
