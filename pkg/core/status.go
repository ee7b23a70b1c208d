package core

// Status represents the lifecycle state of a test case
type Status int

const (
	StatusPending Status = iota // Registered, body not yet started
	StatusRunning               // Body started or async steps outstanding
	StatusPassed                // Completed with all assertions passing
	StatusFailed                // Assertion mismatch or uncaught error
	StatusTimeout               // No terminal signal within the allotted window
	StatusNotRun                // Never executed (scenario aborted before the test ran)
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	case StatusNotRun:
		return "notrun"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state. A test case
// transitions into a terminal state at most once; signals arriving after
// that are ignored.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusTimeout, StatusNotRun:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status indicates success
func (s Status) IsSuccess() bool {
	return s == StatusPassed
}

// FailureCategory classifies the type of failure for reporting
type FailureCategory int

const (
	FailureNone      FailureCategory = iota // No failure
	FailureAssertion                        // Expected/actual mismatch raised by an assertion
	FailureUncaught                         // Exception escaping a test body or step
	FailureTimeout                          // Terminal signal never arrived in time
	FailureMisuse                           // Harness API called out of contract (caller bug)
)

// String returns the string representation of FailureCategory
func (c FailureCategory) String() string {
	switch c {
	case FailureNone:
		return "none"
	case FailureAssertion:
		return "assertion"
	case FailureUncaught:
		return "uncaught"
	case FailureTimeout:
		return "timeout"
	case FailureMisuse:
		return "misuse"
	default:
		return "unknown"
	}
}
