package core

import (
	"fmt"
	"strings"
)

// AssertionResult captures the outcome of a single assertion inside a
// test case. Results are appended to the owning test case in execution
// order and never mutated after creation.
type AssertionResult struct {
	Pass     bool   `json:"pass"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"message,omitempty"`
}

// FormatValue renders a value the way it should appear in assertion
// messages: quoted strings, plain scalars, bracketed slices.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", val)
	}
}
