package importer

import (
	"fmt"
	"strings"
)

// MalformedBatchError rejects a payload whose structure cannot be processed
// at all: missing or non-array entry list, empty batch, or entries that fail
// schema validation. Nothing is aggregated when this error is returned.
type MalformedBatchError struct {
	// Problems holds one human-readable message per structural violation.
	Problems []string
}

// Error implements the error interface.
func (e *MalformedBatchError) Error() string {
	if len(e.Problems) == 0 {
		return "malformed batch"
	}

	return "malformed batch: " + strings.Join(e.Problems, "; ")
}

// IntervalViolation identifies one raw interval whose start is not before
// its end.
type IntervalViolation struct {
	Date  string
	Start string
	End   string
}

// String renders the violation as "date start-end".
func (v IntervalViolation) String() string {
	return fmt.Sprintf("%s %s-%s", v.Date, v.Start, v.End)
}

// TimeOrderError rejects a batch in which one or more intervals have
// start >= end. It lists every offending interval, not just the first, so
// the caller can surface all of them before any merging hides the detail.
type TimeOrderError struct {
	Violations []IntervalViolation
}

// Error implements the error interface.
func (e *TimeOrderError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}

	return "intervals with start not before end: " + strings.Join(parts, ", ")
}
