package importer

import (
	"github.com/worklog-tools/worklog/internal/timesheet"
)

// ClassifiedEntry pairs an aggregate entry with its classification. It
// carries everything a caller needs to render a review row and drive
// selective submission.
type ClassifiedEntry struct {
	AggregateEntry
	Classification
}

// Policy decides which classified entries are included in a submission set.
type Policy int

const (
	// PolicyReadyOnly includes entries classified Ready.
	PolicyReadyOnly Policy = iota

	// PolicyReadyAndWarning includes Ready and Warning entries.
	PolicyReadyAndWarning
)

// Includes reports whether the policy admits the given status.
func (p Policy) Includes(status Status) bool {
	switch status {
	case StatusReady:
		return true
	case StatusWarning:
		return p == PolicyReadyAndWarning
	case StatusInvalid:
		return false
	default:
		return false
	}
}

// Run executes the full pipeline on one payload: parse and normalize,
// reject structural and time-order failures batch-wide, aggregate, and
// classify every aggregate against the snapshot. A classification of
// Invalid is a per-entry outcome, never an error; errors mean the whole
// batch was rejected before aggregation.
func Run(payload []byte, snap *timesheet.Snapshot) ([]ClassifiedEntry, error) {
	intervals, err := ParseBatch(payload)
	if err != nil {
		return nil, err
	}

	aggregates := Aggregate(intervals)
	classified := make([]ClassifiedEntry, 0, len(aggregates))

	for _, entry := range aggregates {
		classified = append(classified, ClassifiedEntry{
			AggregateEntry: entry,
			Classification: Classify(entry, snap),
		})
	}

	return classified, nil
}

// Select filters classified entries down to the submission set the policy
// admits. The input is never mutated.
func Select(entries []ClassifiedEntry, policy Policy) []ClassifiedEntry {
	out := make([]ClassifiedEntry, 0, len(entries))

	for _, entry := range entries {
		if policy.Includes(entry.Status) {
			out = append(out, entry)
		}
	}

	return out
}
