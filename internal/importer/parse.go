// Package importer implements the time-entry import pipeline: payload
// parsing and normalization, aggregation of raw intervals into daily totals,
// and classification of each total against the target timesheet snapshot.
//
// The pipeline is pure and synchronous. It runs once per preview, owns no
// state between invocations, and never mutates the snapshot it is given.
package importer

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/worklog-tools/worklog/internal/timesheet"
)

// batchSchema validates the structural shape of an import payload. Semantic
// checks (date range, catalog membership) belong to the classifier, not here.
const batchSchema = `{
	"type": "object",
	"required": ["entries"],
	"properties": {
		"entries": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["date", "start", "end", "projectId"],
				"properties": {
					"date":      {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
					"start":     {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
					"end":       {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
					"projectId": {"type": ["string", "integer"]},
					"taskId":    {"type": ["string", "integer", "null"]},
					"note":      {"type": "string"}
				}
			}
		}
	}
}`

// RawInterval is one normalized time-interval record. Start and End are
// minutes since midnight on Date; identifiers are string-coerced, with the
// empty TaskID standing in for a record that has no task.
type RawInterval struct {
	Date      string
	Start     int
	End       int
	ProjectID string
	TaskID    string
	Note      string
}

// Duration returns the interval length in minutes.
func (r RawInterval) Duration() int {
	return r.End - r.Start
}

type batchPayload struct {
	Entries []rawEntry `json:"entries"`
}

type rawEntry struct {
	Date      string          `json:"date"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	ProjectID json.RawMessage `json:"projectId"`
	TaskID    json.RawMessage `json:"taskId"`
	Note      string          `json:"note"`
}

// ParseBatch validates and normalizes an import payload.
//
// Structural failures (unparseable JSON, missing/empty/non-array entries,
// schema violations) return *MalformedBatchError. After normalization the
// whole batch is checked for start < end on every interval; any violation
// returns *TimeOrderError listing all offenders, and nothing is aggregated.
func ParseBatch(payload []byte) ([]RawInterval, error) {
	var probe any

	err := json.Unmarshal(payload, &probe)
	if err != nil {
		return nil, &MalformedBatchError{Problems: []string{"payload is not valid JSON"}}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(batchSchema),
		gojsonschema.NewGoLoader(probe),
	)
	if err != nil {
		return nil, fmt.Errorf("validate batch schema: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			problems = append(problems, resultErr.String())
		}

		return nil, &MalformedBatchError{Problems: problems}
	}

	var batch batchPayload

	err = json.Unmarshal(payload, &batch)
	if err != nil {
		return nil, &MalformedBatchError{Problems: []string{err.Error()}}
	}

	intervals := make([]RawInterval, 0, len(batch.Entries))

	var violations []IntervalViolation

	for _, entry := range batch.Entries {
		start, startErr := ParseClock(entry.Start)
		if startErr != nil {
			return nil, &MalformedBatchError{Problems: []string{startErr.Error()}}
		}

		end, endErr := ParseClock(entry.End)
		if endErr != nil {
			return nil, &MalformedBatchError{Problems: []string{endErr.Error()}}
		}

		if start >= end {
			violations = append(violations, IntervalViolation{
				Date:  entry.Date,
				Start: entry.Start,
				End:   entry.End,
			})

			continue
		}

		intervals = append(intervals, RawInterval{
			Date:      entry.Date,
			Start:     start,
			End:       end,
			ProjectID: coerceID(entry.ProjectID),
			TaskID:    coerceID(entry.TaskID),
			Note:      entry.Note,
		})
	}

	if len(violations) > 0 {
		return nil, &TimeOrderError{Violations: violations}
	}

	return intervals, nil
}

// coerceID normalizes a string-or-number JSON identifier to its string form.
// null and absent both become the empty id. Numeric ids are canonicalized to
// plain digits so 1e2 and 1.0 match the catalog keys "100" and "1"; ids
// already in digit form keep their literal text, so nothing is lost to float
// conversion.
func coerceID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}

	return timesheet.CanonicalID(string(raw))
}
