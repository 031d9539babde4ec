package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interval(date string, start, end int, projectID, taskID string) RawInterval {
	return RawInterval{Date: date, Start: start, End: end, ProjectID: projectID, TaskID: taskID}
}

func TestAggregate_MergesSameKey(t *testing.T) {
	t.Parallel()

	intervals := []RawInterval{
		interval("2024-01-15", 540, 720, "1", "101"),  // 09:00-12:00
		interval("2024-01-15", 780, 930, "1", "101"),  // 13:00-15:30
	}

	entries := Aggregate(intervals)

	require.Len(t, entries, 1)
	assert.Equal(t, "2024-01-15", entries[0].Date)
	assert.Equal(t, "1", entries[0].ProjectID)
	assert.Equal(t, "101", entries[0].TaskID)
	assert.InDelta(t, 5.5, entries[0].TotalHours, 1e-9)
	assert.Equal(t, []string{"09:00-12:00", "13:00-15:30"}, entries[0].Sources)
}

func TestAggregate_NoTaskIsItsOwnBucket(t *testing.T) {
	t.Parallel()

	intervals := []RawInterval{
		interval("2024-01-15", 540, 600, "1", "101"),
		interval("2024-01-15", 600, 660, "1", ""),
		interval("2024-01-15", 660, 720, "1", ""),
	}

	entries := Aggregate(intervals)

	require.Len(t, entries, 2)
	assert.Equal(t, "101", entries[0].TaskID)
	assert.InDelta(t, 1.0, entries[0].TotalHours, 1e-9)
	assert.Empty(t, entries[1].TaskID)
	assert.InDelta(t, 2.0, entries[1].TotalHours, 1e-9)
}

func TestAggregate_RepeatedIdenticalIntervalsSum(t *testing.T) {
	t.Parallel()

	intervals := []RawInterval{
		interval("2024-01-15", 540, 600, "1", "101"),
		interval("2024-01-15", 540, 600, "1", "101"),
	}

	entries := Aggregate(intervals)

	require.Len(t, entries, 1)
	assert.InDelta(t, 2.0, entries[0].TotalHours, 1e-9)
	assert.Equal(t, []string{"09:00-10:00", "09:00-10:00"}, entries[0].Sources)
}

func TestAggregate_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	intervals := []RawInterval{
		interval("2024-01-16", 540, 600, "2", ""),
		interval("2024-01-15", 540, 600, "1", "101"),
		interval("2024-01-16", 600, 660, "2", ""),
		interval("2024-01-15", 660, 720, "3", ""),
	}

	entries := Aggregate(intervals)

	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].ProjectID)
	assert.Equal(t, "1", entries[1].ProjectID)
	assert.Equal(t, "3", entries[2].ProjectID)
}

func TestAggregate_ConservesTotalDuration(t *testing.T) {
	t.Parallel()

	intervals := []RawInterval{
		interval("2024-01-15", 540, 725, "1", "101"),
		interval("2024-01-15", 730, 930, "1", ""),
		interval("2024-01-16", 480, 481, "2", "201"),
		interval("2024-01-16", 500, 777, "1", "101"),
	}

	var inputMinutes int
	for _, iv := range intervals {
		inputMinutes += iv.Duration()
	}

	entries := Aggregate(intervals)

	// Aggregation never produces more entries than inputs, and the hour sum
	// matches the input minute sum exactly.
	assert.LessOrEqual(t, len(entries), len(intervals))

	var outputHours float64
	for _, e := range entries {
		outputHours += e.TotalHours
	}

	assert.InDelta(t, float64(inputMinutes)/60, outputHours, 1e-9)
}

func TestAggregate_KeysAreUnique(t *testing.T) {
	t.Parallel()

	intervals := []RawInterval{
		interval("2024-01-15", 540, 600, "1", "101"),
		interval("2024-01-15", 600, 660, "1", "101"),
		interval("2024-01-15", 660, 720, "1", ""),
		interval("2024-01-16", 540, 600, "1", "101"),
	}

	entries := Aggregate(intervals)

	seen := make(map[groupKey]bool)
	for _, e := range entries {
		key := groupKey{date: e.Date, projectID: e.ProjectID, taskID: e.TaskID}

		assert.False(t, seen[key], "duplicate key %+v", key)
		seen[key] = true
	}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Aggregate(nil))
}
