package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-tools/worklog/internal/timesheet"
)

// periodSnapshot builds a snapshot with a two-day period and a small catalog:
// project 1 ("Platform") with task 101, project 2 ("Research") with task 201.
func periodSnapshot() *timesheet.Snapshot {
	return &timesheet.Snapshot{
		ValidDates: map[string]struct{}{
			"2024-01-15": {},
			"2024-01-16": {},
		},
		Catalog: map[string]timesheet.Project{
			"1": {Name: "Platform", Tasks: map[string]string{"101": "Development"}},
			"2": {Name: "Research", Tasks: map[string]string{"201": "Prototyping"}},
		},
		Existing: map[string][]timesheet.ExistingEntry{},
	}
}

func aggregate(date, projectID, taskID string) AggregateEntry {
	return AggregateEntry{Date: date, ProjectID: projectID, TaskID: taskID, TotalHours: 1}
}

func TestClassify_Ready(t *testing.T) {
	t.Parallel()

	result := Classify(aggregate("2024-01-15", "1", "101"), periodSnapshot())

	assert.Equal(t, StatusReady, result.Status)
	assert.Equal(t, []string{"Ready"}, result.Reasons)
}

func TestClassify_DateOutsidePeriod(t *testing.T) {
	t.Parallel()

	result := Classify(aggregate("2024-02-30", "1", "101"), periodSnapshot())

	assert.Equal(t, StatusInvalid, result.Status)
	assert.Contains(t, result.Reasons, "Date outside timesheet period")
}

func TestClassify_UnknownProject(t *testing.T) {
	t.Parallel()

	result := Classify(aggregate("2024-01-15", "99", ""), periodSnapshot())

	assert.Equal(t, StatusInvalid, result.Status)
	assert.Equal(t, []string{"Unknown project ID 99"}, result.Reasons)
}

func TestClassify_UnknownTaskNamesProject(t *testing.T) {
	t.Parallel()

	result := Classify(aggregate("2024-01-15", "2", "999"), periodSnapshot())

	assert.Equal(t, StatusInvalid, result.Status)
	assert.Equal(t, []string{"Unknown task ID 999 for project Research"}, result.Reasons)
}

func TestClassify_UnknownProjectSkipsTaskCheck(t *testing.T) {
	t.Parallel()

	result := Classify(aggregate("2024-01-15", "99", "999"), periodSnapshot())

	assert.Equal(t, StatusInvalid, result.Status)
	assert.Equal(t, []string{"Unknown project ID 99"}, result.Reasons)
}

func TestClassify_InvalidTierCollectsAllReasons(t *testing.T) {
	t.Parallel()

	result := Classify(aggregate("2023-12-01", "1", "999"), periodSnapshot())

	assert.Equal(t, StatusInvalid, result.Status)
	assert.Equal(t, []string{
		"Date outside timesheet period",
		"Unknown task ID 999 for project Platform",
	}, result.Reasons)
}

func TestClassify_DuplicateWarning(t *testing.T) {
	t.Parallel()

	snap := periodSnapshot()
	snap.Existing["2024-01-15"] = []timesheet.ExistingEntry{
		{ProjectID: "1", TaskID: "101", Kind: timesheet.KindDuration, Hours: 2},
	}

	result := Classify(aggregate("2024-01-15", "1", "101"), snap)

	assert.Equal(t, StatusWarning, result.Status)
	assert.Equal(t, []string{"Date already has entries for this project/task"}, result.Reasons)
}

func TestClassify_DuplicateCheckIsShapeAgnostic(t *testing.T) {
	t.Parallel()

	snap := periodSnapshot()
	snap.Existing["2024-01-15"] = []timesheet.ExistingEntry{
		{ProjectID: "1", TaskID: "101", Kind: timesheet.KindInterval, Start: "09:00", End: "11:00"},
	}

	result := Classify(aggregate("2024-01-15", "1", "101"), snap)

	assert.Equal(t, StatusWarning, result.Status)
}

func TestClassify_DuplicateFiresOnceForManyMatches(t *testing.T) {
	t.Parallel()

	snap := periodSnapshot()
	snap.Existing["2024-01-15"] = []timesheet.ExistingEntry{
		{ProjectID: "1", TaskID: "101", Kind: timesheet.KindDuration, Hours: 1},
		{ProjectID: "1", TaskID: "101", Kind: timesheet.KindDuration, Hours: 2},
	}

	result := Classify(aggregate("2024-01-15", "1", "101"), snap)

	assert.Equal(t, StatusWarning, result.Status)
	require.Len(t, result.Reasons, 1)
}

func TestClassify_NoTaskMatchesOnlyNoTask(t *testing.T) {
	t.Parallel()

	snap := periodSnapshot()
	snap.Existing["2024-01-15"] = []timesheet.ExistingEntry{
		{ProjectID: "1", TaskID: "101", Kind: timesheet.KindDuration, Hours: 2},
	}

	// The aggregate has no task; an existing entry with task 101 must not
	// wildcard-match it.
	result := Classify(aggregate("2024-01-15", "1", ""), snap)

	assert.Equal(t, StatusReady, result.Status)

	snap.Existing["2024-01-15"] = append(snap.Existing["2024-01-15"],
		timesheet.ExistingEntry{ProjectID: "1", TaskID: "", Kind: timesheet.KindDuration, Hours: 1})

	result = Classify(aggregate("2024-01-15", "1", ""), snap)

	assert.Equal(t, StatusWarning, result.Status)
}

func TestClassify_InvalidWinsOverWarning(t *testing.T) {
	t.Parallel()

	snap := periodSnapshot()
	snap.Existing["2024-01-15"] = []timesheet.ExistingEntry{
		{ProjectID: "99", TaskID: "", Kind: timesheet.KindDuration, Hours: 1},
	}

	// Project 99 is unknown; even though the date has a matching existing
	// pair for it, the status must be Invalid, never Warning.
	result := Classify(aggregate("2024-01-15", "99", ""), snap)

	assert.Equal(t, StatusInvalid, result.Status)
}

func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()

	snap := periodSnapshot()
	entry := aggregate("2024-01-15", "1", "101")

	first := Classify(entry, snap)
	second := Classify(entry, snap)

	assert.Equal(t, first, second)
}
