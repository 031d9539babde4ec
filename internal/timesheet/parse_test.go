package timesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTimesheetData = `{
	"validDates": ["2024-01-15", "2024-01-16"],
	"projectsWithTasks": {
		"byId": {
			"1": {"id": 1, "name": "Platform", "tasks": {"byId": {"101": {"id": 101, "name": "Development"}}}},
			"2": {"id": 2, "name": "Research", "tasks": {"byId": []}}
		}
	},
	"dailyDetails": {
		"2024-01-15": {
			"entries": [
				{"projectId": 1, "taskId": 101, "start": "09:00", "end": "11:00"},
				{"projectId": 2, "taskId": null, "hours": 2.5}
			]
		}
	}
}`

func TestParseSnapshot_FullDocument(t *testing.T) {
	t.Parallel()

	snap, err := ParseSnapshot([]byte(sampleTimesheetData))

	require.NoError(t, err)

	assert.True(t, snap.HasDate("2024-01-15"))
	assert.True(t, snap.HasDate("2024-01-16"))
	assert.False(t, snap.HasDate("2024-01-17"))

	platform, ok := snap.ProjectByID("1")

	require.True(t, ok)
	assert.Equal(t, "Platform", platform.Name)
	assert.Equal(t, "Development", platform.Tasks["101"])

	research, ok := snap.ProjectByID("2")

	require.True(t, ok)
	assert.Equal(t, "Research", research.Name)
	assert.Empty(t, research.Tasks)

	entries := snap.EntriesOn("2024-01-15")

	require.Len(t, entries, 2)
	assert.Equal(t, KindInterval, entries[0].Kind)
	assert.Equal(t, "09:00", entries[0].Start)
	assert.Equal(t, "101", entries[0].TaskID)
	assert.Equal(t, KindDuration, entries[1].Kind)
	assert.InDelta(t, 2.5, entries[1].Hours, 1e-9)
	assert.Empty(t, entries[1].TaskID)
}

func TestParseSnapshot_EmptyProjectsAsArray(t *testing.T) {
	t.Parallel()

	// The host serializes empty byId collections as [] instead of {}.
	snap, err := ParseSnapshot([]byte(`{"validDates": [], "projectsWithTasks": {"byId": []}}`))

	require.NoError(t, err)
	assert.Empty(t, snap.Catalog)
	assert.Empty(t, snap.ValidDates)
}

func TestParseSnapshot_StringIdentifiers(t *testing.T) {
	t.Parallel()

	data := `{
		"validDates": ["2024-01-15"],
		"projectsWithTasks": {"byId": {"7": {"id": "7", "name": "Ops", "tasks": {"byId": []}}}},
		"dailyDetails": {"2024-01-15": {"entries": [{"projectId": "7", "taskId": "700", "hours": 1}]}}
	}`

	snap, err := ParseSnapshot([]byte(data))

	require.NoError(t, err)

	_, ok := snap.ProjectByID("7")

	assert.True(t, ok)
	assert.Equal(t, "700", snap.EntriesOn("2024-01-15")[0].TaskID)
}

func TestCanonicalID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lit  string
		want string
	}{
		{name: "plain digits untouched", lit: "100", want: "100"},
		{name: "exponent form", lit: "1e2", want: "100"},
		{name: "trailing decimal", lit: "1.0", want: "1"},
		{name: "negative", lit: "-2.0", want: "-2"},
		{name: "beyond float precision untouched", lit: "9007199254740993", want: "9007199254740993"},
		{name: "fractional untouched", lit: "1.5", want: "1.5"},
		{name: "not a number untouched", lit: "abc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, CanonicalID(tt.lit))
		})
	}
}

func TestParseSnapshot_NumericLiteralIdentifiers(t *testing.T) {
	t.Parallel()

	data := `{
		"validDates": ["2024-01-15"],
		"projectsWithTasks": {"byId": {"100": {"id": 1e2, "name": "Ops", "tasks": {"byId": []}}}},
		"dailyDetails": {"2024-01-15": {"entries": [{"projectId": 1e2, "taskId": 1.0, "hours": 1}]}}
	}`

	snap, err := ParseSnapshot([]byte(data))

	require.NoError(t, err)

	_, ok := snap.ProjectByID("100")

	assert.True(t, ok)
	assert.Equal(t, "100", snap.EntriesOn("2024-01-15")[0].ProjectID)
	assert.Equal(t, "1", snap.EntriesOn("2024-01-15")[0].TaskID)
}

func TestParseSnapshot_BadJSON(t *testing.T) {
	t.Parallel()

	_, err := ParseSnapshot([]byte("{nope"))

	require.Error(t, err)
}

func TestSnapshot_ProjectsSortedByName(t *testing.T) {
	t.Parallel()

	snap := &Snapshot{
		Catalog: map[string]Project{
			"2": {Name: "Zulu", Tasks: map[string]string{"21": "beta", "20": "alpha"}},
			"1": {Name: "Alpha"},
		},
	}

	projects := snap.Projects()

	require.Len(t, projects, 2)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "Zulu", projects[1].Name)
	require.Len(t, projects[1].Tasks, 2)
	assert.Equal(t, "alpha", projects[1].Tasks[0].Name)
}
