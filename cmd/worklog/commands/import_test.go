package commands

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-tools/worklog/internal/bamboohr"
	"github.com/worklog-tools/worklog/internal/config"
	"github.com/worklog-tools/worklog/internal/timesheet"
)

const testImportConfig = `
timesheet:
  base_url: https://hr.example.test
  session: sess-1
  employee_id: "42"
`

type fakeSubmission struct {
	snapshotJSON string
	submitted    []bamboohr.Record
	token        string
}

func (f *fakeSubmission) Snapshot(_ context.Context) (*timesheet.Snapshot, string, error) {
	snap, err := timesheet.ParseSnapshot([]byte(f.snapshotJSON))

	return snap, "tok-1", err
}

func (f *fakeSubmission) Submit(
	_ context.Context, token string, records []bamboohr.Record,
) (bamboohr.SubmitResult, error) {
	f.token = token
	f.submitted = records

	return bamboohr.SubmitResult{RunID: "run-1", Accepted: len(records)}, nil
}

func newTestImportCommand(fake *fakeSubmission) *cobra.Command {
	return newImportCommandWithDeps(func(_ *config.Config) submissionClient {
		return fake
	})
}

func TestImport_SubmitsReadyEntries(t *testing.T) {
	t.Parallel()

	fake := &fakeSubmission{snapshotJSON: testSnapshotData}
	input := writeTempFile(t, "payload.json", testPayloadData)
	cfgPath := writeTempFile(t, "worklog.yaml", testImportConfig)

	stdout, _, err := execute(t, newTestImportCommand(fake), "",
		"--input", input, "--config", cfgPath, "--yes")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Submitted 2 entries")
	assert.Equal(t, "tok-1", fake.token)
	require.Len(t, fake.submitted, 2)
	assert.Equal(t, "42", fake.submitted[0].EmployeeID)
	assert.Equal(t, 1, fake.submitted[0].TrackingID)
	// The invalid out-of-period entry never reaches submission.
	for _, rec := range fake.submitted {
		assert.Equal(t, "2024-01-15", rec.Date)
	}
}

func TestImport_ConfirmDeclinedAborts(t *testing.T) {
	t.Parallel()

	fake := &fakeSubmission{snapshotJSON: testSnapshotData}
	input := writeTempFile(t, "payload.json", testPayloadData)
	cfgPath := writeTempFile(t, "worklog.yaml", testImportConfig)

	stdout, _, err := execute(t, newTestImportCommand(fake), "n\n",
		"--input", input, "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Aborted.")
	assert.Empty(t, fake.submitted)
}

func TestImport_ConfirmAcceptedSubmits(t *testing.T) {
	t.Parallel()

	fake := &fakeSubmission{snapshotJSON: testSnapshotData}
	input := writeTempFile(t, "payload.json", testPayloadData)
	cfgPath := writeTempFile(t, "worklog.yaml", testImportConfig)

	stdout, _, err := execute(t, newTestImportCommand(fake), "y\n",
		"--input", input, "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Submitted 2 entries")
	assert.Len(t, fake.submitted, 2)
}

func TestImport_DryRunWithFileSnapshot(t *testing.T) {
	t.Parallel()

	fake := &fakeSubmission{snapshotJSON: testSnapshotData}
	input := writeTempFile(t, "payload.json", testPayloadData)
	snapshot := writeTempFile(t, "timesheet.json", testSnapshotData)
	cfgPath := writeTempFile(t, "worklog.yaml", testImportConfig)

	stdout, _, err := execute(t, newTestImportCommand(fake), "",
		"--input", input, "--timesheet", snapshot, "--dry-run", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Dry run: 2 entries would be submitted.")
	assert.Empty(t, fake.submitted)
}

func TestImport_FileSnapshotWithoutDryRunFails(t *testing.T) {
	t.Parallel()

	fake := &fakeSubmission{snapshotJSON: testSnapshotData}
	input := writeTempFile(t, "payload.json", testPayloadData)
	snapshot := writeTempFile(t, "timesheet.json", testSnapshotData)
	cfgPath := writeTempFile(t, "worklog.yaml", testImportConfig)

	_, _, err := execute(t, newTestImportCommand(fake), "",
		"--input", input, "--timesheet", snapshot, "--config", cfgPath)

	require.ErrorIs(t, err, ErrFileSnapshotSubmit)
}

func TestImport_MissingTimesheetConfigFails(t *testing.T) {
	t.Parallel()

	fake := &fakeSubmission{snapshotJSON: testSnapshotData}
	input := writeTempFile(t, "payload.json", testPayloadData)
	cfgPath := writeTempFile(t, "worklog.yaml", "{}\n")

	_, _, err := execute(t, newTestImportCommand(fake), "",
		"--input", input, "--config", cfgPath, "--yes")

	require.ErrorIs(t, err, config.ErrMissingBaseURL)
}

func TestImport_IncludeWarningsWidensSelection(t *testing.T) {
	t.Parallel()

	snapshotWithExisting := `{
		"validDates": ["2024-01-15"],
		"projectsWithTasks": {
			"byId": {"1": {"id": 1, "name": "Platform", "tasks": {"byId": {"101": {"id": 101, "name": "Development"}}}}}
		},
		"dailyDetails": {
			"2024-01-15": {"entries": [{"projectId": 1, "taskId": 101, "start": "08:00", "end": "09:00"}]}
		}
	}`
	payload := `{"entries": [
		{"date": "2024-01-15", "start": "09:00", "end": "11:00", "projectId": 1, "taskId": 101}
	]}`

	fake := &fakeSubmission{snapshotJSON: snapshotWithExisting}
	input := writeTempFile(t, "payload.json", payload)
	cfgPath := writeTempFile(t, "worklog.yaml", testImportConfig)

	stdout, _, err := execute(t, newTestImportCommand(fake), "",
		"--input", input, "--config", cfgPath, "--yes")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing to submit.")

	fake2 := &fakeSubmission{snapshotJSON: snapshotWithExisting}

	stdout, _, err = execute(t, newTestImportCommand(fake2), "",
		"--input", input, "--config", cfgPath, "--yes", "--include-warnings")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Submitted 1 entries")
	require.Len(t, fake2.submitted, 1)
}
