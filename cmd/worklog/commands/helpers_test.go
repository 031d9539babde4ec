package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testSnapshotData = `{
	"validDates": ["2024-01-15", "2024-01-16"],
	"projectsWithTasks": {
		"byId": {
			"1": {"id": 1, "name": "Platform", "tasks": {"byId": {"101": {"id": 101, "name": "Development"}}}},
			"2": {"id": 2, "name": "Research", "tasks": {"byId": []}}
		}
	},
	"dailyDetails": {}
}`

const testPayloadData = `{
	"entries": [
		{"date": "2024-01-15", "start": "09:00", "end": "11:00", "projectId": 1, "taskId": 101, "note": "dev"},
		{"date": "2024-01-15", "start": "13:00", "end": "14:30", "projectId": 2, "taskId": null},
		{"date": "2024-01-20", "start": "09:00", "end": "10:00", "projectId": 1, "taskId": 101}
	]
}`

// execute runs a cobra command with scripted stdin and captured output.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

// writeTempFile drops content into a fresh temp dir and returns the path.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
