package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-tools/worklog/internal/clockify"
)

func fakeVerifier(user clockify.User, workspaces []clockify.Workspace, err error) clockifyVerifier {
	return func(_ context.Context, _ string) (clockify.User, []clockify.Workspace, error) {
		return user, workspaces, err
	}
}

func TestSetup_WritesConfig(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "worklog.yaml")

	verify := fakeVerifier(
		clockify.User{ID: "u1", Name: "Alex", DefaultWorkspace: "w1"},
		[]clockify.Workspace{{ID: "w1", Name: "Main"}},
		nil,
	)

	stdin := "key-1\nhttps://hr.example.test\nsess-1\n42\n"

	stdout, _, err := execute(t, newSetupCommandWithDeps(verify), stdin, "--output", output)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Authenticated as Alex")
	assert.Contains(t, stdout, output)

	data, readErr := os.ReadFile(output)

	require.NoError(t, readErr)

	content := string(data)

	assert.Contains(t, content, "api_key: key-1")
	assert.Contains(t, content, "workspace: w1")
	assert.Contains(t, content, "base_url: https://hr.example.test")
	assert.Contains(t, content, "session: sess-1")
	assert.Contains(t, content, `employee_id: "42"`)
}

func TestSetup_WorkspaceMenu(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "worklog.yaml")

	verify := fakeVerifier(
		clockify.User{ID: "u1", Name: "Alex", DefaultWorkspace: "w1"},
		[]clockify.Workspace{{ID: "w1", Name: "Main"}, {ID: "w2", Name: "Side"}},
		nil,
	)

	stdin := "key-1\n2\nhttps://hr.example.test\nsess-1\n42\n"

	stdout, _, err := execute(t, newSetupCommandWithDeps(verify), stdin, "--output", output)

	require.NoError(t, err)
	assert.Contains(t, stdout, "1. Main (default)")
	assert.Contains(t, stdout, "2. Side")

	data, readErr := os.ReadFile(output)

	require.NoError(t, readErr)
	assert.Contains(t, string(data), "workspace: w2")
}

func TestSetup_BadKeyFails(t *testing.T) {
	t.Parallel()

	verify := fakeVerifier(clockify.User{}, nil, errors.New("status 401"))

	_, _, err := execute(t, newSetupCommandWithDeps(verify), "bad-key\n")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify clockify access")
}
