package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/worklog-tools/worklog/internal/clockify"
)

// configFilePerm is the permission for the written config file.
const configFilePerm = 0o600

// clockifyVerifier checks an API key and lists the reachable workspaces.
type clockifyVerifier func(ctx context.Context, apiKey string) (clockify.User, []clockify.Workspace, error)

// configDoc is the YAML shape of the written config file. Keys mirror the
// viper mapstructure paths.
type configDoc struct {
	Clockify struct {
		APIKey    string `yaml:"api_key"`
		Workspace string `yaml:"workspace"`
	} `yaml:"clockify"`
	Timesheet struct {
		BaseURL    string `yaml:"base_url"`
		Session    string `yaml:"session"`
		EmployeeID string `yaml:"employee_id"`
	} `yaml:"timesheet"`
}

// SetupCommand holds configuration and dependencies for the setup command.
type SetupCommand struct {
	output string

	verify clockifyVerifier
}

// NewSetupCommand creates the interactive credential setup command.
func NewSetupCommand() *cobra.Command {
	return newSetupCommandWithDeps(verifyClockify)
}

func newSetupCommandWithDeps(verify clockifyVerifier) *cobra.Command {
	sc := &SetupCommand{verify: verify}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure Clockify and timesheet access",
		Long:  "Interactively collect credentials, verify Clockify access, and write the config file.",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	cmd.Flags().StringVarP(&sc.output, "output", "o", "", "Config file to write (default: $HOME/.worklog.yaml)")

	return cmd
}

func verifyClockify(ctx context.Context, apiKey string) (clockify.User, []clockify.Workspace, error) {
	client := clockify.NewClient(apiKey)

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return clockify.User{}, nil, err
	}

	workspaces, err := client.Workspaces(ctx)
	if err != nil {
		return clockify.User{}, nil, err
	}

	return user, workspaces, nil
}

func (sc *SetupCommand) run(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	var doc configDoc

	apiKey, err := prompt(reader, out, "Clockify API key: ")
	if err != nil {
		return err
	}

	user, workspaces, err := sc.verify(cmd.Context(), apiKey)
	if err != nil {
		return fmt.Errorf("verify clockify access: %w", err)
	}

	color.New(color.FgGreen).Fprintf(out, "Authenticated as %s\n", user.Name)

	doc.Clockify.APIKey = apiKey

	workspace, err := sc.chooseWorkspace(reader, out, user, workspaces)
	if err != nil {
		return err
	}

	doc.Clockify.Workspace = workspace

	doc.Timesheet.BaseURL, err = prompt(reader, out, "Timesheet base URL: ")
	if err != nil {
		return err
	}

	doc.Timesheet.Session, err = prompt(reader, out, "Timesheet session cookie: ")
	if err != nil {
		return err
	}

	doc.Timesheet.EmployeeID, err = prompt(reader, out, "Employee ID: ")
	if err != nil {
		return err
	}

	path, err := sc.writeConfig(doc)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration written to %s\n", path)

	return nil
}

// chooseWorkspace presents a numbered workspace menu. A single workspace, or
// none beyond the user's default, is picked without asking.
func (sc *SetupCommand) chooseWorkspace(
	reader *bufio.Reader, out io.Writer, user clockify.User, workspaces []clockify.Workspace,
) (string, error) {
	if len(workspaces) <= 1 {
		return user.DefaultWorkspace, nil
	}

	fmt.Fprintln(out, "Workspaces:")

	for i, ws := range workspaces {
		marker := ""
		if ws.ID == user.DefaultWorkspace {
			marker = " (default)"
		}

		fmt.Fprintf(out, "  %d. %s%s\n", i+1, ws.Name, marker)
	}

	idx, err := promptIndex(reader, out, "Workspace number: ", len(workspaces))
	if err != nil {
		return "", err
	}

	return workspaces[idx].ID, nil
}

func (sc *SetupCommand) writeConfig(doc configDoc) (string, error) {
	path := sc.output
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}

		path = filepath.Join(home, ".worklog.yaml")
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	err = os.WriteFile(path, data, configFilePerm)
	if err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}
