package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/worklog-tools/worklog/internal/mapping"
	"github.com/worklog-tools/worklog/internal/storage"
	"github.com/worklog-tools/worklog/internal/timesheet"
)

// ErrMappingFlagsRequired is returned when a non-interactive add lacks the
// required identifier flags.
var ErrMappingFlagsRequired = errors.New(
	"either --timesheet for interactive selection or --project and --timesheet-project are required")

// MappingCommand holds configuration for the mapping subcommands.
type MappingCommand struct {
	dataDir string

	project          string
	task             string
	timesheetProject string
	timesheetTask    string
	timesheetFile    string
}

// NewMappingCommand creates the mapping management command.
func NewMappingCommand() *cobra.Command {
	mc := &MappingCommand{}

	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Manage Clockify-to-timesheet project/task mappings",
	}

	cmd.PersistentFlags().StringVar(&mc.dataDir, "data-dir", "", "Config directory (default: platform config dir)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show configured mappings",
		Args:  cobra.NoArgs,
		RunE:  mc.runList,
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a mapping",
		Long: "Add a mapping from a Clockify project/task pair to timesheet identifiers.\n" +
			"With --timesheet pointing at a saved timesheet snapshot, targets are picked\n" +
			"from numbered menus; otherwise raw IDs are given via flags.",
		Args: cobra.NoArgs,
		RunE: mc.runAdd,
	}

	addCmd.Flags().StringVar(&mc.project, "project", "", "Clockify project name")
	addCmd.Flags().StringVar(&mc.task, "task", "", "Clockify task name (empty = project-wide fallback)")
	addCmd.Flags().StringVar(&mc.timesheetProject, "timesheet-project", "", "Timesheet project ID")
	addCmd.Flags().StringVar(&mc.timesheetTask, "timesheet-task", "", "Timesheet task ID")
	addCmd.Flags().StringVar(&mc.timesheetFile, "timesheet", "", "Timesheet snapshot JSON for interactive selection")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(addCmd)

	return cmd
}

func (mc *MappingCommand) openConfig() (*mapping.Config, error) {
	store, err := storage.NewManager(mc.dataDir)
	if err != nil {
		return nil, err
	}

	return mapping.Load(store)
}

func (mc *MappingCommand) runList(cmd *cobra.Command, _ []string) error {
	cfg, err := mc.openConfig()
	if err != nil {
		return err
	}

	entries := cfg.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No mappings configured.")

		return nil
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(cmd.OutOrStdout())
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Clockify Project", "Clockify Task", "Timesheet Project", "Timesheet Task"})

	for _, e := range entries {
		tbl.AppendRow(table.Row{e.ClockifyProject, e.ClockifyTask, e.TimesheetProjectID, e.TimesheetTaskID})
	}

	tbl.Render()

	return nil
}

func (mc *MappingCommand) runAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := mc.openConfig()
	if err != nil {
		return err
	}

	entry := mapping.Entry{
		ClockifyProject:    mc.project,
		ClockifyTask:       mc.task,
		TimesheetProjectID: mc.timesheetProject,
		TimesheetTaskID:    mc.timesheetTask,
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if entry.ClockifyProject == "" {
		if mc.timesheetFile == "" {
			return ErrMappingFlagsRequired
		}

		entry.ClockifyProject, err = prompt(reader, out, "Clockify project name: ")
		if err != nil {
			return err
		}

		entry.ClockifyTask, err = prompt(reader, out, "Clockify task name (empty for all tasks): ")
		if err != nil {
			return err
		}
	}

	if entry.TimesheetProjectID == "" {
		if mc.timesheetFile == "" {
			return ErrMappingFlagsRequired
		}

		entry.TimesheetProjectID, entry.TimesheetTaskID, err = mc.selectTarget(reader, out)
		if err != nil {
			return err
		}
	}

	err = cfg.Add(entry)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Mapped %s to project %s\n", pairLabel(entry), entry.TimesheetProjectID)

	return nil
}

func pairLabel(entry mapping.Entry) string {
	if entry.ClockifyTask == "" {
		return entry.ClockifyProject
	}

	return entry.ClockifyProject + ":" + entry.ClockifyTask
}

// selectTarget walks the snapshot catalog with numbered menus and returns the
// chosen project and task ids.
func (mc *MappingCommand) selectTarget(reader *bufio.Reader, out io.Writer) (string, string, error) {
	data, err := os.ReadFile(mc.timesheetFile)
	if err != nil {
		return "", "", fmt.Errorf("read timesheet snapshot: %w", err)
	}

	snap, err := timesheet.ParseSnapshot(data)
	if err != nil {
		return "", "", err
	}

	projects := snap.Projects()
	if len(projects) == 0 {
		return "", "", errors.New("timesheet snapshot has no projects")
	}

	fmt.Fprintln(out, "Timesheet projects:")

	for i, p := range projects {
		fmt.Fprintf(out, "  %d. %s\n", i+1, p.Name)
	}

	idx, err := promptIndex(reader, out, "Project number: ", len(projects))
	if err != nil {
		return "", "", err
	}

	project := projects[idx]
	if len(project.Tasks) == 0 {
		return project.ID, "", nil
	}

	fmt.Fprintln(out, "Tasks:")
	fmt.Fprintln(out, "  1. (no task)")

	for i, t := range project.Tasks {
		fmt.Fprintf(out, "  %d. %s\n", i+2, t.Name)
	}

	taskIdx, err := promptIndex(reader, out, "Task number: ", len(project.Tasks)+1)
	if err != nil {
		return "", "", err
	}

	if taskIdx == 0 {
		return project.ID, "", nil
	}

	return project.ID, project.Tasks[taskIdx-1].ID, nil
}
