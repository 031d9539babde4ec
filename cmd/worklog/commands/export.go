package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/worklog-tools/worklog/internal/clockify"
	"github.com/worklog-tools/worklog/internal/config"
	"github.com/worklog-tools/worklog/internal/export"
	"github.com/worklog-tools/worklog/internal/mapping"
	"github.com/worklog-tools/worklog/internal/storage"
)

// rangeDateLayout is the format of the --from/--to flags.
const rangeDateLayout = "2006-01-02"

// exportFilePerm is the permission for written payload files.
const exportFilePerm = 0o644

// ErrFromRequired is returned when the export range start is missing.
var ErrFromRequired = errors.New("--from is required (YYYY-MM-DD)")

// clockifySource is the slice of the Clockify client the export command uses.
type clockifySource interface {
	CurrentUser(ctx context.Context) (clockify.User, error)
	Projects(ctx context.Context, workspaceID string) ([]clockify.Project, error)
	Tasks(ctx context.Context, workspaceID, projectID string) ([]clockify.Task, error)
	TimeEntries(ctx context.Context, workspaceID, userID string, start, end time.Time) ([]clockify.TimeEntry, error)
}

type sourceFactory func(apiKey string) clockifySource

// ExportCommand holds configuration and dependencies for the export command.
type ExportCommand struct {
	configPath string
	dataDir    string
	from       string
	to         string
	output     string

	newSource sourceFactory
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	return newExportCommandWithDeps(func(apiKey string) clockifySource {
		return clockify.NewClient(apiKey, clockify.WithLogger(slog.Default()))
	})
}

func newExportCommandWithDeps(newSource sourceFactory) *cobra.Command {
	ec := &ExportCommand{newSource: newSource}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build an import payload from Clockify time entries",
		Long: "Fetch time entries from Clockify for a date range, apply the project/task\n" +
			"mapping, and write the import payload JSON.",
		Args: cobra.NoArgs,
		RunE: ec.run,
	}

	cmd.Flags().StringVar(&ec.configPath, "config", "", "Config file path (default: .worklog.yaml in CWD or $HOME)")
	cmd.Flags().StringVar(&ec.dataDir, "data-dir", "", "Config directory (default: platform config dir)")
	cmd.Flags().StringVar(&ec.from, "from", "", "Range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ec.to, "to", "", "Range end date, inclusive (default: today)")
	cmd.Flags().StringVarP(&ec.output, "output", "o", "", "Payload file to write (default: stdout)")

	return cmd
}

func (ec *ExportCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(ec.configPath)
	if err != nil {
		return err
	}

	if err = cfg.RequireClockify(); err != nil {
		return err
	}

	from, to, err := ec.parseRange()
	if err != nil {
		return err
	}

	store, err := storage.NewManager(ec.dataDir)
	if err != nil {
		return err
	}

	mappingCfg, err := mapping.Load(store)
	if err != nil {
		return err
	}

	result, err := ec.build(cmd.Context(), cfg, mappingCfg, from, to)
	if err != nil {
		return err
	}

	ec.reportIssues(cmd, result)

	payload := export.NewPayload(result, from, to)

	if err = ec.writePayload(cmd, payload); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries (%d skipped)\n", len(result.Entries), result.Skipped)

	return store.SaveState(storage.State{LastExport: time.Now().UTC()})
}

func (ec *ExportCommand) parseRange() (from, to time.Time, err error) {
	if ec.from == "" {
		return time.Time{}, time.Time{}, ErrFromRequired
	}

	from, err = time.Parse(rangeDateLayout, ec.from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse --from: %w", err)
	}

	if ec.to == "" {
		to = time.Now().UTC().Truncate(24 * time.Hour)
	} else {
		to, err = time.Parse(rangeDateLayout, ec.to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --to: %w", err)
		}
	}

	return from, to, nil
}

// build fetches everything the export needs from Clockify and runs the
// payload builder.
func (ec *ExportCommand) build(
	ctx context.Context,
	cfg *config.Config,
	mappingCfg *mapping.Config,
	from, to time.Time,
) (export.Result, error) {
	source := ec.newSource(cfg.Clockify.APIKey)

	user, err := source.CurrentUser(ctx)
	if err != nil {
		return export.Result{}, err
	}

	workspaceID := cfg.Clockify.Workspace
	if workspaceID == "" {
		workspaceID = user.DefaultWorkspace
	}

	projects, err := source.Projects(ctx, workspaceID)
	if err != nil {
		return export.Result{}, err
	}

	projectNames := make(map[string]string, len(projects))
	taskNames := make(map[string]string)

	for _, p := range projects {
		projectNames[p.ID] = p.Name

		tasks, taskErr := source.Tasks(ctx, workspaceID, p.ID)
		if taskErr != nil {
			return export.Result{}, taskErr
		}

		for _, t := range tasks {
			taskNames[t.ID] = t.Name
		}
	}

	// The range end is inclusive, so fetch up to the following midnight.
	entries, err := source.TimeEntries(ctx, workspaceID, user.ID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return export.Result{}, err
	}

	loc, err := ec.resolveLocation(cfg, user)
	if err != nil {
		return export.Result{}, err
	}

	return export.Build(entries, projectNames, taskNames, mappingCfg, loc)
}

// resolveLocation prefers an explicitly configured timezone; with the
// default in place the Clockify profile timezone wins.
func (ec *ExportCommand) resolveLocation(cfg *config.Config, user clockify.User) (*time.Location, error) {
	if cfg.Export.Timezone == config.DefaultTimezone && user.Settings.TimeZone != "" {
		loc, err := time.LoadLocation(user.Settings.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("clockify profile timezone: %w", err)
		}

		return loc, nil
	}

	return cfg.Location()
}

func (ec *ExportCommand) reportIssues(cmd *cobra.Command, result export.Result) {
	errOut := cmd.ErrOrStderr()

	for _, warning := range result.Warnings {
		color.New(color.FgYellow).Fprintf(errOut, "Warning: %s\n", warning)
	}

	for _, key := range result.Unmapped {
		color.New(color.FgRed).Fprintf(errOut, "Unmapped: %s\n", key)
	}
}

func (ec *ExportCommand) writePayload(cmd *cobra.Command, payload export.Payload) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	data = append(data, '\n')

	if ec.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		if err != nil {
			return fmt.Errorf("write payload: %w", err)
		}

		return nil
	}

	err = os.WriteFile(ec.output, data, exportFilePerm)
	if err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	return nil
}
