package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/worklog-tools/worklog/internal/bamboohr"
	"github.com/worklog-tools/worklog/internal/config"
	"github.com/worklog-tools/worklog/internal/importer"
	"github.com/worklog-tools/worklog/internal/render"
	"github.com/worklog-tools/worklog/internal/timesheet"
)

// ErrFileSnapshotSubmit is returned when submission is attempted against a
// snapshot loaded from a file instead of a live session.
var ErrFileSnapshotSubmit = errors.New(
	"submitting requires a live timesheet session; drop --timesheet or add --dry-run")

// submissionClient is the slice of the timesheet host client the import
// command uses.
type submissionClient interface {
	Snapshot(ctx context.Context) (*timesheet.Snapshot, string, error)
	Submit(ctx context.Context, token string, records []bamboohr.Record) (bamboohr.SubmitResult, error)
}

type submissionFactory func(cfg *config.Config) submissionClient

// ImportCommand holds configuration and dependencies for the import command.
type ImportCommand struct {
	configPath      string
	input           string
	timesheetFile   string
	includeWarnings bool
	dryRun          bool
	yes             bool

	newClient submissionFactory
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	return newImportCommandWithDeps(func(cfg *config.Config) submissionClient {
		return bamboohr.NewClient(cfg.Timesheet.BaseURL, cfg.Timesheet.Session,
			bamboohr.WithLogger(slog.Default()))
	})
}

func newImportCommandWithDeps(newClient submissionFactory) *cobra.Command {
	ic := &ImportCommand{newClient: newClient}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Review a payload and submit the accepted entries",
		Long: "Classify a payload against the timesheet, show the review table, and\n" +
			"submit the Ready (and optionally Warning) entries in one bulk call.",
		Args: cobra.NoArgs,
		RunE: ic.run,
	}

	cmd.Flags().StringVar(&ic.configPath, "config", "", "Config file path (default: .worklog.yaml in CWD or $HOME)")
	cmd.Flags().StringVarP(&ic.input, "input", "i", "", "Payload JSON file")
	cmd.Flags().StringVarP(&ic.timesheetFile, "timesheet", "t", "",
		"Timesheet snapshot JSON file (review only, implies no submission)")
	cmd.Flags().BoolVar(&ic.includeWarnings, "include-warnings", false, "Also submit Warning entries")
	cmd.Flags().BoolVar(&ic.dryRun, "dry-run", false, "Classify and report without submitting")
	cmd.Flags().BoolVarP(&ic.yes, "yes", "y", false, "Skip the confirmation prompt")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (ic *ImportCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(ic.configPath)
	if err != nil {
		return err
	}

	if ic.timesheetFile != "" && !ic.dryRun {
		return ErrFileSnapshotSubmit
	}

	snap, token, client, err := ic.resolveSnapshot(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(ic.input)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	classified, err := importer.Run(payload, snap)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	render.ReviewTable(out, classified, snap)

	policy := importer.PolicyReadyOnly
	if ic.includeWarnings || cfg.Import.IncludeWarnings {
		policy = importer.PolicyReadyAndWarning
	}

	selected := importer.Select(classified, policy)
	if len(selected) == 0 {
		fmt.Fprintln(out, "Nothing to submit.")

		return nil
	}

	if ic.dryRun {
		fmt.Fprintf(out, "Dry run: %d entries would be submitted.\n", len(selected))

		return nil
	}

	if !ic.yes {
		ok, confirmErr := confirm(bufio.NewReader(cmd.InOrStdin()), out,
			fmt.Sprintf("Submit %d entries? [y/N]: ", len(selected)))
		if confirmErr != nil {
			return confirmErr
		}

		if !ok {
			fmt.Fprintln(out, "Aborted.")

			return nil
		}
	}

	records := bamboohr.BuildRecords(cfg.Timesheet.EmployeeID, selected)

	result, err := client.Submit(cmd.Context(), token, records)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "Submitted %d entries (run %s)\n", result.Accepted, result.RunID)

	return nil
}

// resolveSnapshot loads the snapshot from the given file or fetches it (with
// the submission token) from the live timesheet session.
func (ic *ImportCommand) resolveSnapshot(
	ctx context.Context, cfg *config.Config,
) (*timesheet.Snapshot, string, submissionClient, error) {
	if ic.timesheetFile != "" {
		data, err := os.ReadFile(ic.timesheetFile)
		if err != nil {
			return nil, "", nil, fmt.Errorf("read timesheet snapshot: %w", err)
		}

		snap, err := timesheet.ParseSnapshot(data)
		if err != nil {
			return nil, "", nil, err
		}

		return snap, "", nil, nil
	}

	if err := cfg.RequireTimesheet(); err != nil {
		return nil, "", nil, err
	}

	client := ic.newClient(cfg)

	snap, token, err := client.Snapshot(ctx)
	if err != nil {
		return nil, "", nil, err
	}

	return snap, token, client, nil
}
