package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/worklog-tools/worklog/internal/importer"
	"github.com/worklog-tools/worklog/internal/render"
	"github.com/worklog-tools/worklog/internal/timesheet"
)

// Preview output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatPlot  = "plot"
)

// defaultPlotFile receives the chart HTML when no output is given.
const defaultPlotFile = "worklog-preview.html"

// ErrUnknownFormat indicates an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown format: use table, json, or plot")

// PreviewCommand holds configuration for the preview command.
type PreviewCommand struct {
	input         string
	timesheetFile string
	format        string
	output        string
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	pc := &PreviewCommand{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Classify a payload against a timesheet snapshot",
		Long: "Run the import pipeline on a payload file and render the classified\n" +
			"entries without submitting anything.",
		Args: cobra.NoArgs,
		RunE: pc.run,
	}

	cmd.Flags().StringVarP(&pc.input, "input", "i", "", "Payload JSON file")
	cmd.Flags().StringVarP(&pc.timesheetFile, "timesheet", "t", "", "Timesheet snapshot JSON file")
	cmd.Flags().StringVarP(&pc.format, "format", "f", formatTable, "Output format: table, json, plot")
	cmd.Flags().StringVarP(&pc.output, "output", "o", "", "Chart file for --format plot (default: "+defaultPlotFile+")")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("timesheet")

	return cmd
}

func (pc *PreviewCommand) run(cmd *cobra.Command, _ []string) error {
	classified, snap, err := classifyFiles(pc.input, pc.timesheetFile)
	if err != nil {
		return err
	}

	switch pc.format {
	case formatTable:
		render.ReviewTable(cmd.OutOrStdout(), classified, snap)

		return nil
	case formatJSON:
		return render.ReviewJSON(cmd.OutOrStdout(), classified)
	case formatPlot:
		return pc.writePlot(cmd, classified)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, pc.format)
	}
}

func (pc *PreviewCommand) writePlot(cmd *cobra.Command, classified []importer.ClassifiedEntry) error {
	path := pc.output
	if path == "" {
		path = defaultPlotFile
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer file.Close()

	if err = render.DailyHoursChart(file, classified); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Chart written to %s\n", path)

	return nil
}

// classifyFiles runs the pipeline on a payload file against a snapshot file.
func classifyFiles(inputPath, timesheetPath string) ([]importer.ClassifiedEntry, *timesheet.Snapshot, error) {
	payload, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read payload: %w", err)
	}

	snapData, err := os.ReadFile(timesheetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read timesheet snapshot: %w", err)
	}

	snap, err := timesheet.ParseSnapshot(snapData)
	if err != nil {
		return nil, nil, err
	}

	classified, err := importer.Run(payload, snap)
	if err != nil {
		return nil, nil, err
	}

	return classified, snap, nil
}
