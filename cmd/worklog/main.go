// Package main provides the entry point for the worklog CLI tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"

	"github.com/worklog-tools/worklog/cmd/worklog/commands"
	"github.com/worklog-tools/worklog/pkg/observability"
	"github.com/worklog-tools/worklog/pkg/version"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	providers, err := setupTelemetry()
	if err != nil {
		return err
	}
	defer providers.Shutdown(context.Background()) //nolint:errcheck // flush on exit is best effort.

	ctx, span := providers.Tracer.Start(context.Background(), "worklog.run")
	defer span.End()

	err = newRootCommand().ExecuteContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

// setupTelemetry initializes tracing, metrics, and logging from the
// environment and installs the context-aware logger as the process default,
// so every slog.Default() call site emits enriched records.
func setupTelemetry() (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = os.Getenv("WORKLOG_OTLP_ENDPOINT")
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, err
	}

	slog.SetDefault(providers.Logger)

	return providers, nil
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "worklog",
		Short: "Worklog - Clockify to timesheet reconciliation",
		Long: `Worklog exports Clockify time entries, classifies them against the
timesheet period, and submits the accepted entries.

Commands:
  setup     Configure Clockify and timesheet access
  mapping   Manage project/task mappings
  export    Build an import payload from Clockify
  preview   Classify a payload without submitting
  import    Review and submit a payload`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewSetupCommand())
	rootCmd.AddCommand(commands.NewMappingCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewPreviewCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
