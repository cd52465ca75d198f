package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfell/rungine/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	List     bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded scan traces",
		Long: `Read a scan trace database written by "rungine run --trace-db".

Without flags, dumps the scans of the most recent run. Use --list to
enumerate runs, or --run to dump a specific one.

Example:
  rungine trace --db ./scans.db --list
  rungine trace --db ./scans.db --run 0190f3a2-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite scan trace database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run token to dump (default: latest)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded runs instead of dumping scans")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	store, err := trace.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if opts.List {
		runs, err := store.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to list runs", err)
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %s  period=%s  started=%s\n", r.ID, r.Program, r.ScanPeriod, r.StartedAt)
		}
		return nil
	}

	runID := opts.RunID
	if runID == "" {
		latest, err := store.LatestRun(ctx)
		if errors.Is(err, trace.ErrNoRuns) {
			return WrapExitError(ExitFailure, "trace database has no recorded runs", nil)
		}
		if err != nil {
			return WrapExitError(ExitFailure, "failed to find latest run", err)
		}
		runID = latest.ID
	}

	scans, err := store.ReadScans(ctx, runID)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read scans", err)
	}

	for _, rec := range scans {
		payload, err := trace.MarshalImage(rec.Outputs)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to render scan", err)
		}
		marker := " "
		if rec.Overrun {
			marker = "!"
		}
		fmt.Fprintf(out, "%6d %s %s\n", rec.Seq, marker, payload)
	}
	return nil
}
