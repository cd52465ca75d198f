package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfell/rungine/internal/engine"
	"github.com/mfell/rungine/internal/gateway"
	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/loader"
	"github.com/mfell/rungine/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	PeriodMs  int
	TraceDB   string
	ModbusURL string
	ModbusMap string
	Stopped   bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program.yaml>",
		Short: "Load a program and start the scan cycle",
		Long: `Load a ladder program, validate it, and run the scan scheduler.

The engine scans at a fixed period (default 100 ms). With --modbus the
I/O image is served over Modbus TCP so external masters can write
inputs and read outputs. With --trace-db every committed scan is
recorded to a SQLite log for later inspection with "rungine trace".

Example:
  rungine run examples/motor.yaml
  rungine run examples/motor.yaml --period 50 --modbus tcp://0.0.0.0:5502 --modbus-map examples/motor.map.yaml
  rungine run examples/motor.yaml --trace-db ./scans.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.PeriodMs, "period", 100, "scan period in milliseconds")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "path to SQLite scan trace database")
	cmd.Flags().StringVar(&opts.ModbusURL, "modbus", "", "Modbus TCP listen URL (e.g. tcp://0.0.0.0:5502)")
	cmd.Flags().StringVar(&opts.ModbusMap, "modbus-map", "", "path to Modbus address mapping YAML (required with --modbus)")
	cmd.Flags().BoolVar(&opts.Stopped, "stopped", false, "start in STOPPED mode instead of RUNNING")

	return cmd
}

func runEngine(opts *RunOptions, programPath string, cmd *cobra.Command) error {
	prog, err := loader.Load(programPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load program", err)
	}
	slog.Info("program loaded", "name", prog.Name, "rungs", len(prog.Rungs))

	table := image.NewTable()
	period := time.Duration(opts.PeriodMs) * time.Millisecond

	schedOpts := []engine.Option{engine.WithPeriod(period)}

	// Optional scan recorder.
	if opts.TraceDB != "" {
		store, err := trace.Open(opts.TraceDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("error closing trace database", "error", closeErr)
			}
		}()

		runID, err := store.BeginRun(context.Background(), prog.Name, period)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to begin trace run", err)
		}
		slog.Info("scan trace recording", "db", opts.TraceDB, "run", runID)
		schedOpts = append(schedOpts, engine.WithObserver(trace.NewRecorder(store, runID)))
	}

	sched := engine.NewScheduler(table, schedOpts...)
	if err := sched.Load(prog); err != nil {
		return WrapExitError(ExitFailure, "program rejected", err)
	}

	// Optional Modbus gateway.
	if opts.ModbusURL != "" {
		if opts.ModbusMap == "" {
			return WrapExitError(ExitCommandError, "--modbus requires --modbus-map", nil)
		}
		mapping, err := gateway.LoadMapping(opts.ModbusMap)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load Modbus mapping", err)
		}
		gw := gateway.New(table, mapping)
		if err := gw.Start(opts.ModbusURL, 5); err != nil {
			return WrapExitError(ExitCommandError, "failed to start Modbus gateway", err)
		}
		defer func() {
			if stopErr := gw.Stop(); stopErr != nil {
				slog.Error("error stopping Modbus gateway", "error", stopErr)
			}
		}()
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if !opts.Stopped {
		sched.Start()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Scanning %q every %s. Press Ctrl-C to stop.\n", prog.Name, period)

	err = sched.Run(ctx)
	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return WrapExitError(ExitFailure, "scheduler error", err)
	}

	tel := sched.Telemetry()
	slog.Info("scheduler stopped",
		"scans", tel.ScanCount,
		"overruns", tel.OverrunCount,
		"unknown_kinds", tel.UnknownKinds,
		"type_mismatches", tel.TypeMismatches,
	)
	return nil
}
