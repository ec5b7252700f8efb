package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineus/simplestore/internal/script"
	"github.com/lineus/simplestore/internal/tracelog"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	TraceDB string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scripted scenario against a guarded store",
		Long: `Run a scripted scenario against a guarded store.

The scenario names a CUE seed spec and a list of steps (commits, actions,
reads, writes) with expectations. Optionally every store dispatch is
recorded to a SQLite trace database for later inspection with the trace
command.

Example:
  simplestore run demo/counter.yaml
  simplestore run demo/counter.yaml --trace-db ./trace.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "path to SQLite trace database (optional)")

	return cmd
}

func runScenario(opts *RunOptions, scenarioPath string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	sc, err := script.Load(scenarioPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	runOpts := []script.RunOption{script.WithLogger(logger)}
	if opts.TraceDB != "" {
		l, err := tracelog.Open(opts.TraceDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer func() {
			if closeErr := l.Close(); closeErr != nil {
				logger.Error("error closing trace database", "error", closeErr)
			}
		}()
		runOpts = append(runOpts, script.WithTraceLog(l))
	}

	result, err := script.Run(cmd.Context(), sc, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if opts.Format == "json" {
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode result", err)
		}
	} else {
		printRunText(cmd, sc.Name, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed", sc.Name))
	}
	return nil
}

func printRunText(cmd *cobra.Command, name string, result *script.Result) {
	out := cmd.OutOrStdout()
	status := "PASS"
	if !result.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(out, "scenario %s: %s (%d steps)\n", name, status, len(result.Trace))
	for _, msg := range result.Errors {
		fmt.Fprintf(out, "  - %s\n", msg)
	}
}
