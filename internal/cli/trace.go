package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineus/simplestore/internal/tracelog"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Token string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <db>",
		Short: "Inspect a recorded dispatch trace",
		Long: `Inspect a recorded dispatch trace.

Reads dispatches from a trace database written by "run --trace-db" and
prints them in order, optionally filtered to a single store token.

Example:
  simplestore trace trace.db --token scenario-counter`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "only show dispatches for this store token")

	return cmd
}

func showTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "trace database not accessible", err)
	}

	log, err := tracelog.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer log.Close()

	ctx := cmd.Context()

	var dispatches []tracelog.Dispatch
	if opts.Token != "" {
		dispatches, err = log.ReadByToken(ctx, opts.Token)
	} else {
		dispatches, err = log.ReadAll(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read dispatches", err)
	}

	if opts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), dispatches)
	}

	printTraceText(cmd, dispatches)
	return nil
}

func printTraceText(cmd *cobra.Command, dispatches []tracelog.Dispatch) {
	out := cmd.OutOrStdout()
	if len(dispatches) == 0 {
		fmt.Fprintln(out, "no dispatches recorded")
		return
	}
	for _, d := range dispatches {
		fmt.Fprintf(out, "%4d  %-10s  %-7s  %-16s  value=%s  result=%s",
			d.Seq, d.StoreToken, d.Kind, d.Name, d.Value, d.Result)
		if d.Err != "" {
			fmt.Fprintf(out, "  err=%s", d.Err)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d dispatch(es)\n", len(dispatches))
}
