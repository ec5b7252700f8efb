package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineus/simplestore/internal/registry"
	"github.com/lineus/simplestore/internal/seedspec"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <spec.cue>",
		Short: "Validate a CUE seed spec",
		Long: `Validate a CUE seed spec.

Compiles the store definition and resolves its mutation and action names
against the builtin registry, without constructing a store.

Example:
  simplestore validate demo/counter.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateSpec(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

// validateResult is the JSON payload for a successful validation.
type validateResult struct {
	Store     string   `json:"store"`
	DataKeys  int      `json:"data_keys"`
	Mutations []string `json:"mutations,omitempty"`
	Actions   []string `json:"actions,omitempty"`
}

func validateSpec(opts *RootOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "spec file not accessible", err)
	}

	spec, err := seedspec.CompileFile(path)
	if err != nil {
		return WrapExitError(ExitFailure, "spec is invalid", err)
	}

	// Resolving through the registry catches unknown builtin names.
	if _, err := spec.Seed(registry.Builtin()); err != nil {
		return WrapExitError(ExitFailure, "spec is invalid", err)
	}

	if opts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), validateResult{
			Store:     spec.Name,
			DataKeys:  len(spec.Data),
			Mutations: spec.Mutations,
			Actions:   spec.Actions,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: store %q (%d data keys, %d mutations, %d actions)\n",
		spec.Name, len(spec.Data), len(spec.Mutations), len(spec.Actions))
	return nil
}
