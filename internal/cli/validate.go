package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfell/rungine/internal/engine"
	"github.com/mfell/rungine/internal/loader"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <program.yaml>",
		Short: "Validate a program without running it",
		Long: `Load a ladder program and run every load-time check: schema
validation, strict field decoding, and the single-driver invariant.
Prints the resolved rung execution order on success.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], cmd)
		},
	}

	return cmd
}

func runValidate(programPath string, cmd *cobra.Command) error {
	prog, err := loader.Load(programPath)
	if err != nil {
		return WrapExitError(ExitFailure, "program invalid", err)
	}

	order := engine.Resolve(prog)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: valid (%d rungs)\n", programPath, len(prog.Rungs))
	fmt.Fprintf(out, "execution order: %v\n", order)
	return nil
}
