package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(root *opts.RootOpts) *cobra.Command {
	apply := &opts.ApplyOpts{DryRun: true}

	cmd := &cobra.Command{
		Use:   "check [plan]",
		Short: "Report what a patch plan would do without writing",
		Long: `Check runs the plan entirely in memory and reports each operation.
Nothing is written. It exits non-zero when a critical operation would fail,
which makes it suitable for CI.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())
			return runPlan(ctx, root, apply, root.PlanFile(args), cmd.OutOrStdout())
		},
	}

	addPlanFlags(cmd, apply)

	return cmd
}
