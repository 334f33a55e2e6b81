package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(root *opts.RootOpts) *cobra.Command {
	apply := &opts.ApplyOpts{}

	cmd := &cobra.Command{
		Use:   "apply [plan]",
		Short: "Apply a patch plan to its documents",
		Long: `Apply runs every operation of the plan against its documents.
It will:
1. Load and validate the plan
2. Load each target document once
3. Apply its operations in order, skipping any already applied
4. Save documents that changed
5. Report every operation and exit non-zero if a critical one failed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "apply").Logger().WithContext(cmd.Context())
			return runPlan(ctx, root, apply, root.PlanFile(args), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&apply.DryRun, "dry-run", false, "run in memory and report without writing")
	addPlanFlags(cmd, apply)
	cmd.Flags().BoolVar(&apply.Backup, "backup", false, "write <path>.bak before saving a changed document")

	return cmd
}

func addPlanFlags(cmd *cobra.Command, apply *opts.ApplyOpts) {
	cmd.Flags().BoolVar(&apply.Diff, "diff", false, "show a unified diff of each changed document")
	cmd.Flags().IntVar(&apply.Jobs, "jobs", 1, "documents to process concurrently")
	cmd.Flags().StringArrayVar(&apply.Vars, "var", nil, "plan variable as key=value (repeatable)")
}
