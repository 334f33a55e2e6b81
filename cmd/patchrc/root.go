package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the command tree. Shared state is filled in by
// PersistentPreRunE once flags are parsed.
func newRootCmd(root *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Idempotent anchor-based patching of text files",
		Long: `patchrc applies a declarative plan of text edits to a set of files.
Each edit is located by an anchor and guarded by a marker, so running the
same plan twice leaves the files unchanged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupRoot(cmd, root)
		},
	}

	addRootFlags(cmd, root)

	cmd.AddCommand(commands.NewApplyCmd(root))
	cmd.AddCommand(commands.NewCheckCmd(root))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, root *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&root.ConfigFile, "config", "c", ".patchrc.hcl", "plan file path")
	cmd.PersistentFlags().BoolVarP(&root.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&root.Root, "root", "", "base directory for document paths (default: the plan's directory)")
	cmd.PersistentFlags().StringVarP(&root.Output, "output", "o", "text", "report format: text or json")
}

func setupRoot(cmd *cobra.Command, root *opts.RootOpts) error {
	switch root.Output {
	case "text", "json":
	default:
		return errors.Errorf("invalid --output %q, want text or json", root.Output)
	}

	level := setupLogging(root.Debug, cmd.ErrOrStderr())

	// keep stdout clean for the json report
	console := cmd.OutOrStdout()
	if root.Output == "json" {
		console = cmd.ErrOrStderr()
	}

	ctx := zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger().Level(level).WithContext(cmd.Context())
	root.UserLogger = log.NewUserLoggerTo(ctx, console)
	cmd.SetContext(log.NewContext(ctx, log.New(ctx, console)))
	return nil
}

// setupLogging configures zerolog based on flags
func setupLogging(debug bool, w io.Writer) zerolog.Level {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
		log.EnableDebug()
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(w).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return level
}
