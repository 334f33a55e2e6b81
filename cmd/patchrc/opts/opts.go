package opts

import (
	"path/filepath"

	"github.com/walteh/patchrc/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Root       string
	Output     string
	Debug      bool

	UserLogger *log.UserLogger
}

// PlanFile returns args[0] when given, the --config flag otherwise.
func (o *RootOpts) PlanFile(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return o.ConfigFile
}

// BaseDir is --root, or the directory holding the plan file.
func (o *RootOpts) BaseDir(planFile string) string {
	if o.Root != "" {
		return o.Root
	}
	return filepath.Dir(planFile)
}

// ApplyOpts contains options for apply and check
type ApplyOpts struct {
	DryRun bool
	Diff   bool
	Backup bool
	Jobs   int
	Vars   []string
}
