package commands

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/document"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/plan"
	"github.com/walteh/patchrc/pkg/report"
	"github.com/walteh/patchrc/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

// ErrFailed is returned when the run finished but a critical operation or a
// document failed. The report already explains why.
var ErrFailed = errors.Base("patch run failed")

// ParseVars turns key=value flags into a variable map.
func ParseVars(vars []string) (map[string]string, error) {
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid variable %q, want key=value", v)
		}
		out[key] = value
	}
	return out, nil
}

// runPlan loads the plan, patches every target and writes the report to out.
func runPlan(ctx context.Context, root *opts.RootOpts, apply *opts.ApplyOpts, planFile string, out io.Writer) error {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	vars, err := ParseVars(apply.Vars)
	if err != nil {
		return err
	}

	p, err := plan.Load(ctx, planFile, plan.Options{Variables: vars})
	if err != nil {
		return errors.Errorf("loading plan %s: %w", planFile, err)
	}

	base := root.BaseDir(planFile)
	targets, err := p.Targets(ctx, base)
	if err != nil {
		return errors.Errorf("expanding plan targets: %w", err)
	}

	console.StartPlan(ctx, log.PlanRun{
		Path:       planFile,
		Hash:       p.Hash(),
		Documents:  len(targets),
		Operations: p.Operations(),
		DryRun:     apply.DryRun,
	})
	if len(targets) == 0 {
		console.Warningf("plan %s matched no documents", planFile)
	}
	if apply.DryRun {
		console.Infof("dry run, no documents will be written")
	}

	r := runner.New(document.NewStore(base), root.UserLogger, runner.Options{
		DryRun:      apply.DryRun,
		Backup:      apply.Backup,
		Diff:        apply.Diff,
		DiffContext: -1,
		Jobs:        apply.Jobs,
	})

	summaries, runErr := r.Run(ctx, targets)
	if runErr != nil {
		logger.Debug().Err(runErr).Msg("run aborted")
	}

	for _, s := range summaries {
		for _, l := range s.Lines {
			if l.PreconditionMissing() && l.Severity == report.Warning {
				console.Warningf("%s: %s skipped: %s", s.Path, l.Operation, l.Detail)
			}
		}
	}

	ok := runErr == nil && report.AllOK(summaries...)
	console.EndPlan(ctx, ok)

	switch root.Output {
	case "json":
		err = report.WriteJSON(out, summaries...)
	default:
		err = report.WriteText(out, summaries...)
	}
	if err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if !ok {
		return ErrFailed
	}
	return nil
}
