package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/anchor"
	"github.com/walteh/patchrc/pkg/document"
	"github.com/walteh/patchrc/pkg/guard"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/plan"
	"gitlab.com/tozd/go/errors"
)

const original = "import A\nimport B\nfunction f() {\n  return 1\n}\n"

func operations() []patch.Operation {
	return []patch.Operation{
		{
			Name:     "import-c",
			Kind:     patch.InsertAfter,
			Anchor:   anchor.Literal{Text: "import B"},
			Guard:    guard.Unless("import C"),
			Payload:  patch.Static("\nimport C"),
			Critical: true,
		},
		{
			Name:    "return-two",
			Kind:    patch.ReplaceRange,
			Anchor:  anchor.Literal{Text: "return 1"},
			Payload: patch.Static("return 2"),
		},
	}
}

func setup(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func read(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRunner_Run(t *testing.T) {
	const patched = "import A\nimport B\nimport C\nfunction f() {\n  return 2\n}\n"

	tests := []struct {
		name  string
		opts  Options
		check func(t *testing.T, dir string, r *Runner)
	}{
		{
			name: "apply_then_rerun",
			check: func(t *testing.T, dir string, r *Runner) {
				ctx := context.Background()
				targets := []plan.Target{{Path: "src/f.ts", Operations: operations()}}

				summaries, err := r.Run(ctx, targets)
				require.NoError(t, err)
				require.Len(t, summaries, 1)
				assert.True(t, summaries[0].OK)
				assert.True(t, summaries[0].Changed)
				assert.True(t, summaries[0].Saved)
				assert.Equal(t, patched, read(t, dir, "src/f.ts"), "document should be patched")

				summaries, err = r.Run(ctx, targets)
				require.NoError(t, err)
				s := summaries[0]
				assert.False(t, s.Changed, "second run should change nothing")
				assert.False(t, s.Saved, "unchanged documents are not rewritten")
				assert.True(t, s.OK, "non-critical miss keeps the run ok")
				assert.Equal(t, 1, s.Counts[patch.AlreadyApplied])
				assert.Equal(t, 1, s.Counts[patch.AnchorNotFound])
				assert.Equal(t, patched, read(t, dir, "src/f.ts"))
			},
		},
		{
			name: "dry_run_with_diff",
			opts: Options{DryRun: true, Diff: true, DiffContext: -1},
			check: func(t *testing.T, dir string, r *Runner) {
				summaries, err := r.Run(context.Background(), []plan.Target{{Path: "src/f.ts", Operations: operations()}})
				require.NoError(t, err)
				s := summaries[0]
				assert.True(t, s.Changed)
				assert.False(t, s.Saved, "dry run never saves")
				assert.Contains(t, s.Diff, "+import C\n")
				assert.Contains(t, s.Diff, "-  return 1\n+  return 2\n")
				assert.Equal(t, original, read(t, dir, "src/f.ts"), "dry run should not write")
			},
		},
		{
			name: "backup",
			opts: Options{Backup: true},
			check: func(t *testing.T, dir string, r *Runner) {
				summaries, err := r.Run(context.Background(), []plan.Target{{Path: "src/f.ts", Operations: operations()}})
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(dir, "src/f.ts.bak"), summaries[0].Backup)
				assert.Equal(t, original, read(t, dir, "src/f.ts.bak"))
				assert.Equal(t, patched, read(t, dir, "src/f.ts"))
			},
		},
		{
			name: "critical_miss_still_saves_other_edits",
			check: func(t *testing.T, dir string, r *Runner) {
				ops := append(operations(), patch.Operation{
					Name:     "missing",
					Kind:     patch.InsertBefore,
					Anchor:   anchor.Literal{Text: "function g()"},
					Payload:  patch.Static("// g\n"),
					Critical: true,
				})
				summaries, err := r.Run(context.Background(), []plan.Target{{Path: "src/f.ts", Operations: ops}})
				require.NoError(t, err, "operation misses are not run errors")
				assert.False(t, summaries[0].OK)
				assert.Equal(t, 1, summaries[0].Failures())
				assert.Equal(t, patched, read(t, dir, "src/f.ts"))
			},
		},
		{
			name: "missing_document_aborts",
			check: func(t *testing.T, dir string, r *Runner) {
				summaries, err := r.Run(context.Background(), []plan.Target{
					{Path: "src/f.ts", Operations: operations()},
					{Path: "src/missing.ts", Operations: operations()},
				})
				require.Error(t, err)
				assert.True(t, errors.Is(err, document.ErrNotFound))
				require.Len(t, summaries, 2)
				assert.True(t, summaries[0].OK)
				assert.False(t, summaries[1].OK)
				assert.Error(t, summaries[1].Err)
			},
		},
		{
			name: "parallel_jobs",
			opts: Options{Jobs: 4},
			check: func(t *testing.T, dir string, r *Runner) {
				var targets []plan.Target
				for i := 0; i < 8; i++ {
					name := fmt.Sprintf("src/gen/%d.ts", i)
					require.NoError(t, os.MkdirAll(filepath.Join(dir, "src/gen"), 0o755))
					require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(original), 0o644))
					targets = append(targets, plan.Target{Path: name, Operations: operations()})
				}

				summaries, err := r.Run(context.Background(), targets)
				require.NoError(t, err)
				require.Len(t, summaries, 8)
				for i, s := range summaries {
					assert.Equal(t, targets[i].Path, s.Path, "summaries keep target order")
					assert.Equal(t, patched, read(t, dir, s.Path))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setup(t, map[string]string{"src/f.ts": original})
			r := New(document.NewStore(dir), nil, tt.opts)
			tt.check(t, dir, r)
		})
	}
}

func TestRunner_Cancelled(t *testing.T) {
	dir := setup(t, map[string]string{"src/f.ts": original})
	r := New(document.NewStore(dir), nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := r.Run(ctx, []plan.Target{{Path: "src/f.ts", Operations: operations()}})
	require.Error(t, err, "skipped documents must not look like success")
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Empty(t, summaries, "nothing was started")
	assert.Equal(t, original, read(t, dir, "src/f.ts"))
}

func TestRunner_NoTargets(t *testing.T) {
	r := New(document.NewStore(t.TempDir()), nil, Options{})

	summaries, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestRunner_UserEvents(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	dir := setup(t, map[string]string{"src/f.ts": original})

	buf := &bytes.Buffer{}
	user := log.NewUserLoggerTo(context.Background(), buf)
	r := New(document.NewStore(dir), user, Options{})

	_, err := r.Run(context.Background(), []plan.Target{{Path: "src/f.ts", Operations: operations()}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Saved src/f.ts (2 applied)")
}

func TestRunner_Plan(t *testing.T) {
	dir := setup(t, map[string]string{"src/f.ts": original})

	p, err := plan.Load(context.Background(), "../plan/testdata/minimal.json", plan.Options{})
	require.NoError(t, err)
	targets, err := p.Targets(context.Background(), dir)
	require.NoError(t, err)

	summaries, err := New(document.NewStore(dir), nil, Options{}).Run(context.Background(), targets)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].OK)
	assert.Equal(t, "import A\nimport B\nimport C\nfunction f() {\n  return 2\n}\n", read(t, dir, "src/f.ts"))
}
