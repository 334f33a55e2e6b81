package plan

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Target is one concrete document path and every operation to run on it,
// in plan order.
type Target struct {
	Path       string
	Operations []patch.Operation
}

// 🗺️ Targets expands the plan against root: glob documents become one target
// per matching file, and documents naming the same path are merged so each
// path appears once. Targets are returned in first-seen order.
func (p *Plan) Targets(ctx context.Context, root string) ([]Target, error) {
	logger := zerolog.Ctx(ctx)
	if root == "" {
		root = "."
	}

	var targets []Target
	index := map[string]int{}

	for i, d := range p.Documents {
		ops := make([]patch.Operation, 0, len(d.Operations))
		for _, o := range d.Operations {
			op, err := o.Build()
			if err != nil {
				return nil, errors.Errorf("%w: documents[%d]: %s", ErrInvalid, i, err.Error())
			}
			ops = append(ops, op)
		}

		paths := []string{d.Path}
		if d.Glob != "" {
			matches, err := expand(root, d.Glob, d.Ignore)
			if err != nil {
				return nil, errors.Errorf("documents[%d]: %w", i, err)
			}
			if len(matches) == 0 {
				logger.Warn().Str("glob", d.Glob).Str("root", root).Msg("glob matched no documents")
			}
			paths = matches
		}

		for _, path := range paths {
			key := filepath.ToSlash(filepath.Clean(path))
			if at, ok := index[key]; ok {
				targets[at].Operations = append(targets[at].Operations, ops...)
				continue
			}
			index[key] = len(targets)
			targets = append(targets, Target{Path: key, Operations: slices.Clone(ops)})
		}
	}

	return targets, nil
}

// expand returns the files under root matching glob and none of ignore,
// as slash-separated paths relative to root, sorted.
func expand(root, glob string, ignore []string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("expanding glob %q: %w", glob, err)
	}

	out := matches[:0]
	for _, m := range matches {
		skip := false
		for _, ig := range ignore {
			matched, err := doublestar.Match(ig, m)
			if err != nil {
				return nil, errors.Errorf("matching ignore pattern %q: %w", ig, err)
			}
			if matched {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, m)
		}
	}

	slices.Sort(out)
	return out, nil
}
