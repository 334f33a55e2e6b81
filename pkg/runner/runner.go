// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package runner drives a patch run: for each target document it loads the
// file, applies its operations in order, writes it back when something
// changed and reports the outcome.
package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/diff"
	"github.com/walteh/patchrc/pkg/document"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/plan"
	"github.com/walteh/patchrc/pkg/report"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ⚙️ Options control how documents are written
type Options struct {
	// DryRun runs everything in memory and never writes.
	DryRun bool
	// Backup writes <path>.bak with the original content before saving.
	Backup bool
	// Diff attaches a unified diff to each changed document's summary.
	Diff bool
	// DiffContext is the number of context lines in diffs; negative means default.
	DiffContext int
	// Jobs bounds how many documents are processed at once. Values below 1 mean 1.
	Jobs int
}

// 🏃 Runner executes plan targets against a document store
type Runner struct {
	store *document.Store
	user  *log.UserLogger
	opts  Options
}

// 🏗️ New creates a new runner. user may be nil.
func New(store *document.Store, user *log.UserLogger, opts Options) *Runner {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Runner{
		store: store,
		user:  user,
		opts:  opts,
	}
}

// 🏃 Run processes every target and returns their summaries in target order.
// Operation misses are reported, never returned. A document that cannot be
// loaded or saved aborts the run: the error is returned, documents not yet
// started are skipped and the summaries of those already handled are still
// returned. Cancelling ctx skips the remaining documents the same way and
// returns ctx.Err().
func (r *Runner) Run(ctx context.Context, targets []plan.Target) ([]report.Summary, error) {
	summaries := make([]report.Summary, len(targets))
	started := make([]bool, len(targets))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Jobs)

	for i, t := range targets {
		eg.Go(func() error {
			if egCtx.Err() != nil {
				return nil
			}
			started[i] = true
			s, err := r.RunDocument(egCtx, t)
			summaries[i] = s
			return err
		})
	}

	err := eg.Wait()

	out := make([]report.Summary, 0, len(targets))
	for i := range targets {
		if started[i] {
			out = append(out, summaries[i])
		}
	}

	if err == nil && len(out) < len(targets) {
		// documents were skipped because the caller cancelled
		err = ctx.Err()
	}
	if err != nil {
		return out, errors.Errorf("running plan: %w", err)
	}
	return out, nil
}

// 📄 RunDocument loads one target, applies its operations and saves it if it
// changed.
func (r *Runner) RunDocument(ctx context.Context, t plan.Target) (report.Summary, error) {
	logger := zerolog.Ctx(ctx).With().Str("document", t.Path).Logger()
	ctx = logger.WithContext(ctx)

	doc, err := r.store.Load(ctx, t.Path)
	if err != nil {
		r.event(log.DocumentEvent{Type: log.DocumentError, Path: t.Path, Error: err})
		return report.Failed(t.Path, err), err
	}
	r.event(log.DocumentEvent{Type: log.DocumentLoaded, Path: t.Path, Description: fmt.Sprintf("%d lines", doc.Lines())})

	results := patch.ApplyAll(ctx, doc, t.Operations)
	summary := report.Report(t.Path, results)

	if err := ctx.Err(); err != nil {
		// the run was cancelled mid-document; leave the file alone
		summary.OK = false
		summary.Err = errors.Errorf("document not saved: %w", err)
		return summary, summary.Err
	}

	if !doc.Changed() {
		r.event(log.DocumentEvent{Type: log.DocumentUnchanged, Path: t.Path})
		return summary, nil
	}

	if r.opts.Diff {
		summary.Diff = diff.Unified(t.Path, doc.Original(), doc.Content(), r.opts.DiffContext)
	}

	applied := fmt.Sprintf("%d applied", summary.Counts[patch.Applied])
	if r.opts.DryRun {
		r.event(log.DocumentEvent{Type: log.DocumentDryRun, Path: t.Path, Description: applied})
		return summary, nil
	}

	if r.opts.Backup {
		backup, err := r.store.Backup(ctx, doc)
		if err != nil {
			summary.OK = false
			summary.Err = err
			r.event(log.DocumentEvent{Type: log.DocumentError, Path: t.Path, Error: err})
			return summary, err
		}
		summary.Backup = backup
		r.event(log.DocumentEvent{Type: log.DocumentBackedUp, Path: t.Path, Description: backup})
	}

	if err := r.store.Save(ctx, doc); err != nil {
		summary.OK = false
		summary.Err = err
		r.event(log.DocumentEvent{Type: log.DocumentError, Path: t.Path, Error: err})
		return summary, err
	}
	summary.Saved = true
	r.event(log.DocumentEvent{Type: log.DocumentSaved, Path: t.Path, Description: applied})

	logger.Debug().Str("checksum", doc.Checksum()).Bool("ok", summary.OK).Msg("document patched")
	return summary, nil
}

func (r *Runner) event(ev log.DocumentEvent) {
	if r.user == nil {
		return
	}
	r.user.LogDocument(ev)
}
