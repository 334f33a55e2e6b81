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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 📦 PlanRun describes the plan being executed, for logging
type PlanRun struct {
	Path       string // Plan file path
	Hash       string // Plan content hash
	Documents  int    // Number of target documents
	Operations int    // Number of operations across all documents
	DryRun     bool   // Whether documents are written
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *PlanRun
}

// 🏭 New creates a new logger printing to console and mirroring every
// message to the zerolog logger carried by ctx.
func New(ctx context.Context, console io.Writer) *Logger {
	return &Logger{
		zlog:    *zerolog.Ctx(ctx),
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 StartPlan starts a new plan run
func (l *Logger) StartPlan(ctx context.Context, run PlanRun) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &run

	mode := "apply"
	if run.DryRun {
		mode = "check"
	}

	fmt.Fprintf(l.console, "[%s %s]\n", mode, color.New(color.FgCyan).Sprint(run.Path))
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d documents", run.Documents),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d operations", run.Operations))

	l.zlog.Info().
		Str("plan", run.Path).
		Str("hash", run.Hash).
		Int("documents", run.Documents).
		Int("operations", run.Operations).
		Bool("dry_run", run.DryRun).
		Msg("starting plan")
}

// 📝 EndPlan ends the current plan run
func (l *Logger) EndPlan(ctx context.Context, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Info().
		Str("plan", l.current.Path).
		Bool("ok", ok).
		Msg("plan complete")

	l.current = nil
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}
