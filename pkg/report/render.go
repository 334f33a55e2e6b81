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

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Display configuration
const (
	lineIndent  = 4  // spaces to indent operation entries
	nameWidth   = 35 // width for operation name
	kindWidth   = 15 // width for operation kind
	statusWidth = 18 // width for status text
)

// 🎯 FormatLine formats one operation outcome for display.
func FormatLine(l Line) string {
	var prefix string
	switch {
	case l.Status == patch.Applied:
		prefix = color.GreenString("✓")
	case l.Status == patch.AlreadyApplied:
		prefix = color.HiBlackString("-")
	case l.Severity == Error:
		prefix = color.RedString("✗")
	default:
		prefix = color.YellowString("⚠")
	}

	status := fmt.Sprintf("%-*s", statusWidth, l.Status.String())
	switch l.Severity {
	case Error:
		status = color.RedString(status)
	case Warning:
		status = color.YellowString(status)
	}

	out := fmt.Sprintf("%s%s %-*s %-*s %s",
		strings.Repeat(" ", lineIndent),
		prefix,
		nameWidth, l.Operation,
		kindWidth, l.Kind,
		status,
	)
	if l.Detail != "" {
		out += " " + color.HiBlackString(l.Detail)
	}
	return strings.TrimRight(out, " ")
}

// FormatHeader formats the per-document line.
func FormatHeader(s Summary) string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("❌ Failed %s: %s", color.New(color.Bold).Sprint(s.Path), s.Err)
	case s.Changed && s.Saved:
		return fmt.Sprintf("📝 Modified %s", color.New(color.Bold).Sprint(s.Path))
	case s.Changed:
		return fmt.Sprintf("🔍 Would modify %s", color.New(color.Bold).Sprint(s.Path))
	default:
		return fmt.Sprintf("👍 Unchanged %s", color.New(color.Bold).Sprint(s.Path))
	}
}

// FormatOverall formats the closing marker for a run.
func FormatOverall(summaries ...Summary) string {
	failures, broken, changed := 0, 0, 0
	for _, s := range summaries {
		failures += s.Failures()
		if s.Err != nil {
			broken++
		}
		if s.Changed {
			changed++
		}
	}

	if AllOK(summaries...) {
		return color.GreenString("✅ all critical operations applied (%d documents, %d changed)", len(summaries), changed)
	}

	parts := []string{}
	if failures > 0 {
		parts = append(parts, fmt.Sprintf("%d critical operations failed", failures))
	}
	if broken > 0 {
		parts = append(parts, fmt.Sprintf("%d documents could not be processed", broken))
	}
	return color.RedString("❌ %s", strings.Join(parts, ", "))
}

// 🖨️ WriteText renders summaries as aligned, colored text followed by the
// overall marker.
func WriteText(w io.Writer, summaries ...Summary) error {
	var b strings.Builder
	for _, s := range summaries {
		b.WriteString(FormatHeader(s))
		b.WriteByte('\n')
		for _, l := range s.Lines {
			b.WriteString(FormatLine(l))
			b.WriteByte('\n')
		}
		if s.Backup != "" {
			fmt.Fprintf(&b, "%s💾 backup %s\n", strings.Repeat(" ", lineIndent), s.Backup)
		}
		if s.Diff != "" {
			b.WriteString(colorDiff(s.Diff))
		}
	}
	b.WriteString(FormatOverall(summaries...))
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Errorf("writing report: %w", err)
	}
	return nil
}

func colorDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(color.CyanString(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(color.GreenString(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(color.RedString(line))
		default:
			b.WriteString(line)
		}
	}
	if !strings.HasSuffix(diff, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

type jsonSummary struct {
	Summary
	Error string `json:"error,omitempty"`
}

type jsonReport struct {
	OK        bool          `json:"ok"`
	Documents []jsonSummary `json:"documents"`
}

// WriteJSON renders summaries as a single JSON object.
func WriteJSON(w io.Writer, summaries ...Summary) error {
	out := jsonReport{
		OK:        AllOK(summaries...),
		Documents: make([]jsonSummary, 0, len(summaries)),
	}
	for _, s := range summaries {
		js := jsonSummary{Summary: s}
		if s.Err != nil {
			js.Error = s.Err.Error()
		}
		out.Documents = append(out.Documents, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Errorf("encoding report: %w", err)
	}
	return nil
}
