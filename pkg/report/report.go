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

// Package report turns patch results into per-document summaries and renders
// them for people (aligned, colored text) or machines (JSON).
package report

import (
	"fmt"

	"github.com/walteh/patchrc/pkg/patch"
)

// Severity grades a Line for display and exit status.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// 📋 Line is the reported outcome of one operation.
type Line struct {
	Operation string       `json:"operation"`
	Kind      string       `json:"kind"`
	Anchor    string       `json:"anchor,omitempty"`
	Status    patch.Reason `json:"status"`
	Detail    string       `json:"detail,omitempty"`
	Critical  bool         `json:"critical"`
	Severity  Severity     `json:"severity"`
	// At is the 1-based line the edit landed on.
	At int `json:"at,omitempty"`
}

// 📊 Summary is the outcome of every operation against one document.
type Summary struct {
	Path    string               `json:"path"`
	Lines   []Line               `json:"lines"`
	OK      bool                 `json:"ok"`
	Changed bool                 `json:"changed"`
	Counts  map[patch.Reason]int `json:"counts"`

	// Set by the caller once the document has been handled.
	Saved  bool   `json:"saved,omitempty"`
	Backup string `json:"backup,omitempty"`
	Diff   string `json:"diff,omitempty"`
	// Err is a document-level failure (load or save). It always makes the
	// summary not OK.
	Err error `json:"-"`
}

// 🎯 Report builds the summary for one document's results.
func Report(path string, results []patch.Result) Summary {
	s := Summary{
		Path:   path,
		OK:     true,
		Lines:  make([]Line, 0, len(results)),
		Counts: make(map[patch.Reason]int),
	}

	for _, r := range results {
		line := Line{
			Operation: r.Operation,
			Kind:      r.Kind.String(),
			Anchor:    r.Anchor,
			Status:    r.Reason,
			Detail:    detail(r),
			Critical:  r.Critical,
			Severity:  severity(r),
			At:        r.Line,
		}
		s.Lines = append(s.Lines, line)
		s.Counts[r.Reason]++

		if r.Applied {
			s.Changed = true
		}
		if line.Severity == Error {
			s.OK = false
		}
	}

	return s
}

// Failed builds the summary for a document that could not be handled at all.
func Failed(path string, err error) Summary {
	return Summary{
		Path:   path,
		OK:     false,
		Lines:  []Line{},
		Counts: map[patch.Reason]int{},
		Err:    err,
	}
}

// AllOK reports whether every summary is OK.
func AllOK(summaries ...Summary) bool {
	for _, s := range summaries {
		if !s.OK {
			return false
		}
	}
	return true
}

// Failures counts the critical operations that did not apply.
func (s Summary) Failures() int {
	n := 0
	for _, l := range s.Lines {
		if l.Severity == Error {
			n++
		}
	}
	return n
}

// Warnings counts the lines reported as warnings.
func (s Summary) Warnings() int {
	n := 0
	for _, l := range s.Lines {
		if l.Severity == Warning {
			n++
		}
	}
	return n
}

func severity(r patch.Result) Severity {
	switch r.Reason {
	case patch.Applied, patch.AlreadyApplied:
		return Info
	case patch.AnchorNotFound, patch.GuardFailed, patch.Failed:
		if r.Critical {
			return Error
		}
		return Warning
	default:
		return Warning
	}
}

func detail(r patch.Result) string {
	if r.Reason == patch.Applied && r.Line > 0 {
		return fmt.Sprintf("line %d", r.Line)
	}
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// PreconditionMissing reports whether the line was skipped because a
// required marker was absent, as opposed to the patch already being there.
func (l Line) PreconditionMissing() bool {
	return l.Status == patch.GuardFailed
}
