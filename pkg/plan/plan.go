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

package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/patchrc/pkg/anchor"
	"github.com/walteh/patchrc/pkg/guard"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalid is returned for plans that cannot be run.
var ErrInvalid = errors.Base("invalid plan")

// 📚 Plan is the complete set of documents and operations for one run
type Plan struct {
	Documents []Document `json:"documents" yaml:"documents"`
}

// 📄 Document targets one path, or every path matching Glob, with a list of
// operations applied in order.
type Document struct {
	Path       string      `json:"path,omitempty" yaml:"path,omitempty"`
	Glob       string      `json:"glob,omitempty" yaml:"glob,omitempty"`
	Ignore     []string    `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	Operations []Operation `json:"operations" yaml:"operations"`
}

// 🔧 Operation is the declarative form of a patch.Operation. Exactly one of
// Literal, Pattern or Line must be set.
type Operation struct {
	Name     string   `json:"name" yaml:"name" hcl:"name,label"`
	Kind     string   `json:"kind" yaml:"kind" hcl:"kind"`
	Literal  *string  `json:"literal,omitempty" yaml:"literal,omitempty" hcl:"literal,optional"`
	Pattern  *string  `json:"pattern,omitempty" yaml:"pattern,omitempty" hcl:"pattern,optional"`
	Line     *int     `json:"line,omitempty" yaml:"line,omitempty" hcl:"line,optional"`
	OneBased bool     `json:"one_based,omitempty" yaml:"one_based,omitempty" hcl:"one_based,optional"`
	Captures []string `json:"captures,omitempty" yaml:"captures,omitempty" hcl:"captures,optional"`
	Timeout  string   `json:"timeout,omitempty" yaml:"timeout,omitempty" hcl:"timeout,optional"`
	Payload  string   `json:"payload" yaml:"payload" hcl:"payload"`
	// Template renders Payload as a text/template over the pattern captures.
	Template bool     `json:"template,omitempty" yaml:"template,omitempty" hcl:"template,optional"`
	Absent   []string `json:"absent,omitempty" yaml:"absent,omitempty" hcl:"absent,optional"`
	Present  []string `json:"present,omitempty" yaml:"present,omitempty" hcl:"present,optional"`
	// Critical defaults to true.
	Critical *bool `json:"critical,omitempty" yaml:"critical,omitempty" hcl:"critical,optional"`
}

// 🔍 Validate checks the plan and fills defaults. Every operation is built
// once so pattern and template errors surface before any document is read.
func (p *Plan) Validate() error {
	if len(p.Documents) == 0 {
		return errors.Errorf("%w: no documents", ErrInvalid)
	}

	for i := range p.Documents {
		d := &p.Documents[i]
		where := fmt.Sprintf("documents[%d]", i)

		switch {
		case d.Path == "" && d.Glob == "":
			return errors.Errorf("%w: %s: path or glob is required", ErrInvalid, where)
		case d.Path != "" && d.Glob != "":
			return errors.Errorf("%w: %s: path and glob are mutually exclusive", ErrInvalid, where)
		case d.Glob != "" && !doublestar.ValidatePattern(d.Glob):
			return errors.Errorf("%w: %s: bad glob %q", ErrInvalid, where, d.Glob)
		case d.Path != "" && len(d.Ignore) > 0:
			return errors.Errorf("%w: %s: ignore only applies to glob documents", ErrInvalid, where)
		}
		for _, ig := range d.Ignore {
			if !doublestar.ValidatePattern(ig) {
				return errors.Errorf("%w: %s: bad ignore pattern %q", ErrInvalid, where, ig)
			}
		}

		if len(d.Operations) == 0 {
			return errors.Errorf("%w: %s (%s): no operations", ErrInvalid, where, d.Target())
		}

		seen := map[string]bool{}
		for j := range d.Operations {
			op := &d.Operations[j]
			if op.Critical == nil {
				critical := true
				op.Critical = &critical
			}
			if seen[op.Name] {
				return errors.Errorf("%w: %s.operations[%d]: duplicate name %q", ErrInvalid, where, j, op.Name)
			}
			seen[op.Name] = true

			if _, err := op.Build(); err != nil {
				return errors.Errorf("%w: %s.operations[%d]: %s", ErrInvalid, where, j, err.Error())
			}
		}
	}

	return nil
}

// Target is the path or glob the document names.
func (d Document) Target() string {
	if d.Glob != "" {
		return d.Glob
	}
	return d.Path
}

// 🏗️ Build turns the declaration into a validated patch.Operation.
func (o Operation) Build() (patch.Operation, error) {
	kind, err := patch.ParseKind(o.Kind)
	if err != nil {
		return patch.Operation{}, errors.Errorf("%s: %w", o.Name, err)
	}

	spec, err := o.anchor()
	if err != nil {
		return patch.Operation{}, errors.Errorf("%s: %w", o.Name, err)
	}

	var payload patch.Payload = patch.Static(o.Payload)
	if o.Template {
		tmpl, err := patch.NewTemplate(o.Payload)
		if err != nil {
			return patch.Operation{}, errors.Errorf("%s: %w", o.Name, err)
		}
		payload = tmpl
	}

	op := patch.Operation{
		Name:   o.Name,
		Kind:   kind,
		Anchor: spec,
		Guard: guard.Condition{
			Absent:  append([]string(nil), o.Absent...),
			Present: append([]string(nil), o.Present...),
		},
		Payload:  payload,
		Critical: o.Critical == nil || *o.Critical,
	}
	if err := op.Validate(); err != nil {
		return patch.Operation{}, err
	}
	return op, nil
}

func (o Operation) anchor() (anchor.Spec, error) {
	set := 0
	for _, ok := range []bool{o.Literal != nil, o.Pattern != nil, o.Line != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errors.Errorf("exactly one of literal, pattern or line is required, got %d", set)
	}
	if o.OneBased && o.Line == nil {
		return nil, errors.New("one_based only applies to line anchors")
	}
	if len(o.Captures) > 0 && o.Pattern == nil {
		return nil, errors.New("captures only apply to pattern anchors")
	}
	if o.Timeout != "" && o.Pattern == nil {
		return nil, errors.New("timeout only applies to pattern anchors")
	}

	switch {
	case o.Literal != nil:
		return anchor.Literal{Text: *o.Literal}, nil
	case o.Line != nil:
		return anchor.LineIndex{N: *o.Line, OneBased: o.OneBased}, nil
	}

	opts := []anchor.PatternOption{anchor.WithCaptures(o.Captures...)}
	if o.Timeout != "" {
		d, err := time.ParseDuration(o.Timeout)
		if err != nil {
			return nil, errors.Errorf("parsing timeout: %w", err)
		}
		opts = append(opts, anchor.WithTimeout(d))
	}
	return anchor.Compile(*o.Pattern, opts...)
}

// Operations counts the operations across all documents.
func (p *Plan) Operations() int {
	n := 0
	for _, d := range p.Documents {
		n += len(d.Operations)
	}
	return n
}

// 🔑 Hash identifies the plan's content for logging.
func (p *Plan) Hash() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}
