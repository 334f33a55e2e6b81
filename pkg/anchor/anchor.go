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

package anchor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNoMatch is returned when a literal or pattern anchor is absent.
	ErrNoMatch = errors.Base("anchor not found")
	// ErrLineOutOfRange is returned when a line anchor points past the end of the buffer.
	ErrLineOutOfRange = errors.Base("line out of range")
	// ErrInvalid is returned by Validate for malformed specs.
	ErrInvalid = errors.Base("invalid anchor")
)

// DefaultPatternTimeout bounds a single pattern match.
const DefaultPatternTimeout = 2 * time.Second

// 🎯 Spec is one of Literal, Pattern or LineIndex.
type Spec interface {
	fmt.Stringer
	// Validate reports authoring mistakes before the spec is used.
	Validate() error

	locate(buffer string) (Location, error)
}

// Captures are the named (and numbered, as "1", "2", ...) groups of a pattern match.
type Captures map[string]string

// Get returns the capture or "" when the group did not participate.
func (c Captures) Get(name string) string {
	if c == nil {
		return ""
	}
	return c[name]
}

// 📍 Location is the resolved position of an anchor, in byte offsets.
type Location struct {
	Start    int
	End      int
	Line     int // zero-based line containing Start
	Captures Captures
}

// Text returns the matched span of buffer.
func (l Location) Text(buffer string) string {
	return buffer[l.Start:l.End]
}

// IsNotFound reports whether err means the anchor is simply not in the buffer.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoMatch) || errors.Is(err, ErrLineOutOfRange)
}

// 🔍 Locate resolves spec against buffer. The first match is final.
func Locate(buffer string, spec Spec) (Location, error) {
	if spec == nil {
		return Location{}, errors.WithStack(ErrInvalid)
	}
	return spec.locate(buffer)
}

// Literal matches an exact, case-sensitive substring.
type Literal struct {
	Text string
}

func (l Literal) String() string {
	return "literal " + abbreviate(l.Text)
}

func (l Literal) Validate() error {
	if l.Text == "" {
		return errors.Errorf("%w: literal text is empty", ErrInvalid)
	}
	return nil
}

// Pattern matches a compiled regexp2 expression. Build it with Compile.
type Pattern struct {
	expr     string
	re       *regexp2.Regexp
	captures []string
}

// PatternOption configures Compile.
type PatternOption func(*patternOptions)

type patternOptions struct {
	timeout  time.Duration
	captures []string
}

// WithTimeout bounds each match; zero keeps DefaultPatternTimeout.
func WithTimeout(d time.Duration) PatternOption {
	return func(o *patternOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithCaptures declares the groups a payload relies on; each must exist in the expression.
func WithCaptures(names ...string) PatternOption {
	return func(o *patternOptions) {
		o.captures = append(o.captures, names...)
	}
}

// 🏭 Compile builds a Pattern from a Perl/Python style expression.
func Compile(expr string, opts ...PatternOption) (Pattern, error) {
	o := patternOptions{timeout: DefaultPatternTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if expr == "" {
		return Pattern{}, errors.Errorf("%w: pattern is empty", ErrInvalid)
	}

	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return Pattern{}, errors.Errorf("%w: compiling pattern %q: %s", ErrInvalid, expr, err.Error())
	}
	re.MatchTimeout = o.timeout

	p := Pattern{expr: expr, re: re, captures: o.captures}
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(expr string, opts ...PatternOption) Pattern {
	p, err := Compile(expr, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Expr returns the source expression.
func (p Pattern) Expr() string {
	return p.expr
}

// Captures returns the declared capture names.
func (p Pattern) Captures() []string {
	return append([]string(nil), p.captures...)
}

func (p Pattern) String() string {
	return "pattern /" + abbreviate(p.expr) + "/"
}

func (p Pattern) Validate() error {
	if p.re == nil {
		return errors.Errorf("%w: pattern %q was not compiled", ErrInvalid, p.expr)
	}
	for _, name := range p.captures {
		if p.re.GroupNumberFromName(name) < 0 {
			return errors.Errorf("%w: pattern %q has no group %q", ErrInvalid, p.expr, name)
		}
	}
	return nil
}

// LineIndex points at the start of a line fixed at authoring time.
type LineIndex struct {
	N        int
	OneBased bool
}

func (l LineIndex) String() string {
	if l.OneBased {
		return "line " + strconv.Itoa(l.N) + " (1-based)"
	}
	return "line " + strconv.Itoa(l.N)
}

func (l LineIndex) Validate() error {
	if l.OneBased && l.N < 1 {
		return errors.Errorf("%w: one-based line must be >= 1, got %d", ErrInvalid, l.N)
	}
	if l.N < 0 {
		return errors.Errorf("%w: line must be >= 0, got %d", ErrInvalid, l.N)
	}
	return nil
}

// Index returns the zero-based line index.
func (l LineIndex) Index() int {
	if l.OneBased {
		return l.N - 1
	}
	return l.N
}

func abbreviate(s string) string {
	const maxLen = 40
	s = strings.ReplaceAll(s, "\n", `\n`)
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen]) + "…"
	}
	return strconv.Quote(s)
}
