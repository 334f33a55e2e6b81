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

// Package guard decides whether a patch is still needed.
//
// A Condition lists markers that must be absent (their presence means the
// patch already ran) and markers that must be present (their absence means
// the document no longer looks like what the patch was written against).
package guard

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrAlreadyApplied      = errors.Base("already applied")
	ErrPreconditionMissing = errors.Base("precondition missing")
)

// 🛡️ Condition is a conjunction of literal checks. The zero value always holds.
type Condition struct {
	// Absent markers must not appear in the buffer.
	Absent []string
	// Present markers must all appear in the buffer.
	Present []string
}

// Unless returns a Condition that holds while marker is absent.
func Unless(marker string) Condition {
	return Condition{Absent: []string{marker}}
}

// Requires returns a copy of c that also needs markers to be present.
func (c Condition) Requires(markers ...string) Condition {
	out := Condition{
		Absent:  append([]string(nil), c.Absent...),
		Present: append(append([]string(nil), c.Present...), markers...),
	}
	return out
}

// IsZero reports whether c has no checks.
func (c Condition) IsZero() bool {
	return len(c.Absent) == 0 && len(c.Present) == 0
}

// Validate rejects empty markers, which would match every buffer.
func (c Condition) Validate() error {
	for i, m := range c.Absent {
		if m == "" {
			return errors.Errorf("absent[%d]: marker is empty", i)
		}
	}
	for i, m := range c.Present {
		if m == "" {
			return errors.Errorf("present[%d]: marker is empty", i)
		}
	}
	return nil
}

// Reason is the outcome of a Check.
type Reason int

const (
	Holds Reason = iota
	AlreadyApplied
	PreconditionMissing
)

func (r Reason) String() string {
	switch r {
	case Holds:
		return "holds"
	case AlreadyApplied:
		return "already applied"
	case PreconditionMissing:
		return "precondition missing"
	default:
		return "unknown"
	}
}

// Verdict is the result of evaluating a Condition.
type Verdict struct {
	Reason Reason
	// Marker is the literal that decided a violated verdict.
	Marker string
}

// Holds reports whether the patch may be applied.
func (v Verdict) Holds() bool {
	return v.Reason == Holds
}

// Err returns nil when the verdict holds, otherwise an error wrapping
// ErrAlreadyApplied or ErrPreconditionMissing.
func (v Verdict) Err() error {
	switch v.Reason {
	case AlreadyApplied:
		return errors.Errorf("%w: found %q", ErrAlreadyApplied, v.Marker)
	case PreconditionMissing:
		return errors.Errorf("%w: %q not found", ErrPreconditionMissing, v.Marker)
	default:
		return nil
	}
}

// 🔍 Check evaluates c against buffer. Absent markers are checked first, so
// a patch that consumed its own precondition still reports AlreadyApplied.
func Check(buffer string, c Condition) Verdict {
	for _, m := range c.Absent {
		if strings.Contains(buffer, m) {
			return Verdict{Reason: AlreadyApplied, Marker: m}
		}
	}
	for _, m := range c.Present {
		if !strings.Contains(buffer, m) {
			return Verdict{Reason: PreconditionMissing, Marker: m}
		}
	}
	return Verdict{Reason: Holds}
}
