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

package patch

import (
	"strings"

	"github.com/walteh/patchrc/pkg/anchor"
	"github.com/walteh/patchrc/pkg/guard"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidOperation is returned by Operation.Validate.
var ErrInvalidOperation = errors.Base("invalid operation")

// 🔧 Kind is the buffer edit an Operation performs.
type Kind int

const (
	InsertBefore Kind = iota + 1
	InsertAfter
	ReplaceRange
	SpliceAtLine
)

var kindNames = map[Kind]string{
	InsertBefore: "insert_before",
	InsertAfter:  "insert_after",
	ReplaceRange: "replace",
	SpliceAtLine: "splice",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind accepts the names produced by Kind.String, case-insensitively.
// "replace_range" and "splice_at_line" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert_before", "before":
		return InsertBefore, nil
	case "insert_after", "after":
		return InsertAfter, nil
	case "replace", "replace_range":
		return ReplaceRange, nil
	case "splice", "splice_at_line":
		return SpliceAtLine, nil
	default:
		return 0, errors.Errorf("%w: unknown kind %q", ErrInvalidOperation, s)
	}
}

// 📦 Operation is one declarative buffer edit. Treat it as immutable once built.
type Operation struct {
	// Name identifies the operation in reports.
	Name string
	Kind Kind
	// Anchor locates where the edit lands; SpliceAtLine requires anchor.LineIndex.
	Anchor anchor.Spec
	// Guard is checked before the anchor is located.
	Guard   guard.Condition
	Payload Payload
	// Critical operations fail the run when they cannot be applied.
	Critical bool
}

// 🔍 Validate reports authoring mistakes. Execute refuses invalid operations.
func (op Operation) Validate() error {
	if op.Name == "" {
		return errors.Errorf("%w: name is required", ErrInvalidOperation)
	}
	if _, ok := kindNames[op.Kind]; !ok {
		return errors.Errorf("%w: %s: kind is required", ErrInvalidOperation, op.Name)
	}
	if op.Anchor == nil {
		return errors.Errorf("%w: %s: anchor is required", ErrInvalidOperation, op.Name)
	}
	if err := op.Anchor.Validate(); err != nil {
		return errors.Errorf("%w: %s: %s", ErrInvalidOperation, op.Name, err.Error())
	}

	_, isLine := op.Anchor.(anchor.LineIndex)
	switch {
	case op.Kind == SpliceAtLine && !isLine:
		return errors.Errorf("%w: %s: splice needs a line anchor, got %s", ErrInvalidOperation, op.Name, op.Anchor)
	case op.Kind != SpliceAtLine && isLine:
		return errors.Errorf("%w: %s: line anchors are only valid for splice", ErrInvalidOperation, op.Name)
	}

	if op.Payload == nil {
		return errors.Errorf("%w: %s: payload is required", ErrInvalidOperation, op.Name)
	}
	if err := op.Guard.Validate(); err != nil {
		return errors.Errorf("%w: %s: guard: %s", ErrInvalidOperation, op.Name, err.Error())
	}
	return nil
}
