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
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/anchor"
	"github.com/walteh/patchrc/pkg/guard"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📊 Reason is why an Operation did or did not change the buffer.
type Reason int

const (
	Applied Reason = iota
	AlreadyApplied
	AnchorNotFound
	GuardFailed
	// Failed covers invalid operations, payload rendering errors and
	// pattern timeouts.
	Failed
)

func (r Reason) String() string {
	switch r {
	case Applied:
		return "applied"
	case AlreadyApplied:
		return "already applied"
	case AnchorNotFound:
		return "anchor not found"
	case GuardFailed:
		return "guard failed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets results serialize with readable reasons.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(strings.ReplaceAll(r.String(), " ", "_")), nil
}

// 📋 Result is the outcome of one Operation against one buffer.
type Result struct {
	Operation string
	Kind      Kind
	Anchor    string
	Critical  bool
	Applied   bool
	Reason    Reason
	// Err is the precise cause when Reason is not Applied.
	Err error
	// Line is the 1-based line where the edit landed, 0 when nothing changed.
	Line int
}

// OK reports whether the buffer ended up in the intended state.
func (r Result) OK() bool {
	return r.Reason == Applied || r.Reason == AlreadyApplied
}

// Buffer is the mutable text an Operation edits.
type Buffer interface {
	Content() string
	SetContent(content string)
}

// 🏃 Execute applies op to buffer and returns the new buffer. Whenever the
// result is not Applied the returned string is buffer, unchanged.
func Execute(buffer string, op Operation) (string, Result) {
	res := Result{
		Operation: op.Name,
		Kind:      op.Kind,
		Critical:  op.Critical,
	}
	if op.Anchor != nil {
		res.Anchor = op.Anchor.String()
	}

	if err := op.Validate(); err != nil {
		res.Reason, res.Err = Failed, err
		return buffer, res
	}

	// 1. guard, against the untouched buffer
	if v := guard.Check(buffer, op.Guard); !v.Holds() {
		res.Err = v.Err()
		res.Reason = GuardFailed
		if v.Reason == guard.AlreadyApplied {
			res.Reason = AlreadyApplied
		}
		return buffer, res
	}

	// 2. anchor
	loc, err := anchor.Locate(buffer, op.Anchor)
	if err != nil {
		res.Err = err
		res.Reason = Failed
		if anchor.IsNotFound(err) {
			res.Reason = AnchorNotFound
		}
		return buffer, res
	}

	// 3. payload
	payload, err := op.Payload.Render(loc.Captures)
	if err != nil {
		res.Reason, res.Err = Failed, errors.Errorf("rendering payload: %w", err)
		return buffer, res
	}

	// 4. mutate
	var out string
	switch op.Kind {
	case InsertBefore:
		out = text.Splice(buffer, loc.Start, loc.Start, payload)
	case InsertAfter:
		out = text.Splice(buffer, loc.End, loc.End, payload)
	case ReplaceRange:
		out = text.Splice(buffer, loc.Start, loc.End, payload)
	case SpliceAtLine:
		out = text.Splice(buffer, loc.Start, loc.Start, spliceLines(buffer, loc.Start, payload))
	}

	res.Applied = true
	res.Reason = Applied
	res.Line = loc.Line + 1
	return out, res
}

// spliceLines turns payload into whole lines for insertion at offset, using
// the buffer's own line terminator.
func spliceLines(buffer string, offset int, payload string) string {
	nl := text.Newline(buffer)
	payload = text.ConvertNewlines(text.EnsureTrailingNewline(payload), nl)
	// appending after an unterminated last line must start a new line
	if offset == len(buffer) && buffer != "" && !strings.HasSuffix(buffer, "\n") {
		payload = nl + strings.TrimSuffix(payload, nl)
	}
	return payload
}

// Apply runs op against buf, updating it only when the result is Applied.
func Apply(buf Buffer, op Operation) Result {
	out, res := Execute(buf.Content(), op)
	if res.Applied {
		buf.SetContent(out)
	}
	return res
}

// 🔁 ApplyAll runs ops in order against buf. Each operation is independent:
// a miss never stops the ones after it. Cancellation is checked between
// operations; operations not started report Failed with the context error.
func ApplyAll(ctx context.Context, buf Buffer, ops []Operation) []Result {
	logger := zerolog.Ctx(ctx)
	results := make([]Result, 0, len(ops))

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{
				Operation: op.Name,
				Kind:      op.Kind,
				Critical:  op.Critical,
				Reason:    Failed,
				Err:       errors.Errorf("operation not started: %w", err),
			})
			continue
		}

		res := Apply(buf, op)
		logger.Debug().
			Str("operation", res.Operation).
			Str("kind", res.Kind.String()).
			Str("anchor", res.Anchor).
			Str("reason", res.Reason.String()).
			Int("line", res.Line).
			AnErr("cause", res.Err).
			Msg("patch operation")
		results = append(results, res)
	}

	return results
}

type stringBuffer struct {
	content string
}

func (b *stringBuffer) Content() string     { return b.content }
func (b *stringBuffer) SetContent(s string) { b.content = s }

// ExecuteAll is ApplyAll over a plain string: (document, operations) in,
// (document, results) out.
func ExecuteAll(buffer string, ops []Operation) (string, []Result) {
	buf := &stringBuffer{content: buffer}
	results := ApplyAll(context.Background(), buf, ops)
	return buf.content, results
}
