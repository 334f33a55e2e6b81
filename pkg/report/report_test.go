package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/anchor"
	"github.com/walteh/patchrc/pkg/guard"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

func init() {
	color.NoColor = true
}

func result(name string, reason patch.Reason, critical bool) patch.Result {
	r := patch.Result{
		Operation: name,
		Kind:      patch.InsertAfter,
		Anchor:    `literal "x"`,
		Critical:  critical,
		Reason:    reason,
	}
	switch reason {
	case patch.Applied:
		r.Applied = true
		r.Line = 3
	case patch.AlreadyApplied:
		r.Err = errors.Errorf("%w: found %q", guard.ErrAlreadyApplied, "x")
	case patch.AnchorNotFound:
		r.Err = errors.Errorf("%w: literal %q", anchor.ErrNoMatch, "x")
	case patch.GuardFailed:
		r.Err = errors.Errorf("%w: %q not found", guard.ErrPreconditionMissing, "y")
	case patch.Failed:
		r.Err = errors.New("boom")
	}
	return r
}

func TestReport(t *testing.T) {
	tests := []struct {
		name        string
		results     []patch.Result
		wantOK      bool
		wantChanged bool
		check       func(t *testing.T, s Summary)
	}{
		{
			name:   "empty",
			wantOK: true,
		},
		{
			name: "applied_and_already_applied",
			results: []patch.Result{
				result("a", patch.Applied, true),
				result("b", patch.AlreadyApplied, true),
			},
			wantOK:      true,
			wantChanged: true,
			check: func(t *testing.T, s Summary) {
				assert.Equal(t, 1, s.Counts[patch.Applied])
				assert.Equal(t, 1, s.Counts[patch.AlreadyApplied])
				assert.Equal(t, Info, s.Lines[0].Severity)
				assert.Equal(t, "line 3", s.Lines[0].Detail)
				assert.Equal(t, 3, s.Lines[0].At)
				assert.Equal(t, Info, s.Lines[1].Severity, "already applied is benign")
			},
		},
		{
			name: "non_critical_miss_is_warning",
			results: []patch.Result{
				result("a", patch.AnchorNotFound, false),
			},
			wantOK: true,
			check: func(t *testing.T, s Summary) {
				assert.Equal(t, Warning, s.Lines[0].Severity)
				assert.Equal(t, 1, s.Warnings())
				assert.Zero(t, s.Failures())
				assert.Contains(t, s.Lines[0].Detail, "anchor not found")
			},
		},
		{
			name: "critical_miss_fails",
			results: []patch.Result{
				result("a", patch.Applied, true),
				result("b", patch.AnchorNotFound, true),
			},
			wantOK:      false,
			wantChanged: true,
			check: func(t *testing.T, s Summary) {
				assert.Equal(t, Error, s.Lines[1].Severity)
				assert.Equal(t, 1, s.Failures())
			},
		},
		{
			name: "precondition_missing_is_distinct_warning",
			results: []patch.Result{
				result("a", patch.GuardFailed, false),
			},
			wantOK: true,
			check: func(t *testing.T, s Summary) {
				l := s.Lines[0]
				assert.Equal(t, Warning, l.Severity)
				assert.True(t, l.PreconditionMissing())
				assert.NotEqual(t, patch.AlreadyApplied, l.Status)
				assert.Contains(t, l.Detail, "precondition missing")
			},
		},
		{
			name: "critical_precondition_missing_fails",
			results: []patch.Result{
				result("a", patch.GuardFailed, true),
			},
			wantOK: false,
		},
		{
			name: "critical_failed",
			results: []patch.Result{
				result("a", patch.Failed, true),
			},
			wantOK: false,
			check: func(t *testing.T, s Summary) {
				assert.Equal(t, "boom", s.Lines[0].Detail)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Report("doc.tsx", tt.results)
			assert.Equal(t, "doc.tsx", s.Path)
			assert.Len(t, s.Lines, len(tt.results), "one line per result")
			assert.Equal(t, tt.wantOK, s.OK, "ok should match")
			assert.Equal(t, tt.wantChanged, s.Changed, "changed should match")
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestFailed(t *testing.T) {
	s := Failed("missing.tsx", errors.New("document not found"))
	assert.False(t, s.OK)
	assert.False(t, AllOK(Report("ok.tsx", nil), s))
	assert.True(t, AllOK(Report("ok.tsx", nil)))
	assert.True(t, AllOK())
}

func TestWriteText(t *testing.T) {
	applied := Report("src/app/layout.tsx", []patch.Result{
		result("import-auto-logout", patch.Applied, true),
		result("hook-call", patch.AlreadyApplied, true),
		result("fields", patch.AnchorNotFound, false),
	})
	applied.Saved = true
	applied.Backup = "src/app/layout.tsx.bak"

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, applied, Report("src/app/page.tsx", nil)))
	out := buf.String()

	assert.Contains(t, out, "📝 Modified src/app/layout.tsx")
	assert.Contains(t, out, "👍 Unchanged src/app/page.tsx")
	assert.Contains(t, out, "    ✓ import-auto-logout")
	assert.Contains(t, out, "    - hook-call")
	assert.Contains(t, out, "    ⚠ fields")
	assert.Contains(t, out, "💾 backup src/app/layout.tsx.bak")
	assert.Contains(t, out, "✅ all critical operations applied (2 documents, 1 changed)")
}

func TestWriteText_Failures(t *testing.T) {
	bad := Report("a.tsx", []patch.Result{result("critical", patch.AnchorNotFound, true)})
	bad.Diff = "--- a/a.tsx\n+++ b/a.tsx\n"

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, bad, Failed("b.tsx", errors.New("document not found"))))
	out := buf.String()

	assert.Contains(t, out, "👍 Unchanged a.tsx")
	assert.Contains(t, out, "    ✗ critical")
	assert.Contains(t, out, "--- a/a.tsx\n+++ b/a.tsx\n")
	assert.Contains(t, out, "❌ Failed b.tsx: document not found")
	assert.Contains(t, out, "❌ 1 critical operations failed, 1 documents could not be processed")
}

func TestFormatLine_Alignment(t *testing.T) {
	l := FormatLine(Line{Operation: "op", Kind: "splice", Status: patch.Applied})
	assert.Equal(t, "    ✓ op"+spaces(nameWidth-2)+" splice"+spaces(kindWidth-6)+" applied", l)
}

func spaces(n int) string {
	return string(bytes.Repeat([]byte(" "), n))
}

func TestWriteJSON(t *testing.T) {
	s := Report("a.tsx", []patch.Result{
		result("one", patch.Applied, true),
		result("two", patch.GuardFailed, false),
	})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, s, Failed("b.tsx", errors.New("document not found"))))

	var got struct {
		OK        bool `json:"ok"`
		Documents []struct {
			Path   string         `json:"path"`
			OK     bool           `json:"ok"`
			Error  string         `json:"error"`
			Counts map[string]int `json:"counts"`
			Lines  []struct {
				Operation string `json:"operation"`
				Status    string `json:"status"`
				Severity  string `json:"severity"`
			} `json:"lines"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.False(t, got.OK)
	require.Len(t, got.Documents, 2)
	assert.Equal(t, "a.tsx", got.Documents[0].Path)
	assert.Equal(t, map[string]int{"applied": 1, "guard_failed": 1}, got.Documents[0].Counts)
	assert.Equal(t, "guard_failed", got.Documents[0].Lines[1].Status)
	assert.Equal(t, "warning", got.Documents[0].Lines[1].Severity)
	assert.Equal(t, "document not found", got.Documents[1].Error)
}
