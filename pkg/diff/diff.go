// Package diff renders line-level unified diffs of a document before and
// after patching, using github.com/sergi/go-diff.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/walteh/patchrc/pkg/text"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

type lineType int

const (
	lineContext lineType = iota
	lineAdded
	lineRemoved
)

// line is one line of either side. oldPos and newPos count the lines of each
// side that come before it.
type line struct {
	typ     lineType
	oldPos  int
	newPos  int
	content string
}

func (l line) inOld() bool { return l.typ != lineAdded }
func (l line) inNew() bool { return l.typ != lineRemoved }

// 🔍 Unified returns a unified diff of before and after, or "" when they are
// equal. A negative context uses DefaultContext.
func Unified(path, before, after string, context int) string {
	if before == after {
		return ""
	}
	if context < 0 {
		context = DefaultContext
	}

	lines := lineDiff(before, after)

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range hunks(lines, context) {
		writeHunk(&b, lines[h[0]:h[1]])
	}
	return b.String()
}

func lineDiff(before, after string) []line {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	out := []line{}
	oldPos, newPos := 0, 0
	for _, d := range diffs {
		for _, content := range text.Lines(d.Text) {
			l := line{oldPos: oldPos, newPos: newPos, content: content}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				l.typ = lineContext
			case diffmatchpatch.DiffDelete:
				l.typ = lineRemoved
			case diffmatchpatch.DiffInsert:
				l.typ = lineAdded
			}
			if l.inOld() {
				oldPos++
			}
			if l.inNew() {
				newPos++
			}
			out = append(out, l)
		}
	}
	return out
}

// hunks returns [start, end) ranges into lines, each holding at least one
// change plus up to context unchanged lines either side. Changes separated by
// at most 2*context unchanged lines share a hunk.
func hunks(lines []line, context int) [][2]int {
	var out [][2]int
	i := 0
	for i < len(lines) {
		if lines[i].typ == lineContext {
			i++
			continue
		}

		start := max(0, i-context)
		end := i
		for end < len(lines) {
			if lines[end].typ != lineContext {
				end++
				continue
			}
			run := end
			for run < len(lines) && lines[run].typ == lineContext {
				run++
			}
			if run < len(lines) && run-end <= 2*context {
				end = run
				continue
			}
			end = min(len(lines), end+context)
			break
		}

		out = append(out, [2]int{start, end})
		i = end
	}
	return out
}

func writeHunk(b *strings.Builder, lines []line) {
	oldCount, newCount := 0, 0
	for _, l := range lines {
		if l.inOld() {
			oldCount++
		}
		if l.inNew() {
			newCount++
		}
	}

	first := lines[0]
	fmt.Fprintf(b, "@@ -%s +%s @@\n", rangeOf(first.oldPos, oldCount), rangeOf(first.newPos, newCount))

	for _, l := range lines {
		switch l.typ {
		case lineContext:
			b.WriteByte(' ')
		case lineAdded:
			b.WriteByte('+')
		case lineRemoved:
			b.WriteByte('-')
		}
		b.WriteString(strings.TrimSuffix(l.content, "\n"))
		b.WriteByte('\n')
		if !strings.HasSuffix(l.content, "\n") {
			b.WriteString("\\ No newline at end of file\n")
		}
	}
}

// rangeOf renders a hunk side. An empty side names the line before it.
func rangeOf(pos, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", pos)
	case 1:
		return fmt.Sprintf("%d", pos+1)
	default:
		return fmt.Sprintf("%d,%d", pos+1, count)
	}
}
