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

// Package text holds the buffer primitives shared by the anchor locator and
// the patch executor. Offsets are byte offsets into a string buffer and
// lines keep their "\n" terminator, so joining Lines(s) always yields s.
package text

import (
	"strings"
)

// 📄 Lines splits content into lines, keeping each line's terminator.
// A trailing newline does not start an extra empty line.
func Lines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// 🔢 LineCount returns len(Lines(content)) without allocating.
func LineCount(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// 📍 LineOffset returns the byte offset at which zero-based line n starts.
// n == LineCount(content) is valid and resolves to len(content).
func LineOffset(content string, n int) (int, bool) {
	if n < 0 || n > LineCount(content) {
		return 0, false
	}
	offset := 0
	for i := 0; i < n; i++ {
		idx := strings.IndexByte(content[offset:], '\n')
		if idx < 0 {
			// only reachable for the last, unterminated line
			return len(content), true
		}
		offset += idx + 1
	}
	return offset, true
}

// LineAt returns the zero-based line containing offset.
func LineAt(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(content[:offset], "\n")
}

// ✂️ Splice replaces content[start:end] with insert.
// Callers guarantee 0 <= start <= end <= len(content).
func Splice(content string, start, end int, insert string) string {
	var b strings.Builder
	b.Grow(len(content) - (end - start) + len(insert))
	b.WriteString(content[:start])
	b.WriteString(insert)
	b.WriteString(content[end:])
	return b.String()
}

// EnsureTrailingNewline appends "\n" to s unless it already ends with one.
// The empty string is returned unchanged.
func EnsureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// Newline returns the terminator used by the first line of content: "\r\n"
// for CRLF documents, "\n" otherwise.
func Newline(content string) string {
	idx := strings.IndexByte(content, '\n')
	if idx > 0 && content[idx-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// ConvertNewlines rewrites every line terminator in s as nl.
func ConvertNewlines(s, nl string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if nl == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", nl)
}
