package anchor

import (
	"strings"

	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

func (l Literal) locate(buffer string) (Location, error) {
	if err := l.Validate(); err != nil {
		return Location{}, err
	}
	idx := strings.Index(buffer, l.Text)
	if idx < 0 {
		return Location{}, errors.Errorf("%w: %s", ErrNoMatch, l)
	}
	return Location{
		Start: idx,
		End:   idx + len(l.Text),
		Line:  text.LineAt(buffer, idx),
	}, nil
}

func (p Pattern) locate(buffer string) (Location, error) {
	if err := p.Validate(); err != nil {
		return Location{}, err
	}

	m, err := p.re.FindStringMatch(buffer)
	if err != nil {
		// regexp2 only fails here on MatchTimeout
		return Location{}, errors.Errorf("matching %s: %w", p, err)
	}
	if m == nil {
		return Location{}, errors.Errorf("%w: %s", ErrNoMatch, p)
	}

	// regexp2 reports rune offsets
	offsets := runeOffsets(buffer)
	start := offsets[m.Index]
	end := offsets[m.Index+m.Length]

	captures := Captures{}
	for _, g := range m.Groups()[1:] {
		if len(g.Captures) == 0 {
			continue
		}
		captures[g.Name] = g.String()
	}

	return Location{
		Start:    start,
		End:      end,
		Line:     text.LineAt(buffer, start),
		Captures: captures,
	}, nil
}

func (l LineIndex) locate(buffer string) (Location, error) {
	if err := l.Validate(); err != nil {
		return Location{}, err
	}
	n := l.Index()
	offset, ok := text.LineOffset(buffer, n)
	if !ok {
		return Location{}, errors.Errorf("%w: %s, document has %d lines", ErrLineOutOfRange, l, text.LineCount(buffer))
	}
	return Location{
		Start: offset,
		End:   offset,
		Line:  n,
	}, nil
}

// runeOffsets maps rune index i to its byte offset; the extra last entry is len(s).
// Invalid bytes count as one rune each, as they do in []rune(s).
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
