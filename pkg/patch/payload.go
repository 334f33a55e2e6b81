package patch

import (
	"strings"
	"text/template"

	"github.com/walteh/patchrc/pkg/anchor"
	"gitlab.com/tozd/go/errors"
)

// 📝 Payload produces the text an Operation inserts, given the anchor's captures.
type Payload interface {
	Render(captures anchor.Captures) (string, error)
}

// Static is a literal payload.
type Static string

func (s Static) Render(anchor.Captures) (string, error) {
	return string(s), nil
}

// Func builds the payload from pattern captures.
type Func func(captures anchor.Captures) string

func (f Func) Render(captures anchor.Captures) (string, error) {
	return f(captures), nil
}

// Template renders a text/template with the captures as its data, so
// `{{ .name }}` or `{{ index . "1" }}` refer to groups of a Pattern anchor.
// Referencing a group the match did not produce is an error.
type Template struct {
	src  string
	tmpl *template.Template
}

// NewTemplate parses src.
func NewTemplate(src string) (*Template, error) {
	tmpl, err := template.New("payload").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, errors.Errorf("parsing payload template: %w", err)
	}
	return &Template{src: src, tmpl: tmpl}, nil
}

// Source returns the unparsed template.
func (t *Template) Source() string {
	return t.src
}

func (t *Template) Render(captures anchor.Captures) (string, error) {
	if captures == nil {
		captures = anchor.Captures{}
	}
	var b strings.Builder
	if err := t.tmpl.Execute(&b, captures); err != nil {
		return "", errors.Errorf("rendering payload template: %w", err)
	}
	return b.String(), nil
}
