package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/anchor"
)

func TestPayload_Render(t *testing.T) {
	captures := anchor.Captures{"name": "Home", "1": "export default"}

	tests := []struct {
		name    string
		payload func(t *testing.T) Payload
		want    string
		wantErr bool
	}{
		{
			name:    "static_ignores_captures",
			payload: func(*testing.T) Payload { return Static("\nimport C") },
			want:    "\nimport C",
		},
		{
			name: "func",
			payload: func(*testing.T) Payload {
				return Func(func(c anchor.Captures) string { return "<" + c.Get("name") + ">" })
			},
			want: "<Home>",
		},
		{
			name: "template_named_and_numbered",
			payload: func(t *testing.T) Payload {
				tmpl, err := NewTemplate(`{{ index . "1" }} {{ .name }}`)
				require.NoError(t, err)
				return tmpl
			},
			want: "export default Home",
		},
		{
			name: "template_missing_key",
			payload: func(t *testing.T) Payload {
				tmpl, err := NewTemplate(`{{ .nope }}`)
				require.NoError(t, err)
				return tmpl
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.payload(t).Render(captures)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "payload should match")
		})
	}
}

func TestNewTemplate(t *testing.T) {
	_, err := NewTemplate("{{ .unclosed ")
	assert.ErrorContains(t, err, "parsing payload template")

	tmpl, err := NewTemplate("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", tmpl.Source())

	got, err := tmpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", got, "nil captures should render")
}
