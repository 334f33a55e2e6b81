package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Targets(t *testing.T) {
	p, err := Load(context.Background(), "testdata/auto_logout.hcl", Options{
		Variables: map[string]string{"hook": "useAutoLogout"},
	})
	require.NoError(t, err)

	targets, err := p.Targets(context.Background(), "testdata/site")
	require.NoError(t, err)

	paths := make([]string, 0, len(targets))
	for _, tg := range targets {
		paths = append(paths, tg.Path)
	}
	assert.Equal(t, []string{
		"app/(dashboard)/layout.tsx",
		"app/about/page.tsx",
		"app/page.tsx",
	}, paths, "legacy pages should be ignored")

	assert.Len(t, targets[0].Operations, 2)
	assert.Equal(t, "import-hook", targets[0].Operations[0].Name)
	assert.Len(t, targets[1].Operations, 1)
	assert.Equal(t, "banner", targets[1].Operations[0].Name)
}

func TestPlan_TargetsMergesDuplicates(t *testing.T) {
	p := &Plan{Documents: []Document{
		{Path: "app/page.tsx", Operations: []Operation{{Name: "first", Kind: "after", Literal: ptr("a"), Payload: "b"}}},
		{Glob: "app/*.tsx", Operations: []Operation{{Name: "second", Kind: "after", Literal: ptr("c"), Payload: "d"}}},
		{Path: "./app/page.tsx", Operations: []Operation{{Name: "third", Kind: "after", Literal: ptr("e"), Payload: "f"}}},
	}}
	require.NoError(t, p.Validate())

	targets, err := p.Targets(context.Background(), "testdata/site")
	require.NoError(t, err)
	require.Len(t, targets, 1, "one target per path")

	names := []string{}
	for _, op := range targets[0].Operations {
		names = append(names, op.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names, "operations keep plan order")
}

func TestPlan_TargetsEmptyGlob(t *testing.T) {
	p := &Plan{Documents: []Document{
		{Glob: "nothing/**/*.go", Operations: []Operation{{Name: "x", Kind: "after", Literal: ptr("a"), Payload: "b"}}},
	}}
	require.NoError(t, p.Validate())

	targets, err := p.Targets(context.Background(), "testdata/site")
	require.NoError(t, err)
	assert.Empty(t, targets)
}
