package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: ok
description: "parses"
track:
  duration: 2
  events:
    - {time: 0, name: FootstepL, float: 0.5}
steps:
  - replace:
      index: 0
      record: {time: 1, name: FootstepR}
    capture: {x: 0}
    expect:
      count: 1
      ids: {0: x}
  - external: {remove: true}
  - poll: true
`))
	require.NoError(t, err)

	assert.Equal(t, "ok", s.Name)
	assert.Equal(t, float32(2), s.Track.Duration)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, StepReplace, s.Steps[0].Kind())
	assert.Equal(t, "FootstepR", s.Steps[0].Replace.Record.Name)
	assert.Equal(t, map[string]int{"x": 0}, s.Steps[0].Capture)
	require.NotNil(t, s.Steps[0].Expect.Count)
	assert.Equal(t, 1, *s.Steps[0].Expect.Count)
	assert.Equal(t, map[int]string{0: "x"}, s.Steps[0].Expect.IDs)
	assert.Nil(t, s.Steps[0].Expect.Added)
	assert.Equal(t, StepExternal, s.Steps[1].Kind())
	assert.Equal(t, StepPoll, s.Steps[2].Kind())
}

func TestParseScenario_Rejects(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "unknown field",
			src:     "name: a\ndescription: b\ntrack: {duration: 1}\nsteps: [{poll: true}]\nassertions: []\n",
			wantErr: "field assertions not found",
		},
		{
			name:    "missing name",
			src:     "description: b\ntrack: {duration: 1}\nsteps: [{poll: true}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			src:     "name: a\ntrack: {duration: 1}\nsteps: [{poll: true}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			src:     "name: a\ndescription: b\ntrack: {duration: 1}\n",
			wantErr: "steps list is required",
		},
		{
			name:    "two actions",
			src:     "name: a\ndescription: b\ntrack: {duration: 1}\nsteps: [{poll: true, delete: {index: 0}}]\n",
			wantErr: "exactly one of",
		},
		{
			name:    "no action",
			src:     "name: a\ndescription: b\ntrack: {duration: 1}\nsteps: [{capture: {x: 0}}]\n",
			wantErr: "exactly one of",
		},
		{
			name:    "negative index",
			src:     "name: a\ndescription: b\ntrack: {duration: 1}\nsteps: [{delete: {index: -1}}]\n",
			wantErr: "index must be non-negative",
		},
		{
			name:    "remove with events",
			src:     "name: a\ndescription: b\ntrack: {duration: 1}\nsteps: [{external: {remove: true, events: [{time: 0, name: X}]}}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "invalid track",
			src:     "name: a\ndescription: b\ntrack: {duration: 1, events: [{time: 0, name: \"\"}]}\nsteps: [{poll: true}]\n",
			wantErr: "track:",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarios_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	write := func(name, scenario string) {
		src := "name: " + scenario + "\ndescription: d\ntrack: {duration: 1}\nsteps: [{poll: true}]\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	write("b.yaml", "second")
	write("a.yml", "first")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "first", scenarios[0].Name)
	assert.Equal(t, "second", scenarios[1].Name)
}
