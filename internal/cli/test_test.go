package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addScenario = `name: add_sound
description: "Adding an event keeps the footstep identities"
track:
  duration: 1
  events:
    - {time: 0, name: FootstepL, float: 0.5}
    - {time: 0.5, name: FootstepR, float: 0.5}
steps:
  - poll: true
    capture: {left: 0, right: 1}
  - add: {time: 0.25, name: PlaySound, float: 1}
    expect:
      count: 3
      added: 1
      kinds: [footstep_left, sound, footstep_right]
      ids: {0: left, 2: right}
`

const failingScenario = `name: wrong_count
description: "Expects one event too many"
track:
  duration: 1
  events:
    - {time: 0, name: FootstepL}
steps:
  - poll: true
    expect:
      count: 2
`

// scenarioDir lays out root/scenarios with the given files and returns the
// scenarios directory.
func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.Mkdir(dir, 0o755))
	for name, src := range files {
		writeTrack(t, dir, name, src)
	}
	return dir
}

func TestTestCommand_MissingDir(t *testing.T) {
	out, err := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestTestCommand_BadFilter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"add_sound.yaml": addScenario})

	out, err := execute(t, "test", dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E001]")
}

func TestTestCommand_GoldenLifecycle(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"add_sound.yaml": addScenario})
	golden := filepath.Join(filepath.Dir(dir), "golden", "add_sound.golden")

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ add_sound")
	require.FileExists(t, golden)

	out, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ add_sound")
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_FailedExpectation(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"add_sound.yaml":   addScenario,
		"wrong_count.yaml": failingScenario,
	})

	out, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.Equal(t, []string{"steps[0].expect.count: expected 2, got 1"}, resp.Data.Scenarios[1].Errors)
}

func TestTestCommand_Filter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"add_sound.yaml":   addScenario,
		"wrong_count.yaml": failingScenario,
		"notes.txt":        "not a scenario",
	})

	out, err := execute(t, "test", dir, "--filter", "add*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
	assert.NotContains(t, out, "wrong_count")

	out, err = execute(t, "test", dir, "--filter", "none*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
