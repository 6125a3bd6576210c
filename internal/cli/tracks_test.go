package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animevent/internal/store"
)

// importWalk stores walkYAML under track ID "walk" and returns the
// database path.
func importWalk(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := writeTrack(t, dir, "walk.yaml", walkYAML)
	db := filepath.Join(dir, "tracks.db")

	out, err := execute(t, "import", "--db", db, path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 file(s)")
	assert.Contains(t, out, "walk")
	return db
}

func eventIDs(views []EventView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

func eventKinds(views []EventView) []string {
	kinds := make([]string, len(views))
	for i, v := range views {
		kinds[i] = v.Kind
	}
	return kinds
}

func TestImportAndList(t *testing.T) {
	db := importWalk(t)

	out, err := execute(t, "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	infos := decodeData[[]store.TrackInfo](t, out)
	require.Len(t, infos, 1)
	assert.Equal(t, "walk", infos[0].ID)
	assert.Equal(t, 3, infos[0].Records)

	out, err = execute(t, "list", "--db", db, "--track", "walk", "--format", "json")
	require.NoError(t, err)
	views := decodeData[[]EventView](t, out)
	assert.Equal(t, []string{"footstep_left", "sound", "footstep_right"}, eventKinds(views))
	assert.Equal(t, []string{"evt-1", "evt-2", "evt-3"}, eventIDs(views))
}

func TestListCommand_CountByName(t *testing.T) {
	db := importWalk(t)

	out, err := execute(t, "list", "--db", db, "--name", "PlaySound", "--format", "json")
	require.NoError(t, err)
	data := decodeData[map[string]any](t, out)
	assert.Equal(t, "PlaySound", data["name"])
	assert.Equal(t, float64(1), data["records"])
}

func TestListCommand_UnknownTrack(t *testing.T) {
	db := importWalk(t)

	out, err := execute(t, "list", "--db", db, "--track", "run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestMutateCommands(t *testing.T) {
	db := importWalk(t)

	// The stored track is decoded as evt-1..3 before each edit.
	out, err := execute(t, "add", "--db", db, "--track", "walk",
		"--kind", "voice", "--time", "0.3", "--string", "hi", "--format", "json")
	require.NoError(t, err)
	added := decodeData[MutationResult](t, out)
	assert.Equal(t, "walk", added.Change.Track)
	assert.Equal(t, []string{"evt-7"}, added.Change.Added)
	assert.Equal(t, []string{"footstep_left", "voice", "sound", "footstep_right"}, eventKinds(added.Events))
	assert.Equal(t, []string{"evt-1", "evt-7", "evt-2", "evt-3"}, eventIDs(added.Events))
	assert.Equal(t, "hi", added.Events[1].Record.StringParam)

	t.Run("replace keeps identifier", func(t *testing.T) {
		out, err := execute(t, "replace", "--db", db, "--track", "walk",
			"--index", "1", "--float", "0.5", "--format", "json")
		require.NoError(t, err)
		replaced := decodeData[MutationResult](t, out)
		assert.Empty(t, replaced.Change.Added)
		require.Len(t, replaced.Events, 4)
		assert.Equal(t, "evt-4", replaced.Events[1].ID)
		assert.Equal(t, float32(0.5), replaced.Events[1].Record.FloatParam)
		assert.Equal(t, "hi", replaced.Events[1].Record.StringParam)
	})

	t.Run("delete", func(t *testing.T) {
		out, err := execute(t, "delete", "--db", db, "--track", "walk", "--index", "0", "--format", "json")
		require.NoError(t, err)
		deleted := decodeData[MutationResult](t, out)
		assert.Empty(t, deleted.Change.Added)
		assert.Equal(t, []string{"voice", "sound", "footstep_right"}, eventKinds(deleted.Events))
	})

	t.Run("index out of range", func(t *testing.T) {
		out, err := execute(t, "delete", "--db", db, "--track", "walk", "--index", "9")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E202]")
	})
}

func TestAddCommand_RecordErrors(t *testing.T) {
	db := importWalk(t)

	out, err := execute(t, "add", "--db", db, "--track", "walk", "--kind", "nope")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E201]")

	out, err = execute(t, "add", "--db", db, "--track", "walk", "--time", "1")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E001]")

	out, err = execute(t, "list", "--db", db, "--track", "walk", "--format", "json")
	require.NoError(t, err)
	assert.Len(t, decodeData[[]EventView](t, out), 3)
}
