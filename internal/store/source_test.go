package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/ir"
	"github.com/roach88/animevent/internal/testutil"
	"github.com/roach88/animevent/internal/watch"
)

var _ watch.Source = (*Store)(nil)

func TestStore_AsWatcherSource(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.PutTrack(ctx, testutil.NewTrack("walk", testutil.RecF(0, decoder.NameFootstepLeft, 0.5))))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := decoder.NewDefaultRegistry(
		decoder.WithIDGenerator(testutil.NewCountingGenerator("evt")),
		decoder.WithLogger(logger),
	)
	w := watch.New(s, reg, watch.WithLogger(logger))
	require.NoError(t, w.Watch(ctx, "walk"))

	change, err := w.AddRecord(ctx, "walk", testutil.RecF(1, decoder.NameFootstepRight, 0.3))
	require.NoError(t, err)
	assert.Len(t, change.Added, 1)

	stored, err := s.Track(ctx, "walk")
	require.NoError(t, err)
	assert.Len(t, stored.Records, 2)

	// nothing changed behind the watcher's back
	assert.Empty(t, w.Poll(ctx))

	// an edit through the store is picked up as external
	require.NoError(t, s.WriteRecords(ctx, "walk", []ir.Record{testutil.Rec(0, "Marker")}))
	changes := w.Poll(ctx)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].External)

	require.NoError(t, s.DeleteTrack(ctx, "walk"))
	changes = w.Poll(ctx)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Removed)
}
