package watch

import (
	"context"

	"github.com/roach88/animevent/internal/ir"
)

// Source loads and stores the raw records of tracks.
//
// Track must return an error wrapping ir.ErrTrackNotFound for an unknown
// ID; Poll treats that as the track having been removed.
type Source interface {
	Track(ctx context.Context, id string) (ir.Track, error)
	WriteRecords(ctx context.Context, id string, records []ir.Record) error
}
