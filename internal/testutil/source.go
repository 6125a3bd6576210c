package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/animevent/internal/ir"
)

// MemorySource is an in-memory track source.
//
// Tracks are copied on the way in and out, so callers cannot alias the
// stored record slices.
type MemorySource struct {
	mu     sync.Mutex
	tracks map[string]ir.Track
	writes int
}

// NewMemorySource creates a source holding copies of tracks.
func NewMemorySource(tracks ...ir.Track) *MemorySource {
	s := &MemorySource{tracks: make(map[string]ir.Track)}
	for _, t := range tracks {
		s.Put(t)
	}
	return s
}

// Put stores a copy of t, replacing any track with the same ID.
func (s *MemorySource) Put(t ir.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Records = ir.CloneRecords(t.Records)
	s.tracks[t.ID] = t
}

// Remove deletes a track.
func (s *MemorySource) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tracks, id)
}

// Track returns a copy of the track, or an error wrapping
// ir.ErrTrackNotFound.
func (s *MemorySource) Track(ctx context.Context, id string) (ir.Track, error) {
	if err := ctx.Err(); err != nil {
		return ir.Track{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tracks[id]
	if !ok {
		return ir.Track{}, fmt.Errorf("%w: %s", ir.ErrTrackNotFound, id)
	}
	t.Records = ir.CloneRecords(t.Records)
	return t, nil
}

// WriteRecords replaces a track's records, keeping its duration.
func (s *MemorySource) WriteRecords(ctx context.Context, id string, records []ir.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tracks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ir.ErrTrackNotFound, id)
	}
	t.Records = ir.CloneRecords(records)
	s.tracks[id] = t
	s.writes++
	return nil
}

// Records returns a copy of a track's records, or nil if it is missing.
func (s *MemorySource) Records(id string) []ir.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[id]
	if !ok {
		return nil
	}
	return ir.CloneRecords(t.Records)
}

// IDs returns the stored track IDs in sorted order.
func (s *MemorySource) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.tracks))
	for id := range s.tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Writes returns how many WriteRecords calls succeeded.
func (s *MemorySource) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
