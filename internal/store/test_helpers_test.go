package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/animevent/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTrack creates a track exercising every record field.
func createTestTrack(id string) ir.Track {
	return ir.Track{
		ID:       id,
		Duration: 2.5,
		Records: []ir.Record{
			{Time: 0, Name: "左足接地", FloatParam: 0.5},
			{Time: 0.5, Name: "PlaySound", FloatParam: 1, Object: ir.ObjectRef{ID: 42, Path: "se/step"}},
			{Time: 1, Name: "Hit", StringParam: "Begin", IntParam: -3, Options: ir.DontRequireReceiver},
		},
	}
}
