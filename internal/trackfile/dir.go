package trackfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/animevent/internal/ir"
)

// Dir serves the track documents directly inside a directory. A track's ID
// is its file name without the extension.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory path.
func (d *Dir) Root() string { return d.root }

// Path returns the document path for a track ID, or an error wrapping
// ir.ErrTrackNotFound. When several documents share an ID, YAML wins over
// CUE.
func (d *Dir) Path(id string) (string, error) {
	for _, ext := range []string{".yaml", ".yml", ".cue"} {
		p := filepath.Join(d.root, id+ext)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ir.ErrTrackNotFound, id, d.root)
}

// IDs lists the track IDs in the directory in sorted order.
func (d *Dir) IDs() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read track directory: %w", err)
	}
	seen := make(map[string]bool)
	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !IsTrackFile(e.Name()) {
			continue
		}
		id := trackID(e.Name())
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Track loads a track document. The file name decides the ID, whatever
// the document's id field says.
func (d *Dir) Track(ctx context.Context, id string) (ir.Track, error) {
	if err := ctx.Err(); err != nil {
		return ir.Track{}, err
	}
	p, err := d.Path(id)
	if err != nil {
		return ir.Track{}, err
	}
	doc, err := LoadDocument(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ir.Track{}, fmt.Errorf("%w: %s", ir.ErrTrackNotFound, id)
		}
		return ir.Track{}, err
	}
	return doc.Track(id)
}

// WriteRecords rewrites a YAML track document with new records, keeping
// its duration. CUE documents return ErrReadOnly.
func (d *Dir) WriteRecords(ctx context.Context, id string, records []ir.Record) error {
	t, err := d.Track(ctx, id)
	if err != nil {
		return err
	}
	p, err := d.Path(id)
	if err != nil {
		return err
	}
	t.Records = records
	return Save(p, t)
}

// Create writes a new YAML document for t. It fails if a document for the
// ID already exists.
func (d *Dir) Create(t ir.Track) (string, error) {
	if _, err := d.Path(t.ID); err == nil {
		return "", fmt.Errorf("track %s already exists in %s", t.ID, d.root)
	}
	p := filepath.Join(d.root, t.ID+".yaml")
	if err := Save(p, t); err != nil {
		return "", err
	}
	return p, nil
}
