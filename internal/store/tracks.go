package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/animevent/internal/ir"
)

// TrackInfo summarizes a stored track.
type TrackInfo struct {
	ID          string  `json:"id"`
	Duration    float32 `json:"duration"`
	Records     int     `json:"records"`
	Revision    int64   `json:"revision"`
	Fingerprint string  `json:"fingerprint"`
}

func floatBits(f float32) int64 { return int64(math.Float32bits(f)) }

func bitsFloat(b int64) float32 { return math.Float32frombits(uint32(b)) }

func fingerprintText(records []ir.Record) string {
	return fmt.Sprintf("%016x", ir.Fingerprint(records))
}

// PutTrack creates or replaces a track and all of its records.
// Revision increments on every write.
func (s *Store) PutTrack(ctx context.Context, t ir.Track) error {
	if t.ID == "" {
		return errors.New("put track: empty track id")
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tracks (id, duration, revision, fingerprint)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(id) DO UPDATE SET
				duration = excluded.duration,
				revision = tracks.revision + 1,
				fingerprint = excluded.fingerprint
		`, t.ID, floatBits(t.Duration), fingerprintText(t.Records))
		if err != nil {
			return fmt.Errorf("upsert track: %w", err)
		}
		return replaceRecords(ctx, tx, t.ID, t.Records)
	})
	if err != nil {
		return fmt.Errorf("put track %s: %w", t.ID, err)
	}
	return nil
}

// WriteRecords replaces the records of an existing track, keeping its
// duration. Returns an error wrapping ir.ErrTrackNotFound for an unknown
// track.
func (s *Store) WriteRecords(ctx context.Context, id string, records []ir.Record) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tracks
			SET revision = revision + 1, fingerprint = ?
			WHERE id = ?
		`, fingerprintText(records), id)
		if err != nil {
			return fmt.Errorf("update track: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update track: %w", err)
		}
		if n == 0 {
			return ir.ErrTrackNotFound
		}
		return replaceRecords(ctx, tx, id, records)
	})
	if err != nil {
		return fmt.Errorf("write records for %s: %w", id, err)
	}
	return nil
}

func replaceRecords(ctx context.Context, tx *sql.Tx, id string, records []ir.Record) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE track_id = ?`, id); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
		(track_id, position, time, name, float_param, int_param, string_param, object_id, object_path, options)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			id,
			i,
			floatBits(r.Time),
			r.Name,
			floatBits(r.FloatParam),
			r.IntParam,
			r.StringParam,
			r.Object.ID,
			r.Object.Path,
			int(r.Options),
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return nil
}

// Track reads a track with its records in position order. Returns an error
// wrapping ir.ErrTrackNotFound for an unknown track.
func (s *Store) Track(ctx context.Context, id string) (ir.Track, error) {
	var durationBits int64
	err := s.db.QueryRowContext(ctx, `SELECT duration FROM tracks WHERE id = ?`, id).Scan(&durationBits)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Track{}, fmt.Errorf("%w: %s", ir.ErrTrackNotFound, id)
	}
	if err != nil {
		return ir.Track{}, fmt.Errorf("read track %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT time, name, float_param, int_param, string_param, object_id, object_path, options
		FROM records
		WHERE track_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return ir.Track{}, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []ir.Record{}
	for rows.Next() {
		var (
			r                 ir.Record
			timeBits, fltBits int64
			options           int
		)
		if err := rows.Scan(&timeBits, &r.Name, &fltBits, &r.IntParam, &r.StringParam, &r.Object.ID, &r.Object.Path, &options); err != nil {
			return ir.Track{}, fmt.Errorf("scan record: %w", err)
		}
		r.Time = bitsFloat(timeBits)
		r.FloatParam = bitsFloat(fltBits)
		r.Options = ir.MessageOptions(options)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return ir.Track{}, fmt.Errorf("iterate records: %w", err)
	}

	return ir.Track{ID: id, Duration: bitsFloat(durationBits), Records: records}, nil
}

// ListTracks returns every stored track ordered by ID.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListTracks(ctx context.Context) ([]TrackInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.duration, t.revision, t.fingerprint, COUNT(r.position)
		FROM tracks t
		LEFT JOIN records r ON r.track_id = t.id
		GROUP BY t.id
		ORDER BY t.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []TrackInfo{}
	for rows.Next() {
		var (
			info         TrackInfo
			durationBits int64
		)
		if err := rows.Scan(&info.ID, &durationBits, &info.Revision, &info.Fingerprint, &info.Records); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		info.Duration = bitsFloat(durationBits)
		tracks = append(tracks, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return tracks, nil
}

// DeleteTrack removes a track and its records. Returns an error wrapping
// ir.ErrTrackNotFound for an unknown track.
func (s *Store) DeleteTrack(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete track %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete track %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ir.ErrTrackNotFound, id)
	}
	return nil
}

// CountByName returns how many stored records carry name, across all
// tracks.
func (s *Store) CountByName(ctx context.Context, name string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE name = ?`, name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records named %q: %w", name, err)
	}
	return n, nil
}
