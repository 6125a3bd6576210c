package store

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/roach88/animevent/internal/ir"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"tracks", "records"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, expected %d", version, currentSchemaVersion)
	}
}

func TestMigration_V1NameIndexExists(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_records_name'",
	).Scan(&name)
	if err != nil {
		t.Errorf("idx_records_name not found: %v", err)
	}
}

func TestOpen_BusyTimeoutOption(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), WithBusyTimeout(250*time.Millisecond))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("busy_timeout", "250"); err != nil {
		t.Error(err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.PutTrack(ctx, createTestTrack("walk")); err != nil {
		t.Fatalf("PutTrack() failed: %v", err)
	}
	got, err := s.Track(ctx, "walk")
	if err != nil {
		t.Fatalf("Track() failed: %v", err)
	}
	if len(got.Records) != 3 {
		t.Errorf("len(Records) = %d, expected 3", len(got.Records))
	}
}

func TestMigration_V2TimeIndexExists(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_records_time'",
	).Scan(&name)
	if err != nil {
		t.Errorf("idx_records_time not found: %v", err)
	}
}

func TestMigration_UpgradeFromV0(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := s.db.Exec("DROP INDEX idx_records_name"); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("reset user_version: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	var name string
	if err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_records_name'",
	).Scan(&name); err != nil {
		t.Errorf("migration did not recreate index: %v", err)
	}
}

func TestPutTrack_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	want := createTestTrack("walk")

	if err := s.PutTrack(ctx, want); err != nil {
		t.Fatalf("PutTrack() failed: %v", err)
	}

	got, err := s.Track(ctx, "walk")
	if err != nil {
		t.Fatalf("Track() failed: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("Track() = %+v, expected %+v", got, want)
	}
}

func TestPutTrack_PreservesFloatBits(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	nan := math.Float32frombits(0x7FC00001)
	negZero := float32(math.Copysign(0, -1))
	want := ir.Track{ID: "odd", Records: []ir.Record{{Time: negZero, Name: "n", FloatParam: nan}}}

	if err := s.PutTrack(ctx, want); err != nil {
		t.Fatalf("PutTrack() failed: %v", err)
	}
	got, err := s.Track(ctx, "odd")
	if err != nil {
		t.Fatalf("Track() failed: %v", err)
	}

	if ir.Fingerprint(got.Records) != ir.Fingerprint(want.Records) {
		t.Error("fingerprint changed across storage")
	}
	if math.Float32bits(got.Records[0].FloatParam) != 0x7FC00001 {
		t.Errorf("NaN payload lost: %08x", math.Float32bits(got.Records[0].FloatParam))
	}
	if !math.Signbit(float64(got.Records[0].Time)) {
		t.Error("negative zero lost its sign")
	}
}

func TestPutTrack_ReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	track := createTestTrack("walk")

	if err := s.PutTrack(ctx, track); err != nil {
		t.Fatalf("first PutTrack() failed: %v", err)
	}
	track.Duration = 4
	track.Records = track.Records[:1]
	if err := s.PutTrack(ctx, track); err != nil {
		t.Fatalf("second PutTrack() failed: %v", err)
	}

	got, err := s.Track(ctx, "walk")
	if err != nil {
		t.Fatalf("Track() failed: %v", err)
	}
	if got.Duration != 4 || len(got.Records) != 1 {
		t.Errorf("Track() = %+v, expected duration 4 and one record", got)
	}

	infos, err := s.ListTracks(ctx)
	if err != nil {
		t.Fatalf("ListTracks() failed: %v", err)
	}
	if len(infos) != 1 || infos[0].Revision != 2 {
		t.Errorf("ListTracks() = %+v, expected one track at revision 2", infos)
	}
}

func TestPutTrack_EmptyID(t *testing.T) {
	s := createTestStore(t)
	if err := s.PutTrack(context.Background(), ir.Track{}); err == nil {
		t.Error("expected error for empty track id")
	}
}

func TestTrack_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Track(context.Background(), "missing")
	if !errors.Is(err, ir.ErrTrackNotFound) {
		t.Errorf("Track() error = %v, expected ErrTrackNotFound", err)
	}
}

func TestTrack_EmptyRecordsNotNil(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.PutTrack(ctx, ir.Track{ID: "empty", Duration: 1}); err != nil {
		t.Fatalf("PutTrack() failed: %v", err)
	}

	got, err := s.Track(ctx, "empty")
	if err != nil {
		t.Fatalf("Track() failed: %v", err)
	}
	if got.Records == nil {
		t.Error("Records should be empty, not nil")
	}
}

func TestWriteRecords_KeepsDurationAndBumpsRevision(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	track := createTestTrack("walk")
	if err := s.PutTrack(ctx, track); err != nil {
		t.Fatalf("PutTrack() failed: %v", err)
	}

	records := []ir.Record{track.Records[2], track.Records[0]}
	if err := s.WriteRecords(ctx, "walk", records); err != nil {
		t.Fatalf("WriteRecords() failed: %v", err)
	}

	got, err := s.Track(ctx, "walk")
	if err != nil {
		t.Fatalf("Track() failed: %v", err)
	}
	if got.Duration != track.Duration {
		t.Errorf("Duration = %v, expected %v", got.Duration, track.Duration)
	}
	if !reflect.DeepEqual(records, got.Records) {
		t.Errorf("Records = %+v, expected %+v", got.Records, records)
	}

	infos, err := s.ListTracks(ctx)
	if err != nil {
		t.Fatalf("ListTracks() failed: %v", err)
	}
	if infos[0].Revision != 2 {
		t.Errorf("Revision = %d, expected 2", infos[0].Revision)
	}
	if infos[0].Fingerprint != fingerprintText(records) {
		t.Errorf("Fingerprint = %s, expected %s", infos[0].Fingerprint, fingerprintText(records))
	}
}

func TestWriteRecords_UnknownTrack(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteRecords(context.Background(), "missing", nil)
	if !errors.Is(err, ir.ErrTrackNotFound) {
		t.Errorf("WriteRecords() error = %v, expected ErrTrackNotFound", err)
	}
}

func TestListTracks_OrderedWithCounts(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if infos, err := s.ListTracks(ctx); err != nil || infos == nil || len(infos) != 0 {
		t.Fatalf("ListTracks() on empty store = %v, %v", infos, err)
	}

	for _, id := range []string{"run", "idle", "walk"} {
		if err := s.PutTrack(ctx, createTestTrack(id)); err != nil {
			t.Fatalf("PutTrack(%s) failed: %v", id, err)
		}
	}
	if err := s.PutTrack(ctx, ir.Track{ID: "blank"}); err != nil {
		t.Fatalf("PutTrack(blank) failed: %v", err)
	}

	infos, err := s.ListTracks(ctx)
	if err != nil {
		t.Fatalf("ListTracks() failed: %v", err)
	}

	var ids []string
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	if !reflect.DeepEqual(ids, []string{"blank", "idle", "run", "walk"}) {
		t.Errorf("ListTracks() order = %v", ids)
	}
	if infos[0].Records != 0 || infos[1].Records != 3 {
		t.Errorf("record counts = %d, %d, expected 0, 3", infos[0].Records, infos[1].Records)
	}
}

func TestDeleteTrack_CascadesRecords(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.PutTrack(ctx, createTestTrack("walk")); err != nil {
		t.Fatalf("PutTrack() failed: %v", err)
	}

	if err := s.DeleteTrack(ctx, "walk"); err != nil {
		t.Fatalf("DeleteTrack() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 0 {
		t.Errorf("records left after delete: %d", count)
	}

	if err := s.DeleteTrack(ctx, "walk"); !errors.Is(err, ir.ErrTrackNotFound) {
		t.Errorf("second DeleteTrack() error = %v, expected ErrTrackNotFound", err)
	}
}

func TestCountByName(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	for _, id := range []string{"a", "b"} {
		if err := s.PutTrack(ctx, createTestTrack(id)); err != nil {
			t.Fatalf("PutTrack(%s) failed: %v", id, err)
		}
	}

	n, err := s.CountByName(ctx, "Hit")
	if err != nil {
		t.Fatalf("CountByName() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountByName() = %d, expected 2", n)
	}
}
