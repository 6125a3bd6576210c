// Package store provides SQLite-backed storage for animation tracks.
//
// A Store satisfies watch.Source, so a Watcher can cache and mutate tracks
// held in a database file.
//
// # Layout
//
//   - tracks: one row per track (id, duration, revision, fingerprint)
//   - records: one row per raw event record, keyed by (track_id, position)
//
// Float fields are stored as their float32 bit patterns in INTEGER columns
// so every value, NaN and negative zero included, reads back bit-identical
// and the fingerprint of a stored track never drifts.
//
// Record order is the position column: reads always use
// ORDER BY position ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Records are deleted with their track
package store
