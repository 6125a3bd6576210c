package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/ir"
)

// entry is the cached state of one watched track.
type entry struct {
	fingerprint uint64
	events      []decoder.Event // sorted by time
}

type subscription struct {
	id int
	fn Listener
}

// Watcher caches decoded events per track and keeps them in sync with a
// Source.
type Watcher struct {
	source   Source
	registry *decoder.Registry
	logger   *slog.Logger

	mu        sync.Mutex
	entries   map[string]*entry
	listeners []subscription
	nextSub   int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a Watcher over source, decoding with registry.
func New(source Source, registry *decoder.Registry, opts ...Option) *Watcher {
	w := &Watcher{
		source:   source,
		registry: registry,
		logger:   slog.Default(),
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts caching a track. Watching an already watched track is a
// no-op and does not reload it.
func (w *Watcher) Watch(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.entries[id]; ok {
		return nil
	}
	track, err := w.load(ctx, id)
	if err != nil {
		return err
	}
	e := w.decode(track.Records)
	w.entries[id] = e

	w.logger.Debug("watching track", "track", id, "events", len(e.events))
	return nil
}

// Unwatch drops a track's cached state.
func (w *Watcher) Unwatch(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, id)
}

// IsWatched reports whether a track is cached.
func (w *Watcher) IsWatched(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entries[id]
	return ok
}

// Watched returns the IDs of all watched tracks in sorted order.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watchedLocked()
}

func (w *Watcher) watchedLocked() []string {
	ids := make([]string, 0, len(w.entries))
	for id := range w.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Events returns a copy of a track's cached events sorted by time, or
// false if the track is not watched.
func (w *Watcher) Events(id string) ([]decoder.Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(e.events), true
}

// Fingerprint returns the fingerprint of the records a track's cache was
// last built from.
func (w *Watcher) Fingerprint(id string) (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[id]
	if !ok {
		return 0, false
	}
	return e.fingerprint, true
}

// Subscribe registers a listener and returns a function that removes it.
// Listeners are called in subscription order.
func (w *Watcher) Subscribe(fn Listener) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextSub++
	id := w.nextSub
	w.listeners = append(w.listeners, subscription{id: id, fn: fn})

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.listeners = slices.DeleteFunc(w.listeners, func(s subscription) bool { return s.id == id })
	}
}

// Poll checks every watched track for external edits and returns the
// changes it emitted, ordered by track ID.
//
// A track whose fingerprint is unchanged is skipped. A track the source no
// longer has is dropped and reported with Removed set. Other source errors
// are logged and the track keeps its cache until the next poll.
func (w *Watcher) Poll(ctx context.Context) []Change {
	w.mu.Lock()
	var changes []Change
	for _, id := range w.watchedLocked() {
		if ctx.Err() != nil {
			break
		}

		track, err := w.source.Track(ctx, id)
		if err != nil {
			if errors.Is(err, ir.ErrTrackNotFound) {
				delete(w.entries, id)
				w.logger.Info("watched track removed", "track", id)
				changes = append(changes, Change{TrackID: id, Added: make(IDSet), Removed: true})
				continue
			}
			w.logger.Warn("poll failed", "track", id, "error", err)
			continue
		}

		fp := ir.Fingerprint(track.Records)
		if fp == w.entries[id].fingerprint {
			continue
		}
		w.entries[id] = w.decode(track.Records)
		w.logger.Info("external track change", "track", id, "fingerprint", fmt.Sprintf("%016x", fp))
		changes = append(changes, Change{TrackID: id, Added: make(IDSet), External: true})
	}
	listeners := slices.Clone(w.listeners)
	w.mu.Unlock()

	notify(listeners, changes...)
	return changes
}

// Run polls on every tick of interval and on every value received from
// kicks until ctx is cancelled. kicks may be nil.
func (w *Watcher) Run(ctx context.Context, interval time.Duration, kicks <-chan struct{}) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("watcher starting", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping: context cancelled")
			return ctx.Err()
		case <-ticker.C:
			w.Poll(ctx)
		case _, ok := <-kicks:
			if !ok {
				kicks = nil
				continue
			}
			w.Poll(ctx)
		}
	}
}

// AddRecord appends rec to the track.
func (w *Watcher) AddRecord(ctx context.Context, id string, rec ir.Record) (Change, error) {
	return w.mutate(ctx, id, func(records []ir.Record) ([]ir.Record, *decoder.Event, bool) {
		return append(records, rec), nil, true
	})
}

// NewRecord appends the default record of kind at time.
func (w *Watcher) NewRecord(ctx context.Context, id string, kind decoder.Kind, at float32) (Change, error) {
	rec, err := w.registry.MakeDefault(kind, at)
	if err != nil {
		return Change{}, err
	}
	return w.AddRecord(ctx, id, rec)
}

// ReplaceRecord swaps the record backing target for rec. The event decoded
// from rec inherits target's identifier.
//
// If target's record is no longer in the track the call logs a warning and
// returns a zero Change.
func (w *Watcher) ReplaceRecord(ctx context.Context, id string, target decoder.Event, rec ir.Record) (Change, error) {
	return w.mutate(ctx, id, func(records []ir.Record) ([]ir.Record, *decoder.Event, bool) {
		i := ir.IndexOf(records, target.Record)
		if i < 0 {
			w.logger.Warn("replace target not in track", "track", id, "event_id", target.ID, "name", target.Record.Name)
			return nil, nil, false
		}
		records[i] = rec
		return records, &target, true
	})
}

// DeleteRecord removes the record backing target.
//
// If target's record is no longer in the track the call logs a warning and
// returns a zero Change.
func (w *Watcher) DeleteRecord(ctx context.Context, id string, target decoder.Event) (Change, error) {
	return w.mutate(ctx, id, func(records []ir.Record) ([]ir.Record, *decoder.Event, bool) {
		i := ir.IndexOf(records, target.Record)
		if i < 0 {
			w.logger.Warn("delete target not in track", "track", id, "event_id", target.ID, "name", target.Record.Name)
			return nil, nil, false
		}
		return slices.Delete(records, i, i+1), nil, true
	})
}

// editFunc returns the new record set, the cached event being replaced (if
// any), and false to abort without writing.
type editFunc func(records []ir.Record) ([]ir.Record, *decoder.Event, bool)

// mutate runs one edit: write, re-decode once, reconcile, notify.
func (w *Watcher) mutate(ctx context.Context, id string, edit editFunc) (Change, error) {
	w.mu.Lock()
	change, err := w.mutateLocked(ctx, id, edit)
	listeners := slices.Clone(w.listeners)
	w.mu.Unlock()

	if err != nil || change.IsZero() {
		return change, err
	}
	notify(listeners, change)
	return change, nil
}

func (w *Watcher) mutateLocked(ctx context.Context, id string, edit editFunc) (Change, error) {
	cached, ok := w.entries[id]
	if !ok {
		return Change{}, notWatched(id)
	}

	track, err := w.load(ctx, id)
	if err != nil {
		return Change{}, err
	}
	records, modified, ok := edit(track.Records)
	if !ok {
		return Change{}, nil
	}
	if err := w.source.WriteRecords(ctx, id, records); err != nil {
		return Change{}, &TrackError{Code: ErrCodeWrite, TrackID: id, Err: err}
	}

	// Re-read so the cache reflects what the source actually stored. The
	// write is committed either way, so a failed re-read falls back to the
	// records just written.
	stored := records
	if current, err := w.load(ctx, id); err != nil {
		w.logger.Warn("reload after write failed, caching written records", "track", id, "error", err)
	} else {
		stored = current.Records
	}
	fresh := w.registry.DecodeTrack(stored)
	added := reconcile(w.logger, id, cached.events, fresh, modified)
	w.entries[id] = &entry{fingerprint: ir.Fingerprint(stored), events: fresh}

	w.logger.Debug("track mutated", "track", id, "events", len(fresh), "added", len(added))
	return Change{TrackID: id, Added: added}, nil
}

func (w *Watcher) load(ctx context.Context, id string) (ir.Track, error) {
	track, err := w.source.Track(ctx, id)
	if err != nil {
		return ir.Track{}, &TrackError{Code: ErrCodeLoad, TrackID: id, Err: err}
	}
	return track, nil
}

// decode builds a fresh cache entry with newly generated identifiers.
func (w *Watcher) decode(records []ir.Record) *entry {
	events := w.registry.DecodeTrack(records)
	sortByTime(events)
	return &entry{fingerprint: ir.Fingerprint(records), events: events}
}

func notify(listeners []subscription, changes ...Change) {
	for _, c := range changes {
		for _, s := range listeners {
			s.fn(c)
		}
	}
}
