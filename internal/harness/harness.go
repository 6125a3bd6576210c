package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/ir"
	"github.com/roach88/animevent/internal/store"
	"github.com/roach88/animevent/internal/testutil"
	"github.com/roach88/animevent/internal/trackfile"
	"github.com/roach88/animevent/internal/watch"
)

// Harness is the scenario execution engine.
type Harness struct {
	store   *store.Store
	watcher *watch.Watcher
	trackID string
	logger  *slog.Logger

	mu      sync.Mutex
	pending []watch.Change

	labels map[string]string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// identifiers drawn from a counting generator.
//
// Execution flow:
// 1. Create fresh in-memory database and store the scenario track
// 2. Watch the track
// 3. Execute each step, recording its notifications and the cache
// 4. Return result with pass/fail, trace, and errors
//
// An error is returned when the scenario cannot be executed at all, such
// as a step indexing past the cache; failed expectations are reported in
// the result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	track, err := scenario.Track.Track(scenario.Name)
	if err != nil {
		return nil, fmt.Errorf("invalid track: %w", err)
	}
	if err := st.PutTrack(ctx, track); err != nil {
		return nil, fmt.Errorf("failed to store track: %w", err)
	}

	registry := decoder.NewDefaultRegistry(
		decoder.WithIDGenerator(testutil.NewCountingGenerator("evt")),
		decoder.WithLogger(logger),
	)

	h := &Harness{
		store:   st,
		watcher: watch.New(st, registry, watch.WithLogger(logger)),
		trackID: scenario.Name,
		logger:  logger,
		labels:  make(map[string]string),
	}
	h.watcher.Subscribe(h.record)

	if err := h.watcher.Watch(ctx, h.trackID); err != nil {
		return nil, fmt.Errorf("failed to watch track: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Kind(), err)
		}

		events, _ := h.watcher.Events(h.trackID)
		changes := h.drain()
		result.Trace = append(result.Trace, TraceEvent{
			Seq:     i + 1,
			Step:    step.Kind(),
			Changes: changes,
			Events:  snapshot(events),
		})

		if step.Expect != nil {
			for _, msg := range checkExpect(i, *step.Expect, events, changes, h.labels) {
				result.AddError(msg)
			}
		}
		if err := h.capture(step.Capture, events); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	return result, nil
}

// record is the watcher listener.
func (h *Harness) record(c watch.Change) {
	h.mu.Lock()
	h.pending = append(h.pending, c)
	h.mu.Unlock()
}

func (h *Harness) drain() []watch.Change {
	h.mu.Lock()
	defer h.mu.Unlock()
	changes := h.pending
	h.pending = nil
	if changes == nil {
		changes = []watch.Change{}
	}
	return changes
}

func (h *Harness) executeStep(ctx context.Context, step Step) error {
	switch step.Kind() {
	case StepAdd:
		rec, err := step.Add.Record()
		if err != nil {
			return err
		}
		_, err = h.watcher.AddRecord(ctx, h.trackID, rec)
		return err

	case StepReplace:
		target, err := h.eventAt(step.Replace.Index)
		if err != nil {
			return err
		}
		rec, err := step.Replace.Record.Record()
		if err != nil {
			return err
		}
		_, err = h.watcher.ReplaceRecord(ctx, h.trackID, target, rec)
		return err

	case StepDelete:
		target, err := h.eventAt(step.Delete.Index)
		if err != nil {
			return err
		}
		_, err = h.watcher.DeleteRecord(ctx, h.trackID, target)
		return err

	case StepExternal:
		if step.External.Remove {
			return h.store.DeleteTrack(ctx, h.trackID)
		}
		records, err := recordsOf(step.External.Events)
		if err != nil {
			return err
		}
		return h.store.WriteRecords(ctx, h.trackID, records)

	case StepPoll:
		h.watcher.Poll(ctx)
		return nil
	}
	return fmt.Errorf("step has no action")
}

func (h *Harness) eventAt(index int) (decoder.Event, error) {
	events, ok := h.watcher.Events(h.trackID)
	if !ok {
		return decoder.Event{}, fmt.Errorf("track %s is not watched", h.trackID)
	}
	if index >= len(events) {
		return decoder.Event{}, fmt.Errorf("index %d out of range: %d cached events", index, len(events))
	}
	return events[index], nil
}

func (h *Harness) capture(labels map[string]int, events []decoder.Event) error {
	for label, index := range labels {
		if index >= len(events) {
			return fmt.Errorf("capture %q: index %d out of range: %d cached events", label, index, len(events))
		}
		h.labels[label] = events[index].ID
	}
	return nil
}

func recordsOf(docs []trackfile.EventDoc) ([]ir.Record, error) {
	records := make([]ir.Record, 0, len(docs))
	for i, d := range docs {
		rec, err := d.Record()
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func snapshot(events []decoder.Event) []EventSnapshot {
	out := make([]EventSnapshot, len(events))
	for i, e := range events {
		out[i] = EventSnapshot{
			ID:   e.ID,
			Kind: string(e.Kind),
			Name: e.Record.Name,
			Time: e.Time(),
		}
	}
	return out
}
