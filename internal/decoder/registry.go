package decoder

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/animevent/internal/ir"
)

// ErrUnknownKind is returned for a kind no registered decoder handles.
var ErrUnknownKind = errors.New("unknown event kind")

// ErrNoDefault is returned when a kind has no default record.
var ErrNoDefault = errors.New("kind has no default record")

// Registry dispatches raw records to decoders.
//
// The decoder list and name index are built once in NewRegistry and never
// change afterwards, so classification is deterministic: candidates are
// always tried in registration order.
type Registry struct {
	decoders []Decoder
	byKind   map[Kind]Decoder
	index    map[string][]Decoder
	fallback Decoder
	ids      IDGenerator
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator sets the identifier source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Registry) {
		r.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry builds a registry over decoders in the given order.
//
// A kind registered twice keeps its first decoder. A decoder listing the
// same name in several rules is indexed under that name once. The
// unrecognized kind is always the fallback and cannot be overridden.
func NewRegistry(decoders []Decoder, opts ...Option) *Registry {
	r := &Registry{
		byKind:   make(map[Kind]Decoder),
		index:    make(map[string][]Decoder),
		fallback: unrecognizedDecoder(),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, d := range decoders {
		kind := d.Kind()
		if kind == KindUnrecognized {
			r.logger.Warn("ignoring decoder for reserved kind", "kind", kind)
			continue
		}
		if _, dup := r.byKind[kind]; dup {
			r.logger.Warn("duplicate decoder registration, keeping first", "kind", kind)
			continue
		}
		r.byKind[kind] = d
		r.decoders = append(r.decoders, d)

		for _, rule := range d.Rules() {
			if slices.ContainsFunc(r.index[rule.Name], func(c Decoder) bool { return c.Kind() == kind }) {
				continue
			}
			r.index[rule.Name] = append(r.index[rule.Name], d)
		}
	}
	r.byKind[KindUnrecognized] = r.fallback

	return r
}

// NewDefaultRegistry builds a registry over Builtins.
func NewDefaultRegistry(opts ...Option) *Registry {
	return NewRegistry(Builtins(), opts...)
}

// Decoders returns the registered decoders in registration order, without
// the fallback.
func (r *Registry) Decoders() []Decoder {
	return slices.Clone(r.decoders)
}

// Candidates returns the decoders indexed under name.
func (r *Registry) Candidates(name string) []Decoder {
	return slices.Clone(r.index[name])
}

// Decoder returns the decoder for kind, including the fallback.
func (r *Registry) Decoder(kind Kind) (Decoder, bool) {
	d, ok := r.byKind[kind]
	return d, ok
}

// NewID returns a fresh identifier from the registry's generator.
func (r *Registry) NewID() string {
	return r.ids.Generate()
}

// resolve picks the decoder for rec.
func (r *Registry) resolve(rec ir.Record) Decoder {
	candidates := r.index[rec.Name]
	switch len(candidates) {
	case 0:
		return r.fallback
	case 1:
		return candidates[0]
	}
	for _, d := range candidates {
		if IsMatch(d, rec) {
			return d
		}
	}
	return r.fallback
}

// Classify decodes one record into a typed event with a fresh identifier.
// Unknown names and ambiguous names with no matching rule both produce the
// unrecognized kind; an error comes only from a decoder's Decode.
func (r *Registry) Classify(rec ir.Record) (Event, error) {
	d := r.resolve(rec)
	payload, err := d.Decode(rec)
	if err != nil {
		return Event{}, fmt.Errorf("decode %s record %q: %w", d.Kind(), rec.Name, err)
	}
	return Event{
		ID:      r.ids.Generate(),
		Kind:    d.Kind(),
		Record:  rec,
		Payload: payload,
	}, nil
}

// DecodeTrack classifies every record independently, preserving input
// order. A record whose decoder fails is logged and skipped. Never returns
// nil.
func (r *Registry) DecodeTrack(records []ir.Record) []Event {
	events := make([]Event, 0, len(records))
	for i, rec := range records {
		ev, err := r.Classify(rec)
		if err != nil {
			r.logger.Warn("skipping undecodable record", "index", i, "name", rec.Name, "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events
}

// MakeDefault returns the default record for a new event of kind at time.
func (r *Registry) MakeDefault(kind Kind, time float32) (ir.Record, error) {
	d, ok := r.byKind[kind]
	if !ok {
		return ir.Record{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	rec, ok := MakeDefault(d)
	if !ok {
		return ir.Record{}, fmt.Errorf("%w: %q", ErrNoDefault, kind)
	}
	rec.Time = time
	return rec, nil
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, len(r.decoders))
	for i, d := range r.decoders {
		kinds[i] = d.Kind()
	}
	return kinds
}
