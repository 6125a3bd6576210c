package ir

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrTrackNotFound is returned by track sources for an unknown track ID.
var ErrTrackNotFound = errors.New("track not found")

// MessageOptions controls whether an event requires a receiver when fired.
type MessageOptions int

const (
	RequireReceiver MessageOptions = iota
	DontRequireReceiver
)

func (o MessageOptions) String() string {
	switch o {
	case RequireReceiver:
		return "require_receiver"
	case DontRequireReceiver:
		return "dont_require_receiver"
	default:
		return fmt.Sprintf("message_options(%d)", int(o))
	}
}

// ParseMessageOptions parses the String form. An empty string is
// RequireReceiver.
func ParseMessageOptions(s string) (MessageOptions, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "require_receiver":
		return RequireReceiver, nil
	case "dont_require_receiver":
		return DontRequireReceiver, nil
	default:
		return 0, fmt.Errorf("unknown message options %q", s)
	}
}

// ObjectRef is an opaque reference to an asset (clip, prefab, ...).
// ID is the stable identity; Path is informational only.
type ObjectRef struct {
	ID   int64  `json:"id"`
	Path string `json:"path,omitempty"`
}

// IsZero reports whether the reference is absent.
func (o ObjectRef) IsZero() bool {
	return o.ID == 0
}

func (o ObjectRef) String() string {
	if o.IsZero() {
		return "none"
	}
	if o.Path == "" {
		return fmt.Sprintf("#%d", o.ID)
	}
	return fmt.Sprintf("%s#%d", o.Path, o.ID)
}

// Record is one raw event record as stored on a track.
type Record struct {
	Time        float32        `json:"time"`
	Name        string         `json:"name"`
	FloatParam  float32        `json:"float_param"`
	IntParam    int32          `json:"int_param"`
	StringParam string         `json:"string_param"`
	Object      ObjectRef      `json:"object"`
	Options     MessageOptions `json:"options"`
}

// Equal reports field-wise equality over time, name, the four parameters,
// and the object reference's identity. Options do not participate.
func (r Record) Equal(o Record) bool {
	return math.Float32bits(r.Time) == math.Float32bits(o.Time) &&
		r.Name == o.Name &&
		math.Float32bits(r.FloatParam) == math.Float32bits(o.FloatParam) &&
		r.IntParam == o.IntParam &&
		r.StringParam == o.StringParam &&
		r.Object.ID == o.Object.ID
}

// IndexOf returns the index of the first record equal to target, or -1.
func IndexOf(records []Record, target Record) int {
	for i, r := range records {
		if r.Equal(target) {
			return i
		}
	}
	return -1
}

// CloneRecords returns a copy of records that shares no backing array.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// Track is an ordered sequence of records plus a duration in seconds.
// Record order carries no meaning beyond display, but it does feed the
// fingerprint.
type Track struct {
	ID       string   `json:"id"`
	Duration float32  `json:"duration"`
	Records  []Record `json:"records"`
}

// Fingerprint returns the fingerprint of the track's records.
func (t Track) Fingerprint() uint64 {
	return Fingerprint(t.Records)
}
