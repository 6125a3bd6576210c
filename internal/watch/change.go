package watch

import (
	"encoding/json"
	"slices"
)

// IDSet is a set of event identifiers.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Add(id string) { s[id] = struct{}{} }

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// Change is the notification emitted after a track's cache changes.
//
// Added holds the identifiers generated for events that matched nothing in
// the previous cache. It is empty, never nil, for pure edits, external
// changes and removals.
type Change struct {
	TrackID  string `json:"track"`
	Added    IDSet  `json:"added"`
	External bool   `json:"external,omitempty"`
	Removed  bool   `json:"removed,omitempty"`
}

// IsZero reports whether c is the zero Change returned by a no-op mutation.
func (c Change) IsZero() bool {
	return c.TrackID == ""
}

// Listener receives change notifications.
type Listener func(Change)
