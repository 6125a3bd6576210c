package cli

import (
	"fmt"
	"io"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/ir"
	"github.com/roach88/animevent/internal/watch"
)

// EventView is the printed form of a typed event.
type EventView struct {
	Index       int       `json:"index"`
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	DisplayName string    `json:"display_name"`
	Category    string    `json:"category"`
	Time        float32   `json:"time"`
	Summary     string    `json:"summary"`
	Exposed     []string  `json:"exposed"`
	Record      ir.Record `json:"record"`
}

func eventViews(events []decoder.Event) []EventView {
	views := make([]EventView, len(events))
	for i, e := range events {
		views[i] = EventView{
			Index:       i,
			ID:          e.ID,
			Kind:        string(e.Kind),
			DisplayName: e.DisplayName(),
			Category:    e.Category().String(),
			Time:        e.Time(),
			Summary:     e.Summary(),
			Exposed:     e.Exposed().Names(),
			Record:      e.Record,
		}
	}
	return views
}

func writeEvents(w io.Writer, views []EventView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "(no events)")
		return
	}
	for _, v := range views {
		fmt.Fprintf(w, "%3d  %8.3f  %-16s %-36s %s\n", v.Index, v.Time, v.Kind, v.ID, v.Summary)
	}
}

// ChangeView is the printed form of a change notification.
type ChangeView struct {
	Track    string   `json:"track"`
	Added    []string `json:"added"`
	External bool     `json:"external,omitempty"`
	Removed  bool     `json:"removed,omitempty"`
}

func changeView(c watch.Change) ChangeView {
	return ChangeView{
		Track:    c.TrackID,
		Added:    c.Added.Sorted(),
		External: c.External,
		Removed:  c.Removed,
	}
}

func (c ChangeView) String() string {
	switch {
	case c.Removed:
		return fmt.Sprintf("track %s: removed", c.Track)
	case c.External:
		return fmt.Sprintf("track %s: changed externally", c.Track)
	default:
		return fmt.Sprintf("track %s: changed, added %v", c.Track, c.Added)
	}
}
