package watch

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/roach88/animevent/internal/decoder"
)

// reconcile transplants identifiers from old onto fresh and sorts fresh by
// time. It returns the identifiers of fresh events that matched nothing.
//
// fresh events arrive carrying the identifiers generated when they were
// decoded; an event that matches nothing keeps its own. modified, when
// non-nil, is the cached event the caller replaced: it is withdrawn from
// matching and its identifier goes to the first unmatched fresh event.
// Matching is first-available in cache order, so exact duplicates pair up
// one to one by position.
func reconcile(logger *slog.Logger, trackID string, old, fresh []decoder.Event, modified *decoder.Event) IDSet {
	pool := slices.Clone(old)

	if modified != nil {
		i := slices.IndexFunc(pool, func(e decoder.Event) bool { return e.ID == modified.ID })
		if i < 0 {
			logger.Warn("replaced event is not in the cache",
				"track", trackID,
				"event_id", modified.ID,
				"name", modified.Record.Name,
			)
		} else {
			pool = slices.Delete(pool, i, i+1)
		}
	}

	added := make(IDSet)
	claimed := false
	for i := range fresh {
		n := &fresh[i]
		j := slices.IndexFunc(pool, func(o decoder.Event) bool { return o.Record.Equal(n.Record) })
		if j >= 0 {
			n.ID = pool[j].ID
			pool = slices.Delete(pool, j, j+1)
			continue
		}

		if modified != nil {
			if !claimed {
				n.ID = modified.ID
				claimed = true
				continue
			}
			logger.Warn("replaced event identifier already claimed, generating a new one",
				"track", trackID,
				"event_id", modified.ID,
				"name", n.Record.Name,
			)
		}
		added.Add(n.ID)
	}

	sortByTime(fresh)
	return added
}

// sortByTime sorts events by record time, keeping the relative order of
// events with equal times.
func sortByTime(events []decoder.Event) {
	slices.SortStableFunc(events, func(a, b decoder.Event) int {
		return cmp.Compare(a.Time(), b.Time())
	})
}
