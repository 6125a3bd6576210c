package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/watch"
)

// AssertionError describes one failed expectation.
type AssertionError struct {
	Step     int    // zero-based step index
	Field    string // expect field that failed
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("steps[%d].expect.%s: expected %s, got %s", e.Step, e.Field, e.Expected, e.Actual)
}

// checkExpect evaluates exp against the cache and the step's changes and
// returns one message per failed check, in field order.
func checkExpect(step int, exp Expect, events []decoder.Event, changes []watch.Change, labels map[string]string) []string {
	var errs []string
	fail := func(field, expected, actual string) {
		errs = append(errs, (&AssertionError{Step: step, Field: field, Expected: expected, Actual: actual}).Error())
	}

	if exp.Count != nil && *exp.Count != len(events) {
		fail("count", fmt.Sprint(*exp.Count), fmt.Sprint(len(events)))
	}

	if exp.Added != nil {
		added := 0
		for _, c := range changes {
			added += len(c.Added)
		}
		if *exp.Added != added {
			fail("added", fmt.Sprint(*exp.Added), fmt.Sprint(added))
		}
	}

	if exp.Kinds != nil {
		kinds := make([]string, len(events))
		for i, e := range events {
			kinds[i] = string(e.Kind)
		}
		if !slices.Equal(exp.Kinds, kinds) {
			fail("kinds", "["+strings.Join(exp.Kinds, ", ")+"]", "["+strings.Join(kinds, ", ")+"]")
		}
	}

	indexes := make([]int, 0, len(exp.IDs))
	for i := range exp.IDs {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)
	for _, i := range indexes {
		label := exp.IDs[i]
		want, ok := labels[label]
		field := fmt.Sprintf("ids[%d]", i)
		switch {
		case !ok:
			fail(field, fmt.Sprintf("captured label %q", label), "no such label")
		case i < 0 || i >= len(events):
			fail(field, fmt.Sprintf("%s (%s)", want, label), fmt.Sprintf("index out of range (%d events)", len(events)))
		case events[i].ID != want:
			fail(field, fmt.Sprintf("%s (%s)", want, label), events[i].ID)
		}
	}

	if exp.Changed != nil && *exp.Changed != (len(changes) > 0) {
		fail("changed", fmt.Sprint(*exp.Changed), fmt.Sprint(len(changes) > 0))
	}

	return errs
}
