package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/animevent/internal/ir"
)

// TraceSnapshot is the golden-file form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap flattens the snapshot into the maps and slices
// ir.MarshalCanonical accepts. Added IDs are sorted.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		changes := make([]any, len(event.Changes))
		for j, c := range event.Changes {
			changes[j] = map[string]any{
				"track":    c.TrackID,
				"added":    c.Added.Sorted(),
				"external": c.External,
				"removed":  c.Removed,
			}
		}
		events := make([]any, len(event.Events))
		for j, e := range event.Events {
			events[j] = map[string]any{
				"id":   e.ID,
				"kind": e.Kind,
				"name": e.Name,
				"time": e.Time,
			}
		}
		steps[i] = map[string]any{
			"seq":     event.Seq,
			"step":    event.Step,
			"changes": changes,
			"events":  events,
		}
	}

	return map[string]any{
		"scenario": s.ScenarioName,
		"trace":    steps,
	}
}

// marshal renders the snapshot as canonical JSON followed by a newline.
func (s *TraceSnapshot) marshal() ([]byte, error) {
	data, err := ir.MarshalCanonical(s.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// MarshalTrace renders a result's trace exactly as it is stored in a
// golden file.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}
	return snapshot.marshal()
}

// RunWithGolden runs scenario and checks its trace against
// testdata/golden/<name>.golden, failing t on a mismatch. Regenerate with
//
//	go test ./internal/harness -update
//
// The error reports a scenario that could not run at all.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden checks an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	trace, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, trace)

	return nil
}
