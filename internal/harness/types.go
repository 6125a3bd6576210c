package harness

import "github.com/roach88/animevent/internal/watch"

// TraceEvent records one executed step: the notifications it emitted and
// the cache afterwards.
type TraceEvent struct {
	Seq     int             `json:"seq"`
	Step    string          `json:"step"`
	Changes []watch.Change  `json:"changes"`
	Events  []EventSnapshot `json:"events"`
}

// EventSnapshot is the part of a cached event a trace records.
type EventSnapshot struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind"`
	Name string  `json:"name"`
	Time float32 `json:"time"`
}

// Result is the outcome of a scenario run. Pass is false once any
// expectation has failed.
type Result struct {
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
}

// NewResult returns a passing result with an empty trace.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TraceEvent{}, Errors: []string{}}
}

// AddError records a failed expectation.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
