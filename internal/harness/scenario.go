package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/animevent/internal/trackfile"
)

// Scenario defines a watcher scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the track ID and
	// the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Track is the initial track content.
	Track trackfile.Document `yaml:"track"`

	// Steps run in order after the track is watched.
	Steps []Step `yaml:"steps"`
}

// Step performs exactly one action, then applies Expect and Capture to
// the resulting cache.
type Step struct {
	Add      *trackfile.EventDoc `yaml:"add,omitempty"`
	Replace  *ReplaceStep        `yaml:"replace,omitempty"`
	Delete   *DeleteStep         `yaml:"delete,omitempty"`
	External *ExternalStep       `yaml:"external,omitempty"`
	Poll     bool                `yaml:"poll,omitempty"`

	// Capture labels the identifier of the cached event at each index.
	Capture map[string]int `yaml:"capture,omitempty"`

	// Expect is checked after the action. Nil checks nothing.
	Expect *Expect `yaml:"expect,omitempty"`
}

// ReplaceStep replaces the cached event at Index.
type ReplaceStep struct {
	Index  int                `yaml:"index"`
	Record trackfile.EventDoc `yaml:"record"`
}

// DeleteStep deletes the cached event at Index.
type DeleteStep struct {
	Index int `yaml:"index"`
}

// ExternalStep edits the store behind the watcher's back. Remove deletes
// the track; otherwise Events replaces its records.
type ExternalStep struct {
	Events []trackfile.EventDoc `yaml:"events,omitempty"`
	Remove bool                 `yaml:"remove,omitempty"`
}

// Expect lists the checks for one step. Unset fields are not checked.
type Expect struct {
	// Count is the number of cached events.
	Count *int `yaml:"count,omitempty"`

	// Added is the number of new identifiers across the step's changes.
	Added *int `yaml:"added,omitempty"`

	// Kinds are the cached event kinds in cache order.
	Kinds []string `yaml:"kinds,omitempty"`

	// IDs maps a cache index to a captured label that must equal the
	// identifier at that index.
	IDs map[int]string `yaml:"ids,omitempty"`

	// Changed reports whether the step emitted any change notification.
	Changed *bool `yaml:"changed,omitempty"`
}

// Step kinds, as recorded in the trace.
const (
	StepAdd      = "add"
	StepReplace  = "replace"
	StepDelete   = "delete"
	StepExternal = "external"
	StepPoll     = "poll"
)

// Kind returns the step's action name, or "" when it sets none.
func (s Step) Kind() string {
	switch {
	case s.Add != nil:
		return StepAdd
	case s.Replace != nil:
		return StepReplace
	case s.Delete != nil:
		return StepDelete
	case s.External != nil:
		return StepExternal
	case s.Poll:
		return StepPoll
	}
	return ""
}

func (s Step) actionCount() int {
	n := 0
	for _, set := range []bool{s.Add != nil, s.Replace != nil, s.Delete != nil, s.External != nil, s.Poll} {
		if set {
			n++
		}
	}
	return n
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if err := trackfile.Validate(s.Track); err != nil {
		return fmt.Errorf("track: %w", err)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if n := step.actionCount(); n != 1 {
			return fmt.Errorf("steps[%d]: exactly one of add, replace, delete, external, poll is required, got %d", i, n)
		}
		if step.Replace != nil && step.Replace.Index < 0 {
			return fmt.Errorf("steps[%d].replace: index must be non-negative", i)
		}
		if step.Delete != nil && step.Delete.Index < 0 {
			return fmt.Errorf("steps[%d].delete: index must be non-negative", i)
		}
		if step.External != nil && step.External.Remove && len(step.External.Events) > 0 {
			return fmt.Errorf("steps[%d].external: remove and events are mutually exclusive", i)
		}
		for label, idx := range step.Capture {
			if label == "" || idx < 0 {
				return fmt.Errorf("steps[%d].capture: invalid entry %q: %d", i, label, idx)
			}
		}
	}

	return nil
}
