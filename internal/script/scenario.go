// Package script runs YAML scenarios against a guarded store.
//
// A scenario names a CUE seed spec, a list of steps (commits, actions,
// reads, and no-op writes), and assertions over the final state and the
// recorded trace. Runs are deterministic: store tokens are fixed and trace
// events are stamped by a logical clock, so the same scenario produces
// byte-identical traces for golden comparison.
package script

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one scripted store exercise.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description,omitempty"`

	// Spec is the path to the CUE seed spec, relative to the scenario file.
	Spec string `yaml:"spec"`

	// Token is an optional fixed store token for deterministic traces.
	// Defaults to "scenario-default".
	Token string `yaml:"token,omitempty"`

	// Steps run in order against the store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and the trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one interaction with the store. Exactly one of Commit, Action,
// Get, or Set must be present.
type Step struct {
	// Commit names a mutation to dispatch with Value.
	Commit string `yaml:"commit,omitempty"`

	// Action names an action to dispatch with Value.
	Action string `yaml:"action,omitempty"`

	// Get reads a key. Combined with Expect it checks the read value.
	Get string `yaml:"get,omitempty"`

	// Set writes a key. Writes are silent no-ops on the store; the step
	// exists so scenarios can demonstrate exactly that.
	Set string `yaml:"set,omitempty"`

	// Value is the dispatch value (commit/action) or written value (set).
	Value any `yaml:"value,omitempty"`

	// Expect, when present, is compared against the step's result.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError, when non-empty, requires the step to fail with an error
	// containing this substring.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates final state or the trace.
type Assertion struct {
	// Type is "state" or "trace_count".
	Type string `yaml:"type"`

	// Key is the data key (type: state).
	Key string `yaml:"key,omitempty"`

	// Equals is the expected value at Key (type: state).
	Equals any `yaml:"equals,omitempty"`

	// Absent requires Key to be missing from data (type: state).
	Absent bool `yaml:"absent,omitempty"`

	// Kind and Name select trace events (type: trace_count).
	Kind string `yaml:"kind,omitempty"`
	Name string `yaml:"name,omitempty"`

	// Count is the expected number of matching events (type: trace_count).
	Count int `yaml:"count,omitempty"`
}

// Load reads and validates a scenario file. The seed spec path is resolved
// relative to the scenario file's directory.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if sc.Name == "" {
		return nil, fmt.Errorf("scenario: name is required")
	}
	if sc.Spec == "" {
		return nil, fmt.Errorf("scenario %q: spec is required", sc.Name)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q: at least one step is required", sc.Name)
	}
	for i := range sc.Steps {
		if err := sc.Steps[i].validate(); err != nil {
			return nil, fmt.Errorf("scenario %q: step %d: %w", sc.Name, i+1, err)
		}
	}
	for i, a := range sc.Assertions {
		switch a.Type {
		case "state", "trace_count":
		default:
			return nil, fmt.Errorf("scenario %q: assertion %d: unknown type %q", sc.Name, i+1, a.Type)
		}
	}

	if !filepath.IsAbs(sc.Spec) {
		sc.Spec = filepath.Join(filepath.Dir(path), sc.Spec)
	}
	return &sc, nil
}

func (s *Step) validate() error {
	set := 0
	for _, v := range []string{s.Commit, s.Action, s.Get, s.Set} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of commit, action, get, set is required")
	}
	return nil
}
