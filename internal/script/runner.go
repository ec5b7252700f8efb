package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lineus/simplestore/internal/registry"
	"github.com/lineus/simplestore/internal/seedspec"
	"github.com/lineus/simplestore/internal/store"
	"github.com/lineus/simplestore/internal/testutil"
	"github.com/lineus/simplestore/internal/tracelog"
)

// TraceEvent is one recorded step.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Kind   string `json:"kind"` // commit, action, get, set
	Name   string `json:"name"` // dispatch name or data key
	Value  any    `json:"value,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures. Empty when Pass.
	Errors []string `json:"errors,omitempty"`
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// RunOption configures a scenario run.
type RunOption func(*runConfig)

type runConfig struct {
	registry *registry.Registry
	trace    *tracelog.Log
	logger   *slog.Logger
}

// WithRegistry overrides the builtin registry.
func WithRegistry(r *registry.Registry) RunOption {
	return func(c *runConfig) {
		c.registry = r
	}
}

// WithTraceLog records every store dispatch (including commits made inside
// actions) to a tracelog database.
func WithTraceLog(l *tracelog.Log) RunOption {
	return func(c *runConfig) {
		c.trace = l
	}
}

// WithLogger sets the run logger. The default discards logs.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns its result.
//
// Run fails with an error only when the scenario cannot be executed at all
// (spec compilation, store construction, trace log writes). Step and
// assertion failures are reported in the Result instead.
func Run(ctx context.Context, sc *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		registry: registry.Builtin(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	spec, err := seedspec.CompileFile(sc.Spec)
	if err != nil {
		return nil, fmt.Errorf("compile seed spec: %w", err)
	}
	seed, err := spec.Seed(cfg.registry)
	if err != nil {
		return nil, err
	}

	token := sc.Token
	if token == "" {
		token = "scenario-default"
	}

	storeOpts := []store.Option{
		store.WithTokenGenerator(store.NewFixedGenerator(token)),
	}
	var sink *tracelog.Sink
	if cfg.trace != nil {
		sink = tracelog.NewSink(ctx, cfg.trace, token)
		storeOpts = append(storeOpts, store.WithTraceSink(sink))
	}

	s, err := store.New(seed, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("construct store: %w", err)
	}

	cfg.logger.Info("scenario starting", "name", sc.Name, "store", spec.Name, "token", token)

	result := &Result{Pass: true, Trace: []TraceEvent{}}
	clock := testutil.NewDeterministicClock()

	for i, step := range sc.Steps {
		ev := executeStep(ctx, s, step, clock)
		result.Trace = append(result.Trace, ev)
		cfg.logger.Debug("step executed",
			"seq", ev.Seq, "kind", ev.Kind, "name", ev.Name, "error", ev.Error)
		checkExpectation(result, i, step, ev)
	}

	if sink != nil {
		if err := sink.Err(); err != nil {
			return nil, fmt.Errorf("trace log: %w", err)
		}
	}

	evaluateAssertions(result, sc.Assertions, s)

	cfg.logger.Info("scenario finished", "name", sc.Name, "pass", result.Pass)
	return result, nil
}

func executeStep(ctx context.Context, s *store.Store, step Step, clock *testutil.DeterministicClock) TraceEvent {
	switch {
	case step.Commit != "":
		result, err := s.Commit(step.Commit, step.Value)
		return newEvent(clock.Next(), "commit", step.Commit, step.Value, result, err)

	case step.Action != "":
		result, err := s.Action(ctx, step.Action, step.Value)
		return newEvent(clock.Next(), "action", step.Action, step.Value, result, err)

	case step.Get != "":
		v, err := s.Get(step.Get)
		return newEvent(clock.Next(), "get", step.Get, nil, v, err)

	default:
		s.Set(step.Set, step.Value)
		return newEvent(clock.Next(), "set", step.Set, step.Value, nil, nil)
	}
}

func newEvent(seq int64, kind, name string, value, result any, err error) TraceEvent {
	ev := TraceEvent{Seq: seq, Kind: kind, Name: name, Value: value}
	if err != nil {
		ev.Error = err.Error()
		return ev
	}
	ev.Result = result
	return ev
}

func checkExpectation(r *Result, i int, step Step, ev TraceEvent) {
	switch {
	case step.ExpectError != "":
		if ev.Error == "" {
			r.AddError(fmt.Sprintf("step %d: expected error containing %q, got none", i+1, step.ExpectError))
		} else if !strings.Contains(ev.Error, step.ExpectError) {
			r.AddError(fmt.Sprintf("step %d: expected error containing %q, got %q", i+1, step.ExpectError, ev.Error))
		}

	case ev.Error != "":
		r.AddError(fmt.Sprintf("step %d: %s", i+1, ev.Error))

	case step.Expect != nil:
		if !looseEqual(ev.Result, step.Expect) {
			r.AddError(fmt.Sprintf("step %d: expected %v, got %v", i+1, step.Expect, ev.Result))
		}
	}
}
