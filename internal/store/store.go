package store

import (
	"context"
	"math"
	"reflect"
)

// Mutation is a registered synchronous function with exclusive permission to
// alter the data mapping. It is invoked as mutation(data, value) and its
// return value is handed back to the Commit caller.
type Mutation func(data map[string]any, value any) any

// CommitFunc is the restricted commit capability handed to actions. It is
// the store's own Commit, bound to the store's root record.
type CommitFunc func(name string, value any) (any, error)

// Action is a registered function whose only state-changing capability is
// the commit parameter. Actions may block (e.g. on a timer or external call)
// and should honor ctx while doing so.
type Action func(ctx context.Context, commit CommitFunc, value any) (any, error)

// Seed carries the three constructor inputs. Each slot is either the
// concrete mapping for its group or a zero-argument producer of it:
//
//	Data:      map[string]any        or func() map[string]any
//	Mutations: map[string]Mutation   or func() map[string]Mutation
//	Actions:   map[string]Action     or func() map[string]Action
//
// A func() any producer, or a map[string]any whose values satisfy the
// group's function signature, is also accepted. nil slots normalize to
// empty mappings.
type Seed struct {
	Data      any
	Mutations any
	Actions   any
}

// Store is the guarded handle. Its three slots are fixed for the instance's
// lifetime; only the contents of the data slot mutate, and only through
// Commit. None of the slots are exported, so construction-time configuration
// is permanently read-only from the outside.
type Store struct {
	token     string
	data      map[string]any
	mutations map[string]Mutation
	actions   map[string]Action
	sink      TraceSink
}

// Option configures optional store behavior at construction.
type Option func(*options)

type options struct {
	tokenGen TokenGenerator
	sink     TraceSink
}

// WithTokenGenerator overrides the store token generator.
// Tests use NewFixedGenerator for deterministic tokens.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(o *options) {
		o.tokenGen = g
	}
}

// WithTraceSink attaches an observational sink that receives a record of
// every Commit and Action dispatch. The sink never influences dispatch
// behavior.
func WithTraceSink(s TraceSink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// New constructs a guarded store from a seed.
//
// The three seed groups are normalized and validated independently; see the
// Code constants for the failure taxonomy. At least one of "data has a key"
// or "mutations has a key" must hold, otherwise construction fails with
// NoPointError. There is no partial-construction state: New either returns
// a fully valid store or an error.
func New(seed *Seed, opts ...Option) (*Store, error) {
	if seed == nil {
		return nil, newSeedRequiredError()
	}

	data, err := normalizeData(seed.Data)
	if err != nil {
		return nil, err
	}
	mutations, err := normalizeMutations(seed.Mutations)
	if err != nil {
		return nil, err
	}
	actions, err := normalizeActions(seed.Actions)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 && len(mutations) == 0 {
		return nil, newNoPointError()
	}

	cfg := options{tokenGen: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store{
		token:     cfg.tokenGen.Generate(),
		data:      data,
		mutations: mutations,
		actions:   actions,
		sink:      cfg.sink,
	}, nil
}

// Token returns the store's unique token, used for trace and log
// correlation. The token carries no state.
func (s *Store) Token() string {
	return s.token
}

// Get reads the live value at key.
//
// Reading the reserved "data" key is a deliberate trap and fails with
// NoDirectAccessForYou; the raw data mapping is never reachable from
// outside the store. Any other read never fails: a truthy value at key is
// returned, while absence yields nil.
//
// A falsy-but-present value (empty string, zero, false) is indistinguishable
// from absence under Get. Downstream consumers depend on this exact
// behavior; use Has to distinguish the two cases.
func (s *Store) Get(key string) (any, error) {
	if key == reservedData {
		return nil, newNoDirectAccessError()
	}
	v, ok := s.data[key]
	if !ok || !truthy(v) {
		return nil, nil
	}
	return v, nil
}

// Has reports whether key is present in data, regardless of the value's
// truthiness. Reserved words are never present.
func (s *Store) Has(key string) bool {
	_, ok := s.data[key]
	return ok
}

// Set is always a silent no-op. It never mutates data and never errors,
// for any key including the reserved words. This guarantees the only
// mutation path is Commit.
func (s *Store) Set(key string, value any) {
	_ = key
	_ = value
}

// truthy mirrors the read-path value check: nil, false, empty string, zero
// numbers, NaN, and nil pointers/containers read as absent. Non-empty
// containers and all other values are truthy, as are empty but non-nil ones.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return !rv.IsNil()
	}
	return true
}
