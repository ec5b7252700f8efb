// Package registry maps names to mutations and actions.
//
// Seed files (CUE specs, YAML scenarios) cannot carry function values, so
// they reference mutations and actions by name. The registry resolves those
// names into the callables a store seed needs.
package registry

import (
	"fmt"

	"github.com/lineus/simplestore/internal/store"
)

// Registry holds named mutations and actions for a single application
// instance. The zero value is not usable; use New or Builtin.
type Registry struct {
	mutations map[string]store.Mutation
	actions   map[string]store.Action
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		mutations: make(map[string]store.Mutation),
		actions:   make(map[string]store.Action),
	}
}

// RegisterMutation adds a named mutation. Duplicate names are an error so a
// later registration can never silently shadow an earlier one.
func (r *Registry) RegisterMutation(name string, m store.Mutation) error {
	if m == nil {
		return fmt.Errorf("register mutation %q: nil function", name)
	}
	if _, exists := r.mutations[name]; exists {
		return fmt.Errorf("register mutation %q: already registered", name)
	}
	r.mutations[name] = m
	return nil
}

// RegisterAction adds a named action. Duplicate names are an error.
func (r *Registry) RegisterAction(name string, a store.Action) error {
	if a == nil {
		return fmt.Errorf("register action %q: nil function", name)
	}
	if _, exists := r.actions[name]; exists {
		return fmt.Errorf("register action %q: already registered", name)
	}
	r.actions[name] = a
	return nil
}

// Mutations resolves a list of names into a mutations mapping for a seed.
// Unknown names are an error naming the missing entry.
func (r *Registry) Mutations(names []string) (map[string]store.Mutation, error) {
	out := make(map[string]store.Mutation, len(names))
	for _, name := range names {
		m, ok := r.mutations[name]
		if !ok {
			return nil, fmt.Errorf("unknown mutation %q", name)
		}
		out[name] = m
	}
	return out, nil
}

// Actions resolves a list of names into an actions mapping for a seed.
func (r *Registry) Actions(names []string) (map[string]store.Action, error) {
	out := make(map[string]store.Action, len(names))
	for _, name := range names {
		a, ok := r.actions[name]
		if !ok {
			return nil, fmt.Errorf("unknown action %q", name)
		}
		out[name] = a
	}
	return out, nil
}
