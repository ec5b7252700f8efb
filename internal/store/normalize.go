package store

import (
	"context"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Reserved words. Forbidden as keys in every seed group, and in data after
// any mutation runs.
const (
	reservedData   = "data"
	reservedAction = "action"
	reservedCommit = "commit"
)

// Seed group names as they appear in error messages.
const (
	groupData      = "data"
	groupMutations = "mutations"
	groupActions   = "actions"
)

func isReservedWord(key string) bool {
	switch key {
	case reservedData, reservedAction, reservedCommit:
		return true
	}
	return false
}

// resolve unwraps a value-or-producer seed slot. A producer is invoked once
// with no arguments; anything else passes through unchanged. Pure function,
// deliberately not a method on Store.
func resolve(raw any) any {
	switch v := raw.(type) {
	case func() any:
		return v()
	case func() map[string]any:
		return v()
	case func() map[string]Mutation:
		return v()
	case func() map[string]Action:
		return v()
	default:
		return raw
	}
}

// canonicalKey normalizes a seed key to NFC so visually identical Unicode
// spellings collapse to a single key before validation.
func canonicalKey(k string) string {
	return norm.NFC.String(k)
}

// normalizeData turns the data seed slot into a concrete mapping.
//
// nil resolves to an empty mapping. Any non-mapping resolution fails with
// ValidationError. Reserved keys fail with DontTouchMyReservedwords. Data
// values are unconstrained.
//
// The result is a fresh shallow copy; the caller's mapping is never aliased,
// so later external writes to the seed cannot reach store state.
func normalizeData(raw any) (map[string]any, error) {
	resolved := resolve(raw)
	if resolved == nil {
		return map[string]any{}, nil
	}

	m, ok := resolved.(map[string]any)
	if !ok {
		return nil, newValidationError(groupData)
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		k = canonicalKey(k)
		if isReservedWord(k) {
			return nil, newReservedWordError(groupData, k)
		}
		out[k] = v
	}
	return out, nil
}

// normalizeMutations turns the mutations seed slot into a concrete mapping
// of callable mutations.
//
// Accepts map[string]Mutation directly, or map[string]any whose values
// satisfy the mutation signature. Non-callable values fail with
// DisallowedTypeError naming the actual type.
func normalizeMutations(raw any) (map[string]Mutation, error) {
	resolved := resolve(raw)
	if resolved == nil {
		return map[string]Mutation{}, nil
	}

	switch m := resolved.(type) {
	case map[string]Mutation:
		out := make(map[string]Mutation, len(m))
		for k, fn := range m {
			k = canonicalKey(k)
			if isReservedWord(k) {
				return nil, newReservedWordError(groupMutations, k)
			}
			if fn == nil {
				return nil, newDisallowedTypeError(groupMutations, "nil")
			}
			out[k] = fn
		}
		return out, nil

	case map[string]any:
		out := make(map[string]Mutation, len(m))
		for k, v := range m {
			k = canonicalKey(k)
			if isReservedWord(k) {
				return nil, newReservedWordError(groupMutations, k)
			}
			fn, err := asMutation(v)
			if err != nil {
				return nil, err
			}
			out[k] = fn
		}
		return out, nil

	default:
		return nil, newValidationError(groupMutations)
	}
}

// normalizeActions turns the actions seed slot into a concrete mapping of
// callable actions. Same rules as normalizeMutations, against the action
// signature.
func normalizeActions(raw any) (map[string]Action, error) {
	resolved := resolve(raw)
	if resolved == nil {
		return map[string]Action{}, nil
	}

	switch m := resolved.(type) {
	case map[string]Action:
		out := make(map[string]Action, len(m))
		for k, fn := range m {
			k = canonicalKey(k)
			if isReservedWord(k) {
				return nil, newReservedWordError(groupActions, k)
			}
			if fn == nil {
				return nil, newDisallowedTypeError(groupActions, "nil")
			}
			out[k] = fn
		}
		return out, nil

	case map[string]any:
		out := make(map[string]Action, len(m))
		for k, v := range m {
			k = canonicalKey(k)
			if isReservedWord(k) {
				return nil, newReservedWordError(groupActions, k)
			}
			fn, err := asAction(v)
			if err != nil {
				return nil, err
			}
			out[k] = fn
		}
		return out, nil

	default:
		return nil, newValidationError(groupActions)
	}
}

// asMutation accepts either the named Mutation type or a bare function with
// the same signature. Defined and unnamed func types are distinct dynamic
// types, so both cases are needed.
func asMutation(v any) (Mutation, error) {
	switch fn := v.(type) {
	case Mutation:
		if fn == nil {
			return nil, newDisallowedTypeError(groupMutations, "nil")
		}
		return fn, nil
	case func(map[string]any, any) any:
		if fn == nil {
			return nil, newDisallowedTypeError(groupMutations, "nil")
		}
		return fn, nil
	}
	return nil, newDisallowedTypeError(groupMutations, fmt.Sprintf("%T", v))
}

func asAction(v any) (Action, error) {
	switch fn := v.(type) {
	case Action:
		if fn == nil {
			return nil, newDisallowedTypeError(groupActions, "nil")
		}
		return fn, nil
	case func(context.Context, CommitFunc, any) (any, error):
		if fn == nil {
			return nil, newDisallowedTypeError(groupActions, "nil")
		}
		return fn, nil
	}
	return nil, newDisallowedTypeError(groupActions, fmt.Sprintf("%T", v))
}
