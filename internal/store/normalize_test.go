package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeData_NilIsEmpty(t *testing.T) {
	m, err := normalizeData(nil)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestNormalizeData_Producer(t *testing.T) {
	m, err := normalizeData(func() map[string]any {
		return map[string]any{"a": 1}
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, m)
}

func TestNormalizeData_ProducerOfAny(t *testing.T) {
	m, err := normalizeData(func() any {
		return map[string]any{"a": 1}
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, m)
}

func TestNormalizeData_NonMappingFails(t *testing.T) {
	for _, raw := range []any{42, "nope", []string{"a"}, true} {
		_, err := normalizeData(raw)
		require.Error(t, err)
		assert.True(t, IsCode(err, CodeValidation))
		assert.EqualError(t, err, "ValidationError: data doesn't resolve to an object")
	}
}

func TestNormalizeData_ProducerOfNonMappingFails(t *testing.T) {
	_, err := normalizeData(func() any { return 42 })
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeValidation))
}

func TestNormalizeData_ReturnsFreshCopy(t *testing.T) {
	seed := map[string]any{"a": 1}
	m, err := normalizeData(seed)
	require.NoError(t, err)

	// Mutating the caller's mapping must not reach the normalized copy.
	seed["b"] = 2
	_, ok := m["b"]
	assert.False(t, ok)
}

func TestNormalizeData_ReservedWords(t *testing.T) {
	for _, w := range []string{"data", "action", "commit"} {
		_, err := normalizeData(map[string]any{w: 1})
		require.Error(t, err, "reserved word %q", w)
		assert.True(t, IsCode(err, CodeReservedWord))
		assert.EqualError(t, err, "DontTouchMyReservedwords: "+w)
	}
}

func TestNormalizeData_NFCCollapsesKeys(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	decomposed := "café"
	precomposed := "café"

	m, err := normalizeData(map[string]any{decomposed: 1})
	require.NoError(t, err)
	_, ok := m[precomposed]
	assert.True(t, ok, "decomposed key should normalize to NFC")
}

func TestNormalizeMutations_TypedMapping(t *testing.T) {
	m, err := normalizeMutations(map[string]Mutation{
		"set": func(data map[string]any, value any) any {
			data["k"] = value
			return value
		},
	})
	require.NoError(t, err)
	require.Contains(t, m, "set")
}

func TestNormalizeMutations_LooseMappingWithCallable(t *testing.T) {
	m, err := normalizeMutations(map[string]any{
		"set": func(data map[string]any, value any) any { return nil },
	})
	require.NoError(t, err)
	require.Contains(t, m, "set")
}

func TestNormalizeMutations_NonCallableFails(t *testing.T) {
	_, err := normalizeMutations(map[string]any{"set": "not a function"})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeDisallowedType))
	assert.EqualError(t, err, "DisallowedTypeError: mutations can't accept string")
}

func TestNormalizeMutations_WrongSignatureFails(t *testing.T) {
	_, err := normalizeMutations(map[string]any{"set": func() {}})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeDisallowedType))
}

func TestNormalizeMutations_NilEntryFails(t *testing.T) {
	_, err := normalizeMutations(map[string]Mutation{"set": nil})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeDisallowedType))
}

func TestNormalizeMutations_ReservedWords(t *testing.T) {
	noop := Mutation(func(data map[string]any, value any) any { return nil })
	for _, w := range []string{"data", "action", "commit"} {
		_, err := normalizeMutations(map[string]Mutation{w: noop})
		require.Error(t, err, "reserved word %q", w)
		assert.True(t, IsCode(err, CodeReservedWord))
	}
}

func TestNormalizeActions_TypedMapping(t *testing.T) {
	m, err := normalizeActions(map[string]Action{
		"go": func(ctx context.Context, commit CommitFunc, value any) (any, error) {
			return nil, nil
		},
	})
	require.NoError(t, err)
	require.Contains(t, m, "go")
}

func TestNormalizeActions_NonCallableFails(t *testing.T) {
	_, err := normalizeActions(map[string]any{"go": 7})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeDisallowedType))
	assert.EqualError(t, err, "DisallowedTypeError: actions can't accept int")
}

func TestNormalizeActions_MutationSignatureIsNotAnAction(t *testing.T) {
	_, err := normalizeActions(map[string]any{
		"go": func(data map[string]any, value any) any { return nil },
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeDisallowedType))
}

func TestResolve_PassesThroughNonProducers(t *testing.T) {
	m := map[string]any{"a": 1}
	assert.Equal(t, any(m), resolve(m))
	assert.Nil(t, resolve(nil))
}
