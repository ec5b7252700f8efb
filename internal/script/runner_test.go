package script

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineus/simplestore/internal/tracelog"
)

func counterSpecPath() string {
	return filepath.Join("testdata", "specs", "counter.cue")
}

func TestRun_PassingScenario(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "scenarios", "counter-roundtrip.yaml"))
	require.NoError(t, err)

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 5)
}

func TestRun_FailingExpectation(t *testing.T) {
	sc := &Scenario{
		Name: "bad-expect",
		Spec: counterSpecPath(),
		Steps: []Step{
			{Commit: "inc", Value: map[string]any{"key": "count", "by": 1}, Expect: 999},
		},
	}

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected 999")
}

func TestRun_UnexpectedStepError(t *testing.T) {
	sc := &Scenario{
		Name: "unexpected-error",
		Spec: counterSpecPath(),
		Steps: []Step{
			{Commit: "missing", Value: nil},
		},
	}

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "NoSuchMutationError")
}

func TestRun_ExpectedErrorThatNeverHappens(t *testing.T) {
	sc := &Scenario{
		Name: "missing-error",
		Spec: counterSpecPath(),
		Steps: []Step{
			{Get: "count", ExpectError: "NoDirectAccessForYou"},
		},
	}

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error")
}

func TestRun_StateAssertionFailure(t *testing.T) {
	sc := &Scenario{
		Name: "bad-state",
		Spec: counterSpecPath(),
		Steps: []Step{
			{Commit: "inc", Value: map[string]any{"key": "count", "by": 2}},
		},
		Assertions: []Assertion{
			{Type: "state", Key: "count", Equals: 7},
		},
	}

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected 7")
}

func TestRun_AbsentAssertion(t *testing.T) {
	sc := &Scenario{
		Name: "absent",
		Spec: counterSpecPath(),
		Steps: []Step{
			{Get: "ghost"},
		},
		Assertions: []Assertion{
			{Type: "state", Key: "ghost", Absent: true},
			{Type: "state", Key: "count", Absent: true}, // present: should fail
		},
	}

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `"count" should be absent`)
}

func TestRun_MissingSpecFile(t *testing.T) {
	sc := &Scenario{
		Name:  "no-spec",
		Spec:  filepath.Join(t.TempDir(), "nope.cue"),
		Steps: []Step{{Get: "count"}},
	}

	_, err := Run(context.Background(), sc)
	require.Error(t, err)
}

func TestRun_RecordsDispatchesToTraceLog(t *testing.T) {
	l, err := tracelog.Open(":memory:")
	require.NoError(t, err)
	defer l.Close()

	sc, err := Load(filepath.Join("testdata", "scenarios", "counter-roundtrip.yaml"))
	require.NoError(t, err)

	result, err := Run(context.Background(), sc, WithTraceLog(l))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// Only dispatches reach the log: the inc commit and the failed nope
	// commit. Gets and sets are runner trace events, not store dispatches.
	dispatches, err := l.ReadByToken(context.Background(), "scenario-counter")
	require.NoError(t, err)
	require.Len(t, dispatches, 2)
	assert.Equal(t, "inc", dispatches[0].Name)
	assert.Equal(t, "nope", dispatches[1].Name)
	assert.Contains(t, dispatches[1].Err, "NoSuchMutationError")
}

func TestRun_ActionCommitsAppearInTraceLog(t *testing.T) {
	l, err := tracelog.Open(":memory:")
	require.NoError(t, err)
	defer l.Close()

	sc, err := Load(filepath.Join("testdata", "scenarios", "setlater-async.yaml"))
	require.NoError(t, err)

	result, err := Run(context.Background(), sc, WithTraceLog(l))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// The action's inner commit is a store dispatch, so the log sees both
	// the set commit and the setLater action.
	dispatches, err := l.ReadByToken(context.Background(), "scenario-setlater")
	require.NoError(t, err)
	require.Len(t, dispatches, 2)
	assert.Equal(t, "commit", dispatches[0].Kind)
	assert.Equal(t, "set", dispatches[0].Name)
	assert.Equal(t, "action", dispatches[1].Kind)
	assert.Equal(t, "setLater", dispatches[1].Name)
}
