package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.cue")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestValidateValidSpec(t *testing.T) {
	path := writeSpecFile(t, counterSpec)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `OK: store "counter"`)
	assert.Contains(t, buf.String(), "2 mutations")
}

func TestValidateValidSpecJSON(t *testing.T) {
	path := writeSpecFile(t, counterSpec)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	var result validateResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "counter", result.Store)
	assert.Equal(t, 1, result.DataKeys)
	assert.Equal(t, []string{"set", "inc"}, result.Mutations)
	assert.Equal(t, []string{"setLater"}, result.Actions)
}

func TestValidateMissingName(t *testing.T) {
	path := writeSpecFile(t, `
store: {
	data: { count: 0 }
}
`)

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "name is required")
}

func TestValidateUnknownBuiltin(t *testing.T) {
	path := writeSpecFile(t, `
store: {
	name: "bad"
	mutations: ["teleport"]
}
`)

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "teleport")
}

func TestValidateNonExistentFile(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"/nonexistent/store.cue"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
