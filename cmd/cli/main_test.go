package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fabrikgo/internal/cli"
)

// writeFixture writes one definition file into a temp dir and returns the
// dir path.
func writeFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "defs.hcl"), []byte(content), 0o644)
	require.NoError(t, err)
	return dir
}

const userFixture = `
factory "user" {
  attribute "name" {
    value = "Alice"
  }
  attribute "active" {
    value = true
  }
}
`

func TestRun_ShouldExitOnHelp(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer

	err := run(&out, []string{"-h"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer

	err := run(&out, nil)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "FACTORIES_PATH")
}

func TestRun_InvalidFlagReturnsExitError(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer

	err := run(&out, []string{"-log-level", "loud", "some-path"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	dir := writeFixture(t, `factory "user" {`)

	err := run(&out, []string{dir})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "application startup panicked")
}

func TestRun_ListsFactories(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	dir := writeFixture(t, userFixture)

	err := run(&out, []string{dir})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "user")
}

func TestRun_BuildsJSON(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	dir := writeFixture(t, userFixture)

	err := run(&out, []string{"-factory", "user", "-count", "2", dir})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, "Alice", rec["name"])
		assert.Equal(t, true, rec["active"])
	}
}

func TestRun_OverridesApply(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	dir := writeFixture(t, userFixture)

	err := run(&out, []string{"-factory", "user", "-set", "name=Zed", dir})
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "Zed", rec["name"])
}

func TestRun_UnknownFactory(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	dir := writeFixture(t, userFixture)

	err := run(&out, []string{"-factory", "ghost", dir})

	require.ErrorContains(t, err, "not found")
}
