package wiring_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/wiring"
)

func writeWorkflow(t *testing.T, dir string) string {
	path := filepath.Join(dir, "workflow.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - outputs: [a.csv]
    cmds: ["echo hi"]
`), 0o644))
	return path
}

func TestBuild_WiresAppFromValidWorkflow(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir)

	a, log, cleanup, err := wiring.Build(domain.Options{Workflow: path})
	defer cleanup()
	require.NoError(t, err)
	assert.NotNil(t, a)
	assert.NotNil(t, log)
}

func TestBuild_MissingWorkflowReturnsError(t *testing.T) {
	dir := t.TempDir()
	_, _, cleanup, err := wiring.Build(domain.Options{Workflow: filepath.Join(dir, "missing.yml")})
	defer cleanup()
	require.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestBuild_LogfileOpenFailureReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir)

	_, _, cleanup, err := wiring.Build(domain.Options{
		Workflow: path,
		Logfile:  filepath.Join(dir, "nonexistent-subdir", "log.txt"),
	})
	defer cleanup()
	require.Error(t, err)
}

func TestBuild_LogfileOpensAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir)
	logPath := filepath.Join(dir, "run.log")

	a, _, cleanup, err := wiring.Build(domain.Options{Workflow: path, Logfile: logPath})
	require.NoError(t, err)
	assert.NotNil(t, a)
	cleanup()

	_, statErr := os.Stat(logPath)
	require.NoError(t, statErr)
}

func TestBuild_WorkflowDirectoryResolvesToDefaultFileInside(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir)

	a, _, cleanup, err := wiring.Build(domain.Options{Workflow: dir})
	defer cleanup()
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestBuild_RelativeLogfileResolvesAgainstWorkflowDir(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir)

	_, _, cleanup, err := wiring.Build(domain.Options{Workflow: path, Logfile: "run.log"})
	defer cleanup()
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "run.log"))
	require.NoError(t, statErr)
}
