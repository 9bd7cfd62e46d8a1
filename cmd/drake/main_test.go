package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/drake/internal/drake"
)

func TestRun_VersionSubcommand(t *testing.T) {
	out := &bytes.Buffer{}
	code := run(context.Background(), []string{"version"}, strings.NewReader(""), out, &bytes.Buffer{})
	assert.Equal(t, drake.ExitOK, code)
	assert.Contains(t, out.String(), "drake version")
}

func TestRun_MissingWorkflowExitsUsage(t *testing.T) {
	dir := t.TempDir()
	errOut := &bytes.Buffer{}
	code := run(context.Background(),
		[]string{"--auto", "--workflow", filepath.Join(dir, "missing.yml")},
		strings.NewReader(""), &bytes.Buffer{}, errOut)
	assert.Equal(t, drake.ExitUsage, code)
	assert.Contains(t, errOut.String(), "Error:")
}

func TestRun_SuccessfulBuildExitsOK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - outputs: [a.csv]
    cmds: ["echo hi"]
`), 0o644))

	out := &bytes.Buffer{}
	code := run(context.Background(), []string{"--auto", "--workflow", path}, strings.NewReader(""), out, &bytes.Buffer{})
	assert.Equal(t, drake.ExitOK, code)
}

func TestRun_AbortedConfirmationSuppressesErrorLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - outputs: [a.csv]
    cmds: ["echo hi"]
`), 0o644))

	errOut := &bytes.Buffer{}
	code := run(context.Background(), []string{"--workflow", path}, strings.NewReader("n\n"), &bytes.Buffer{}, errOut)
	assert.Equal(t, drake.ExitAborted, code)
	assert.Empty(t, errOut.String())
}
