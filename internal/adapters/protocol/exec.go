// Package protocol implements the concrete ports.Protocol adapters the
// engine dispatches to by name: exec runs a materialized step's commands
// as shell, noop satisfies steps that exist only to group tags.
package protocol

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Exec runs a materialized step's command lines as a pty-backed shell
// subprocess: each command line is executed in turn via "sh -c", output
// streamed line-by-line to the logger, and the whole step fails fast on
// the first nonzero exit.
type Exec struct {
	logger ports.Logger
}

// NewExec builds the exec protocol.
func NewExec(logger ports.Logger) *Exec {
	return &Exec{logger: logger}
}

// Name identifies this protocol in the registry.
func (e *Exec) Name() string { return "exec" }

// CmdsRequired reports that exec steps must materialize at least one
// command line.
func (e *Exec) CmdsRequired() bool { return true }

// Run executes step.Cmds in order within step.WorkingDir, with
// step.VarsEnv merged over the process environment.
func (e *Exec) Run(ctx context.Context, step ports.MaterializedStep) error {
	env := buildEnv(step.VarsEnv)

	for _, line := range step.Cmds {
		if err := e.runLine(ctx, line, step.WorkingDir, env); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exec) runLine(ctx context.Context, line, workingDir string, env []string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	if workingDir != "" {
		cmd.Dir = workingDir
	}
	cmd.Env = env

	stdoutLog := &logWriter{logger: e.logger, level: "info"}
	defer stdoutLog.Close()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}
	defer ptmx.Close()

	_, _ = io.Copy(stdoutLog, ptmx)

	if err := cmd.Wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if asExitError(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return fmt.Errorf("%w: %w", domain.ErrProtocolFailure, zerr.With(err, "exit_code", exitCode))
	}
	return nil
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}

func buildEnv(vars map[string]string) []string {
	env := os.Environ()
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	return env
}

// logWriter forwards a subprocess's combined stdout/stderr to a
// ports.Logger a line at a time.
type logWriter struct {
	logger ports.Logger
	level  string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if w.level == "info" {
		w.logger.Info(msg)
	} else {
		w.logger.Error(zerr.New(msg))
	}
}
