package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/zerr"
)

func TestLogger_InfoSuppressedWhenQuiet(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New()
	l.SetOutput(buf)
	l.SetQuiet(true)

	l.Info("hello")
	assert.Empty(t, buf.String())
}

func TestLogger_InfoWritesWhenNotQuiet(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New()
	l.SetOutput(buf)

	l.Info("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestLogger_WarnAlwaysWritesEvenWhenQuiet(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New()
	l.SetOutput(buf)
	l.SetQuiet(true)

	l.Warn("careful")
	assert.Contains(t, buf.String(), "careful")
}

func TestLogger_ErrorNilIsNoop(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New()
	l.SetOutput(buf)

	l.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_ErrorFormatsZerrChainWithCauses(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New()
	l.SetOutput(buf)

	base := errors.New("disk full")
	wrapped := zerr.Wrap(base, "failed to write output")

	l.Error(wrapped)
	out := buf.String()
	assert.Contains(t, out, "Error: failed to write output")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "-> disk full")
}

func TestLogger_ErrorJSONModeUsesStructuredField(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New()
	l.SetOutput(buf)
	l.SetJSON(true)

	l.Error(errors.New("boom"))
	out := buf.String()
	assert.Contains(t, out, `"msg":"operation failed"`)
	assert.Contains(t, out, "boom")
}

func TestLogger_SetOutputNilFallsBackToStderr(t *testing.T) {
	l := New()
	l.SetOutput(nil)
	assert.NotNil(t, l.output)
}
