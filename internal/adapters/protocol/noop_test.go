package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/drake/internal/core/ports"
)

func TestNoop_NameAndCmdsRequired(t *testing.T) {
	n := NewNoop()
	assert.Equal(t, "noop", n.Name())
	assert.False(t, n.CmdsRequired())
}

func TestNoop_RunAlwaysSucceeds(t *testing.T) {
	n := NewNoop()
	err := n.Run(context.Background(), ports.MaterializedStep{})
	assert.NoError(t, err)
}
