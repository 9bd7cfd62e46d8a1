package protocol

import (
	"context"

	"go.trai.ch/drake/internal/core/ports"
)

// Noop satisfies steps whose only purpose is grouping tags: a step with
// no commands is only valid under a protocol that does not require them.
type Noop struct{}

// NewNoop builds the noop protocol.
func NewNoop() *Noop { return &Noop{} }

// Name identifies this protocol in the registry.
func (n *Noop) Name() string { return "noop" }

// CmdsRequired reports that noop steps never need commands.
func (n *Noop) CmdsRequired() bool { return false }

// Run does nothing.
func (n *Noop) Run(_ context.Context, _ ports.MaterializedStep) error { return nil }
