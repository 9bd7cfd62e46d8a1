package ports

import (
	"context"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/zerr"
)

// MaterializedStep is what the Step Materializer hands a Protocol.
type MaterializedStep struct {
	Inputs     []string
	Outputs    []string
	Cmds       []string // fully substituted, de-spaced command lines
	VarsEnv    map[string]string
	WorkingDir string
}

// Protocol is the execution capability contract a step's opts.protocol
// selects. Concrete protocols (exec, evaluator, container) are out of
// scope for the engine itself; it only depends on this contract and a
// registry keyed by name.
type Protocol interface {
	// Name returns the protocol's registry key.
	Name() string

	// CmdsRequired reports whether an empty command list fails
	// materialization for steps using this protocol.
	CmdsRequired() bool

	// Run executes the materialized step. A returned error is a fatal
	// ErrProtocolFailure that aborts the run.
	Run(ctx context.Context, step MaterializedStep) error
}

// Registry looks up a Protocol by name, the static registry populated at
// process start.
type Registry interface {
	Get(name string) (Protocol, bool)
}

// staticRegistry is the concrete Registry implementation: a read-only map
// built once at wiring time.
type staticRegistry map[string]Protocol

// NewRegistry builds a Registry from a set of protocols keyed by their own
// Name().
func NewRegistry(protocols ...Protocol) Registry {
	r := make(staticRegistry, len(protocols))
	for _, p := range protocols {
		r[p.Name()] = p
	}
	return r
}

func (r staticRegistry) Get(name string) (Protocol, bool) {
	p, ok := r[name]
	return p, ok
}

// EnsureKnownProtocol is a parse-time check that the external workflow
// parser calls for every step, so an unknown protocol name is caught at
// parse time rather than surfacing mid-run; kept here so the contract and
// its one caller-side validation live together.
func EnsureKnownProtocol(r Registry, name string) error {
	if _, ok := r.Get(name); !ok {
		return zerr.With(domain.ErrUnknownProtocol, "protocol", name)
	}
	return nil
}
