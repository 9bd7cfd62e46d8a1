package domain

import "go.trai.ch/zerr"

// Sentinel errors for the engine's error taxonomy. Components
// attach structured fields with zerr.With and preserve causal chains with
// zerr.Wrap; the CLI boundary is the only place that renders a chain.
var (
	// ErrUnknownMethod is returned when a step references a method name that
	// does not exist in the parse tree.
	ErrUnknownMethod = zerr.New("unknown method")

	// ErrUnknownProtocol is returned when a step references a protocol name
	// that is not registered.
	ErrUnknownProtocol = zerr.New("unknown protocol")

	// ErrCycleDetected is returned when the step dependency graph contains a
	// cycle. The core assumes acyclicity; the parser is responsible for
	// catching this before the engine ever sees the tree.
	ErrCycleDetected = zerr.New("cycle detected in step graph")

	// ErrMissingInput is returned by the Staleness Oracle when required
	// inputs are absent and the step is not triggered.
	ErrMissingInput = zerr.New("missing input")

	// ErrUndefinedVariable is returned by the Materializer when a command
	// fragment references a variable absent from the merged scope.
	ErrUndefinedVariable = zerr.New("undefined variable")

	// ErrEmptyCommands is returned when a step's protocol requires commands
	// but materialization produced none.
	ErrEmptyCommands = zerr.New("empty command list")

	// ErrUnsupportedOptionalInput is returned when a step declares an input
	// beginning with "?"; optional inputs are not supported.
	ErrUnsupportedOptionalInput = zerr.New("optional inputs are not supported")

	// ErrInvalidTarget is returned when a target expression resolves to no
	// step.
	ErrInvalidTarget = zerr.New("target did not match any step")

	// ErrInvalidArgument is returned by CLI parsing for a malformed option.
	ErrInvalidArgument = zerr.New("invalid argument")

	// ErrProtocolFailure is returned when a protocol's Run reports failure.
	ErrProtocolFailure = zerr.New("protocol execution failed")

	// ErrWorkflowNotFound is returned when the resolved workflow path does
	// not exist.
	ErrWorkflowNotFound = zerr.New("workflow file not found")

	// ErrSyntax is returned by the workflow parser for malformed input.
	ErrSyntax = zerr.New("syntax error")

	// ErrBackendMismatch is returned when a move/merge operation is asked to
	// cross filesystem backends.
	ErrBackendMismatch = zerr.New("source and destination are on different filesystem backends")

	// ErrUnsupportedScheme is returned when a path's scheme has no
	// registered backend.
	ErrUnsupportedScheme = zerr.New("unsupported filesystem scheme")

	// ErrBranchAndMergeBranch is returned when --branch and --merge-branch
	// are both set; they are mutually exclusive.
	ErrBranchAndMergeBranch = zerr.New("--branch and --merge-branch are mutually exclusive")

	// ErrAborted is returned when the user declines an interactive
	// confirmation prompt.
	ErrAborted = zerr.New("aborted by user")
)
