// Package ports defines the interfaces the core engine consumes from its
// external collaborators: storage, execution protocols and logging.
package ports

import "context"

// FileInfo describes a single file's identity and modification time, as
// returned by NewestIn/OldestIn.
type FileInfo struct {
	Path      string
	ModTimeMs int64
}

// Backend is the per-scheme filesystem implementation. A scheme-agnostic
// Filesystem facade is built on top of a small registry of Backends.
type Backend interface {
	// DataIn reports whether a regular data artifact exists at path.
	DataIn(ctx context.Context, path string) (bool, error)

	// NewestIn resolves to the newest file under path: if path is a
	// directory, scans recursively; if it is a single file, returns it.
	NewestIn(ctx context.Context, path string) (FileInfo, error)

	// OldestIn is the symmetric counterpart of NewestIn.
	OldestIn(ctx context.Context, path string) (FileInfo, error)

	// Rm removes path. Absence of path is not an error.
	Rm(ctx context.Context, path string) error

	// Mv moves src to dst. Both paths are on this backend.
	Mv(ctx context.Context, src, dst string) error
}

// Filesystem is the scheme-agnostic facade every core component uses.
// It dispatches to the Backend registered for a path's scheme.
type Filesystem interface {
	// DataIn reports whether a regular data artifact exists at path.
	DataIn(ctx context.Context, path string) (bool, error)

	// NewestIn resolves to the newest file under path.
	NewestIn(ctx context.Context, path string) (FileInfo, error)

	// OldestIn resolves to the oldest file under path.
	OldestIn(ctx context.Context, path string) (FileInfo, error)

	// GetBackend returns the backend registered for path's scheme.
	GetBackend(path string) (Backend, error)

	// PathScheme returns the scheme prefix of path (e.g. "file").
	PathScheme(path string) string

	// PathFilename strips the scheme prefix from path.
	PathFilename(path string) string

	// NormalizedPath returns the canonical, absolute form of path: a bare
	// filesystem path for the default "file" scheme, "<scheme>://<name>"
	// for any other scheme.
	NormalizedPath(path string) string

	// Rm removes path via its backend.
	Rm(ctx context.Context, path string) error

	// Mv moves src to dst, failing with ErrBackendMismatch if they are on
	// different backends.
	Mv(ctx context.Context, src, dst string) error
}
