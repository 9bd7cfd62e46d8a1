package fs

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/zerr"
)

const defaultScheme = "file"

// Facade implements ports.Filesystem by dispatching to a small per-scheme
// registry of ports.Backend. "file:" is the default scheme: paths without
// an explicit scheme are treated as local paths relative to base.
type Facade struct {
	base     string
	backends map[string]ports.Backend
}

// NewFacade builds a Filesystem rooted at base (the directory containing
// the workflow file) with the given scheme -> Backend registrations.
// "file" always resolves to a LocalBackend if not explicitly overridden.
func NewFacade(base string, backends map[string]ports.Backend) *Facade {
	reg := make(map[string]ports.Backend, len(backends)+1)
	for k, v := range backends {
		reg[k] = v
	}
	if _, ok := reg[defaultScheme]; !ok {
		reg[defaultScheme] = NewLocalBackend()
	}
	return &Facade{base: base, backends: reg}
}

func (f *Facade) PathScheme(path string) string {
	if i := strings.Index(path, "://"); i >= 0 {
		return path[:i]
	}
	if i := strings.Index(path, ":"); i >= 0 && !strings.HasPrefix(path[i+1:], "\\") && !isDriveLetter(path) {
		return path[:i]
	}
	return defaultScheme
}

func isDriveLetter(path string) bool {
	return len(path) >= 2 && path[1] == ':' && ((path[0] >= 'a' && path[0] <= 'z') || (path[0] >= 'A' && path[0] <= 'Z'))
}

func (f *Facade) PathFilename(path string) string {
	scheme := f.PathScheme(path)
	if scheme == defaultScheme {
		if strings.HasPrefix(path, "file://") {
			return path[len("file://"):]
		}
		if strings.HasPrefix(path, "file:") {
			return path[len("file:"):]
		}
		return path
	}
	if i := strings.Index(path, "://"); i >= 0 {
		return path[i+3:]
	}
	if i := strings.Index(path, ":"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func (f *Facade) NormalizedPath(path string) string {
	scheme := f.PathScheme(path)
	name := f.PathFilename(path)
	if scheme == defaultScheme {
		if !filepath.IsAbs(name) {
			name = filepath.Join(f.base, name)
		}
		return filepath.Clean(name)
	}
	return scheme + "://" + name
}

func (f *Facade) GetBackend(path string) (ports.Backend, error) {
	scheme := f.PathScheme(path)
	b, ok := f.backends[scheme]
	if !ok {
		return nil, zerr.With(domain.ErrUnsupportedScheme, "scheme", scheme)
	}
	return b, nil
}

func (f *Facade) DataIn(ctx context.Context, path string) (bool, error) {
	b, err := f.GetBackend(path)
	if err != nil {
		return false, err
	}
	return b.DataIn(ctx, f.resolve(path))
}

func (f *Facade) NewestIn(ctx context.Context, path string) (ports.FileInfo, error) {
	b, err := f.GetBackend(path)
	if err != nil {
		return ports.FileInfo{}, err
	}
	return b.NewestIn(ctx, f.resolve(path))
}

func (f *Facade) OldestIn(ctx context.Context, path string) (ports.FileInfo, error) {
	b, err := f.GetBackend(path)
	if err != nil {
		return ports.FileInfo{}, err
	}
	return b.OldestIn(ctx, f.resolve(path))
}

func (f *Facade) Rm(ctx context.Context, path string) error {
	b, err := f.GetBackend(path)
	if err != nil {
		return err
	}
	return b.Rm(ctx, f.resolve(path))
}

func (f *Facade) Mv(ctx context.Context, src, dst string) error {
	srcBackend, err := f.GetBackend(src)
	if err != nil {
		return err
	}
	dstBackend, err := f.GetBackend(dst)
	if err != nil {
		return err
	}
	if f.PathScheme(src) != f.PathScheme(dst) {
		return zerr.With(domain.ErrBackendMismatch, "src", src)
	}
	_ = dstBackend
	return srcBackend.Mv(ctx, f.resolve(src), f.resolve(dst))
}

// resolve strips the scheme for local paths (backends deal in bare
// filesystem paths) and rebases relative paths against f.base.
func (f *Facade) resolve(path string) string {
	name := f.PathFilename(path)
	if f.PathScheme(path) == defaultScheme && !filepath.IsAbs(name) {
		name = filepath.Join(f.base, name)
	}
	return name
}
