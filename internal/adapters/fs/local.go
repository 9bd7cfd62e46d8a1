// Package fs implements the Filesystem Facade: a uniform
// view over one or more storage backends keyed by scheme prefix, used by
// every core component that needs to ask "does this file exist" or "what
// is its mtime" without knowing which backend holds it.
package fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// LocalBackend implements ports.Backend for the "file:" scheme: a
// recursive directory scan skipping VCS and state dirs.
type LocalBackend struct {
	ignoreDirs map[string]struct{}
}

// NewLocalBackend creates a LocalBackend. It skips .git and .drake
// directories during recursive scans.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		ignoreDirs: map[string]struct{}{
			".git":              {},
			domain.StateDirName: {},
		},
	}
}

func (b *LocalBackend) DataIn(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, zerr.Wrap(err, "failed to stat path")
}

func (b *LocalBackend) NewestIn(ctx context.Context, path string) (ports.FileInfo, error) {
	return b.extremeIn(ctx, path, func(a, c int64) bool { return c > a })
}

func (b *LocalBackend) OldestIn(ctx context.Context, path string) (ports.FileInfo, error) {
	return b.extremeIn(ctx, path, func(a, c int64) bool { return c < a })
}

// extremeIn walks path (recursively, if it is a directory) and returns the
// FileInfo for which better(currentBest, candidate) is true most often,
// i.e. the newest or oldest file depending on better. The scan is fanned
// out across files with an errgroup bounded by NumCPU — an internal
// implementation detail of this one call, not visible to callers and not
// in tension with the engine's single-threaded execution model.
func (b *LocalBackend) extremeIn(
	ctx context.Context,
	path string,
	better func(currentBestMs, candidateMs int64) bool,
) (ports.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.FileInfo{}, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}

	if !info.IsDir() {
		return ports.FileInfo{Path: path, ModTimeMs: info.ModTime().UnixMilli()}, nil
	}

	paths, err := b.collectFiles(path)
	if err != nil {
		return ports.FileInfo{}, err
	}
	if len(paths) == 0 {
		return ports.FileInfo{}, zerr.With(domain.ErrMissingInput, "path", path)
	}

	results := make([]ports.FileInfo, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			fi, err := os.Stat(p)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to stat path"), "path", p)
			}
			results[i] = ports.FileInfo{Path: p, ModTimeMs: fi.ModTime().UnixMilli()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ports.FileInfo{}, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if better(best.ModTimeMs, r.ModTimeMs) {
			best = r
		}
	}
	return best, nil
}

func (b *LocalBackend) collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := b.ignoreDirs[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to walk directory"), "path", root)
	}
	return files, nil
}

func (b *LocalBackend) Rm(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return zerr.With(zerr.Wrap(err, "failed to remove path"), "path", path)
	}
	return nil
}

func (b *LocalBackend) Mv(_ context.Context, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create destination directory"), "path", dst)
	}
	if err := os.Rename(src, dst); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to move path"), "src", src)
	}
	return nil
}
