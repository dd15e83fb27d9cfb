package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// LocalFS serves the host filesystem. Glob follows a symlink named by the
// pattern itself; List reports symlinks as files of the link's own size so
// a traversal can never loop.
type LocalFS struct{}

// NewLocalFS returns a FileSystem over the host filesystem.
func NewLocalFS() *LocalFS {
	return &LocalFS{}
}

// Glob implements FileSystem using doublestar, so "**" is supported.
func (l *LocalFS) Glob(ctx context.Context, pattern string) ([]PathStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return nil, NewError(OpGlob, pattern, ErrBadPattern)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			return nil, NewError(OpGlob, pattern, ErrBadPattern)
		}
		return nil, NewError(OpGlob, pattern, err)
	}

	statuses := make([]PathStatus, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			if os.IsNotExist(err) {
				// dangling symlink or removed since the glob
				fsLogger.Debug("Skipping vanished match: %q", match)
				continue
			}
			return nil, NewError(OpStat, match, err)
		}
		statuses = append(statuses, statusFromInfo(match, info))
	}
	return statuses, nil
}

// List implements FileSystem.
func (l *LocalFS) List(ctx context.Context, path string) ([]PathStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, NewError(OpList, path, err)
	}

	statuses := make([]PathStatus, 0, len(entries))
	for _, entry := range entries {
		childPath := filepath.Join(path, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, NewError(OpStat, childPath, err)
		}
		statuses = append(statuses, statusFromInfo(childPath, info))
	}
	return statuses, nil
}

func statusFromInfo(path string, info os.FileInfo) PathStatus {
	st := PathStatus{Path: path, IsDir: info.IsDir()}
	if !st.IsDir {
		st.Length = info.Size()
	}
	return st
}
