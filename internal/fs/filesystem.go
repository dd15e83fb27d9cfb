// Package fs defines the metadata operations fsdu needs from a filesystem
// and provides local, SFTP, FTP and FUSE-node implementations of them.
package fs

import (
	"context"

	"fsdu/internal/logging"
)

var (
	fsLogger = logging.GetLogger().WithPrefix("fs")
)

// PathStatus describes a single filesystem entry. Length is only
// meaningful when IsDir is false.
type PathStatus struct {
	Path   string
	IsDir  bool
	Length int64
}

// FileSystem is the pair of metadata operations a size computation needs.
// Implementations must be safe to call from independent goroutines or be
// used by one caller at a time.
type FileSystem interface {
	// Glob expands pattern into the entries it matches. A pattern that
	// matches nothing yields an empty (or nil) slice and no error.
	Glob(ctx context.Context, pattern string) ([]PathStatus, error)

	// List returns the immediate children of the directory at path.
	List(ctx context.Context, path string) ([]PathStatus, error)
}

// StatLister is implemented by backends that can look up a single entry
// and read a directory, but have no native glob. GlobWalk builds Glob on
// top of it.
type StatLister interface {
	Stat(ctx context.Context, path string) (PathStatus, error)
	ReadDir(ctx context.Context, path string) ([]PathStatus, error)
}
