package fs

import (
	"context"
	"sync/atomic"
)

// CountingFS wraps a FileSystem and counts the round trips made through it.
type CountingFS struct {
	fs    FileSystem
	globs atomic.Int64
	lists atomic.Int64
}

// NewCountingFS returns a FileSystem that counts calls before delegating to f.
func NewCountingFS(f FileSystem) *CountingFS {
	return &CountingFS{fs: f}
}

// Glob implements FileSystem.
func (c *CountingFS) Glob(ctx context.Context, pattern string) ([]PathStatus, error) {
	c.globs.Add(1)
	return c.fs.Glob(ctx, pattern)
}

// List implements FileSystem.
func (c *CountingFS) List(ctx context.Context, path string) ([]PathStatus, error) {
	c.lists.Add(1)
	return c.fs.List(ctx, path)
}

// Globs returns the number of Glob calls so far.
func (c *CountingFS) Globs() int64 {
	return c.globs.Load()
}

// Lists returns the number of List calls so far.
func (c *CountingFS) Lists() int64 {
	return c.lists.Load()
}

// Reset zeroes both counters.
func (c *CountingFS) Reset() {
	c.globs.Store(0)
	c.lists.Store(0)
}
