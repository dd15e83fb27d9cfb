// Package pathsize computes how many bytes a path, or every path a glob
// matches, occupies on a FileSystem.
//
// A computation makes exactly one Glob call, for the pattern itself, and
// exactly one List call per directory it reaches. No other metadata is
// requested and nothing is cached between computations.
package pathsize

import (
	"context"

	"fsdu/internal/fs"
	"fsdu/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("pathsize")
)

// NotFound is the size Compute reports when the pattern matches nothing.
const NotFound int64 = -1

// Result is the outcome of a size computation.
type Result struct {
	// Found is false when the pattern matched no entries; the other
	// fields are then zero.
	Found bool
	// Bytes is the sum of the lengths of every regular file reached.
	Bytes int64
	// Files is the number of regular files counted.
	Files int
	// Directories is the number of directories listed.
	Directories int
}

// Calculate resolves pattern on fsys and sums the size of every regular
// file at or below the matches. Errors from fsys are returned unchanged.
func Calculate(ctx context.Context, fsys fs.FileSystem, pattern string) (Result, error) {
	roots, err := fsys.Glob(ctx, pattern)
	if err != nil {
		return Result{}, err
	}
	if len(roots) == 0 {
		logger.Debug("Pattern %q matched nothing", pattern)
		return Result{}, nil
	}
	logger.Debug("Pattern %q matched %d entries", pattern, len(roots))

	res := Result{Found: true}

	// Overlapping matches (a directory and something inside it, as "**"
	// produces) must not be listed or counted twice.
	listed := make(map[string]bool)
	var counted map[string]bool
	if len(roots) > 1 {
		counted = make(map[string]bool)
	}

	stack := make([]fs.PathStatus, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !st.IsDir {
			if counted != nil {
				if counted[st.Path] {
					continue
				}
				counted[st.Path] = true
			}
			res.Bytes += st.Length
			res.Files++
			continue
		}

		if listed[st.Path] {
			continue
		}
		listed[st.Path] = true

		children, err := fsys.List(ctx, st.Path)
		if err != nil {
			return Result{}, err
		}
		res.Directories++
		logger.Trace("Listed %q: %d children", st.Path, len(children))

		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	logger.Debug("Pattern %q: %d bytes in %d files, %d directories",
		pattern, res.Bytes, res.Files, res.Directories)
	return res, nil
}

// Compute is Calculate with the result folded into a single number:
// NotFound when nothing matches, otherwise the byte total.
func Compute(ctx context.Context, fsys fs.FileSystem, pattern string) (int64, error) {
	res, err := Calculate(ctx, fsys, pattern)
	if err != nil {
		return 0, err
	}
	if !res.Found {
		return NotFound, nil
	}
	return res.Bytes, nil
}
