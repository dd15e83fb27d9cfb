package fs

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobWalk expands pattern against a backend that can only stat and read
// directories. The literal prefix of the pattern is never read; every
// literal segment after it costs one Stat and every wildcard segment one
// ReadDir per candidate directory. A "**" segment matches the directory
// itself and everything below it.
//
// Candidates that vanish or turn out not to be directories are dropped,
// so a pattern that matches nothing yields nil and no error.
//
// A "**" segment reads every directory below its base while globbing,
// and a size computation lists those directories again afterwards. A
// remote "**" pattern therefore costs about two round trips per
// directory; prefer a literal directory when the whole subtree is wanted.
func GlobWalk(ctx context.Context, sl StatLister, pattern string) ([]PathStatus, error) {
	pattern = Clean(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, NewError(OpGlob, pattern, ErrBadPattern)
	}

	if !HasMeta(pattern) {
		st, err := sl.Stat(ctx, pattern)
		if err != nil {
			if isNoMatch(err) {
				return nil, nil
			}
			return nil, err
		}
		return []PathStatus{st}, nil
	}

	base, rest := doublestar.SplitPattern(pattern)
	fsLogger.Trace("Glob %q: base %q, pattern %q", pattern, base, rest)

	matches := []PathStatus{{Path: base, IsDir: true}}
	for _, seg := range strings.Split(rest, "/") {
		var next []PathStatus
		for _, m := range matches {
			if !m.IsDir {
				continue
			}
			found, err := expandSegment(ctx, sl, m.Path, seg)
			if err != nil {
				return nil, err
			}
			next = append(next, found...)
		}
		if len(next) == 0 {
			return nil, nil
		}
		matches = next
	}

	return uniqueSorted(matches), nil
}

func expandSegment(ctx context.Context, sl StatLister, dir, seg string) ([]PathStatus, error) {
	switch {
	case seg == "**":
		return descend(ctx, sl, dir)

	case !HasMeta(seg):
		st, err := sl.Stat(ctx, path.Join(dir, seg))
		if err != nil {
			if isNoMatch(err) {
				return nil, nil
			}
			return nil, err
		}
		return []PathStatus{st}, nil

	default:
		children, err := sl.ReadDir(ctx, dir)
		if err != nil {
			if isNoMatch(err) {
				return nil, nil
			}
			return nil, err
		}
		var found []PathStatus
		for _, child := range children {
			ok, err := doublestar.Match(seg, path.Base(child.Path))
			if err != nil {
				return nil, NewError(OpGlob, seg, ErrBadPattern)
			}
			if ok {
				found = append(found, child)
			}
		}
		return found, nil
	}
}

// descend returns dir and every entry below it.
func descend(ctx context.Context, sl StatLister, dir string) ([]PathStatus, error) {
	children, err := sl.ReadDir(ctx, dir)
	if err != nil {
		if isNoMatch(err) {
			return nil, nil
		}
		return nil, err
	}

	found := []PathStatus{{Path: dir, IsDir: true}}
	stack := append([]PathStatus(nil), children...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		found = append(found, cur)
		if !cur.IsDir {
			continue
		}

		children, err := sl.ReadDir(ctx, cur.Path)
		if err != nil {
			if isNoMatch(err) {
				continue
			}
			return nil, err
		}
		stack = append(stack, children...)
	}
	return found, nil
}

func isNoMatch(err error) bool {
	return IsNotExist(err) || errors.Is(err, ErrNotDirectory) || errors.Is(err, syscall.ENOTDIR)
}

func uniqueSorted(in []PathStatus) []PathStatus {
	seen := make(map[string]bool, len(in))
	out := make([]PathStatus, 0, len(in))
	for _, st := range in {
		if seen[st.Path] {
			continue
		}
		seen[st.Path] = true
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}
