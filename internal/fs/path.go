package fs

import (
	"path"
	"strings"
)

// globMeta holds the characters doublestar treats as pattern syntax.
const globMeta = `*?[{\`

// HasMeta reports whether p contains any glob syntax.
func HasMeta(p string) bool {
	return strings.ContainsAny(p, globMeta)
}

// Clean normalises a slash-separated path. The empty path becomes ".".
func Clean(p string) string {
	if p == "" {
		return "."
	}
	return path.Clean(p)
}

// Split breaks a cleaned slash path into its segments. The root and "."
// have no segments.
func Split(p string) []string {
	p = strings.Trim(Clean(p), "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

// Rooted returns p as an absolute slash path.
func Rooted(p string) string {
	p = Clean(p)
	if p == "." {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
