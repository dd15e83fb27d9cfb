package vmap

import (
	"path"
	"path/filepath"
	"strings"
)

// SourcePath is a path below the source root, always relative and
// slash-separated. The source root itself is the empty path.
type SourcePath struct {
	path string
}

// NewSourcePath cleans p and makes it relative to the source root.
func NewSourcePath(p string) *SourcePath {
	cleaned := path.Clean("/" + filepath.ToSlash(p))
	return &SourcePath{path: strings.TrimPrefix(cleaned, "/")}
}

// String returns the string representation of the path
func (sp *SourcePath) String() string {
	return sp.path
}

// Join returns the child path with the given name
func (sp *SourcePath) Join(name string) *SourcePath {
	return NewSourcePath(sp.path + "/" + name)
}

// FullPath returns the host path by joining with the source root
func (sp *SourcePath) FullPath(sourceRoot string) string {
	return filepath.Join(sourceRoot, filepath.FromSlash(sp.path))
}

// IsRoot returns true for the source root itself
func (sp *SourcePath) IsRoot() bool {
	return sp.path == ""
}

// VirtualPath is an absolute slash-separated path in the virtual tree.
type VirtualPath struct {
	path string
}

// NewVirtualPath cleans p and makes it absolute.
func NewVirtualPath(p string) *VirtualPath {
	return &VirtualPath{path: path.Clean("/" + p)}
}

// String returns the string representation of the path
func (vp *VirtualPath) String() string {
	return vp.path
}

// Join returns the child path with the given name
func (vp *VirtualPath) Join(name string) *VirtualPath {
	return NewVirtualPath(vp.path + "/" + name)
}

// Parent returns a VirtualPath representing the parent directory
func (vp *VirtualPath) Parent() *VirtualPath {
	return NewVirtualPath(path.Dir(vp.path))
}

// Base returns the last element of the path
func (vp *VirtualPath) Base() string {
	return path.Base(vp.path)
}

// IsRoot returns true if this is the root virtual path "/"
func (vp *VirtualPath) IsRoot() bool {
	return vp.path == "/"
}

// childName returns the name of the direct child of dir that p denotes,
// or "" when p is not directly inside dir.
func childName(dir *VirtualPath, p string) string {
	prefix := dir.String() + "/"
	if dir.IsRoot() {
		prefix = "/"
	}
	if p == "/" || !strings.HasPrefix(p, prefix) {
		return ""
	}
	rel := strings.TrimPrefix(p, prefix)
	if rel == "" || strings.Contains(rel, "/") {
		return ""
	}
	return rel
}
