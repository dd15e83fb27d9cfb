package vmap

import (
	fusefs "bazil.org/fuse/fs"
)

// Node represents a read-only node of the virtual tree
type Node interface {
	fusefs.Node
}

// Directory represents a listable directory of the virtual tree
type Directory interface {
	Node
	fusefs.NodeStringLookuper
	fusefs.HandleReadDirAller
}

var (
	_ fusefs.FS = (*VMapFS)(nil)
	_ Directory = (*Dir)(nil)
	_ Directory = (*SourceDir)(nil)
	_ Node      = (*File)(nil)
)
