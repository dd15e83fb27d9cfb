package fs

import (
	"context"
	"errors"
	"path"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

// NodeFS measures a FUSE node tree in-process, without mounting it.
// Directories must implement NodeStringLookuper and HandleReadDirAller on
// the node itself; sizes come from Attr.
type NodeFS struct {
	tree fusefs.FS
}

// NewNodeFS returns a FileSystem over the given FUSE tree.
func NewNodeFS(tree fusefs.FS) *NodeFS {
	return &NodeFS{tree: tree}
}

// Glob implements FileSystem. Patterns are resolved from the tree root.
func (n *NodeFS) Glob(ctx context.Context, pattern string) ([]PathStatus, error) {
	return GlobWalk(ctx, n, Rooted(pattern))
}

// List implements FileSystem.
func (n *NodeFS) List(ctx context.Context, dirPath string) ([]PathStatus, error) {
	return n.ReadDir(ctx, dirPath)
}

// Stat implements StatLister.
func (n *NodeFS) Stat(ctx context.Context, p string) (PathStatus, error) {
	p = Rooted(p)
	node, err := n.lookup(ctx, p)
	if err != nil {
		return PathStatus{}, err
	}
	return statNode(ctx, p, node)
}

// ReadDir implements StatLister.
func (n *NodeFS) ReadDir(ctx context.Context, dirPath string) ([]PathStatus, error) {
	dirPath = Rooted(dirPath)
	node, err := n.lookup(ctx, dirPath)
	if err != nil {
		return nil, err
	}

	lister, ok := node.(fusefs.HandleReadDirAller)
	if !ok {
		return nil, NewError(OpList, dirPath, ErrNotDirectory)
	}
	lookuper, ok := node.(fusefs.NodeStringLookuper)
	if !ok {
		return nil, NewError(OpList, dirPath, ErrNotDirectory)
	}

	dirents, err := lister.ReadDirAll(ctx)
	if err != nil {
		return nil, NewError(OpList, dirPath, nodeError(err))
	}

	statuses := make([]PathStatus, 0, len(dirents))
	for _, dirent := range dirents {
		if dirent.Name == "." || dirent.Name == ".." {
			continue
		}

		childPath := path.Join(dirPath, dirent.Name)
		child, err := lookuper.Lookup(ctx, dirent.Name)
		if err != nil {
			err = nodeError(err)
			if IsNotExist(err) {
				fsLogger.Debug("Entry %q vanished during listing", childPath)
				continue
			}
			return nil, NewError(OpLookup, childPath, err)
		}

		st, err := statNode(ctx, childPath, child)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (n *NodeFS) lookup(ctx context.Context, p string) (fusefs.Node, error) {
	node, err := n.tree.Root()
	if err != nil {
		return nil, NewError(OpLookup, "/", nodeError(err))
	}

	for _, name := range Split(p) {
		dir, ok := node.(fusefs.NodeStringLookuper)
		if !ok {
			return nil, NewError(OpLookup, p, ErrNotDirectory)
		}
		node, err = dir.Lookup(ctx, name)
		if err != nil {
			return nil, NewError(OpLookup, p, nodeError(err))
		}
	}
	return node, nil
}

func statNode(ctx context.Context, p string, node fusefs.Node) (PathStatus, error) {
	var attr fuse.Attr
	if err := node.Attr(ctx, &attr); err != nil {
		return PathStatus{}, NewError(OpStat, p, nodeError(err))
	}

	st := PathStatus{Path: p, IsDir: attr.Mode.IsDir()}
	if !st.IsDir {
		st.Length = int64(attr.Size)
	}
	return st, nil
}

// nodeError turns a fuse.Errno into the matching syscall.Errno so that
// errors.Is against os.ErrNotExist works.
func nodeError(err error) error {
	var errno fuse.Errno
	if errors.As(err, &errno) {
		return syscall.Errno(errno)
	}
	return err
}
