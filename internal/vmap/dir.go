package vmap

import (
	"context"
	"os"
	"syscall"

	"fsdu/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir is the root or a virtual directory declared in the state file.
type Dir struct {
	fs   *VMapFS
	path *VirtualPath
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
// Virtual directories win over mappings with the same name.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	childPath := d.path.Join(name)
	dirLogger.Trace("Looking up %q", childPath.String())

	if d.path.IsRoot() && name == UnsortedName {
		return newSourceDir(d.fs, NewSourcePath(""), true, false), nil
	}

	if d.fs.isDirectory(childPath) {
		return &Dir{fs: d.fs, path: childPath}, nil
	}

	sourcePath, exists := d.fs.pathMapper.GetSourcePath(childPath)
	if !exists {
		return nil, syscall.ENOENT
	}

	info, err := os.Stat(sourcePath.FullPath(d.fs.sourceDir))
	if err != nil {
		if os.IsNotExist(err) {
			dirLogger.Warn("Mapping %q points at missing source %q",
				childPath.String(), sourcePath.String())
			return nil, syscall.ENOENT
		}
		return nil, err
	}

	if info.IsDir() {
		return newSourceDir(d.fs, sourcePath, false, true), nil
	}
	return newFile(d.fs, sourcePath, true), nil
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory contents.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	entries := []fuse.Dirent{
		{Name: ".", Type: fuse.DT_Dir},
		{Name: "..", Type: fuse.DT_Dir},
	}

	if d.path.IsRoot() {
		entries = append(entries, fuse.Dirent{Name: UnsortedName, Type: fuse.DT_Dir})
	}

	seen := make(map[string]bool)
	for _, name := range d.fs.subdirectories(d.path) {
		seen[name] = true
		entries = append(entries, fuse.Dirent{Name: name, Type: fuse.DT_Dir})
	}

	for _, name := range d.fs.pathMapper.MappedChildren(d.path) {
		if seen[name] {
			continue
		}
		entries = append(entries, fuse.Dirent{Name: name, Type: fuse.DT_Unknown})
	}

	dirLogger.Debug("Directory %q contains %d entries", d.path.String(), len(entries))
	return entries, nil
}
