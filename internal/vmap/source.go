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
	sourceLogger = logging.GetLogger().WithPrefix("source")
)

// SourceDir is a directory of the source tree. Under _UNSORTED it hides
// mapped entries and directories without any unmapped file; when reached
// through a mapping it shows the source directory as is.
//
// Only a mapping target is resolved through symlinks. Entries found by
// listing are taken with lstat, so a symlink is a File of the link's own
// size and is never descended.
type SourceDir struct {
	fs       *VMapFS
	path     *SourcePath
	unsorted bool
	follow   bool
}

func newSourceDir(fs *VMapFS, path *SourcePath, unsorted, follow bool) *SourceDir {
	sourceLogger.Trace("Creating SourceDir for %q (unsorted=%v)", path.String(), unsorted)
	return &SourceDir{
		fs:       fs,
		path:     path,
		unsorted: unsorted,
		follow:   follow,
	}
}

func (d *SourceDir) Attr(_ context.Context, a *fuse.Attr) error {
	// _UNSORTED itself
	if d.unsorted && d.path.IsRoot() {
		a.Mode = os.ModeDir | 0555
		a.Uid = d.fs.uid
		a.Gid = d.fs.gid
		return nil
	}

	info, err := statSource(d.path.FullPath(d.fs.sourceDir), d.follow)
	if err != nil {
		if os.IsNotExist(err) {
			return syscall.ENOENT
		}
		sourceLogger.Error("Failed to stat directory: %v", err)
		return err
	}

	a.Mode = info.Mode() &^ 0222
	a.Size = safeInt64ToUint64(info.Size())
	a.Mtime = info.ModTime()
	a.Atime = info.ModTime()
	a.Ctime = info.ModTime()
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	return nil
}

func (d *SourceDir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	childPath := d.path.Join(name)
	sourceLogger.Debug("Looking up %q in %q", name, d.path.String())

	info, err := os.Lstat(childPath.FullPath(d.fs.sourceDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, syscall.ENOENT
		}
		sourceLogger.Error("Error stating path: %v", err)
		return nil, err
	}

	if d.unsorted && d.fs.pathMapper.IsPathMapped(childPath) {
		sourceLogger.Debug("Path is already mapped: %q", childPath.String())
		return nil, syscall.ENOENT
	}

	if info.IsDir() {
		if d.unsorted && !d.hasUnmapped(childPath) {
			sourceLogger.Debug("Directory has no unmapped files: %q", childPath.String())
			return nil, syscall.ENOENT
		}
		return newSourceDir(d.fs, childPath, d.unsorted, false), nil
	}
	return newFile(d.fs, childPath, false), nil
}

func (d *SourceDir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	entries, err := os.ReadDir(d.path.FullPath(d.fs.sourceDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, syscall.ENOENT
		}
		sourceLogger.Error("Error reading directory: %v", err)
		return nil, err
	}

	dirEntries := make([]fuse.Dirent, 0, len(entries)+2)
	dirEntries = append(dirEntries,
		fuse.Dirent{Name: ".", Type: fuse.DT_Dir},
		fuse.Dirent{Name: "..", Type: fuse.DT_Dir},
	)

	for _, entry := range entries {
		childPath := d.path.Join(entry.Name())

		if d.unsorted && d.fs.pathMapper.IsPathMapped(childPath) {
			continue
		}

		entryType := fuse.DT_File
		if entry.IsDir() {
			if d.unsorted && !d.hasUnmapped(childPath) {
				continue
			}
			entryType = fuse.DT_Dir
		} else if entry.Type()&os.ModeSymlink != 0 {
			entryType = fuse.DT_Link
		}

		sourceLogger.Trace("Adding entry: %q (type=%v)", entry.Name(), entryType)
		dirEntries = append(dirEntries, fuse.Dirent{
			Name: entry.Name(),
			Type: entryType,
		})
	}

	sourceLogger.Debug("Found %d entries in %q", len(dirEntries), d.path.String())
	return dirEntries, nil
}

// hasUnmapped reports whether the source directory at p holds at least one
// file that is not mapped, directly or in a subdirectory. A mapped
// subdirectory counts as fully mapped.
func (d *SourceDir) hasUnmapped(p *SourcePath) bool {
	entries, err := os.ReadDir(p.FullPath(d.fs.sourceDir))
	if err != nil {
		return false
	}

	for _, entry := range entries {
		childPath := p.Join(entry.Name())
		if d.fs.pathMapper.IsPathMapped(childPath) {
			continue
		}
		if !entry.IsDir() {
			return true
		}
		if d.hasUnmapped(childPath) {
			return true
		}
	}
	return false
}

func statSource(fullPath string, follow bool) (os.FileInfo, error) {
	if follow {
		return os.Stat(fullPath)
	}
	return os.Lstat(fullPath)
}
