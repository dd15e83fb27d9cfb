package vmap

import (
	"context"
	"os"
	"syscall"

	"fsdu/internal/logging"

	"bazil.org/fuse"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File is a source file seen through the virtual tree, either through a
// mapping or by listing a source directory. Only a mapped file follows a
// symlink; a listed symlink reports the link itself.
type File struct {
	fs         *VMapFS
	sourcePath *SourcePath
	follow     bool
}

func newFile(fs *VMapFS, sourcePath *SourcePath, follow bool) *File {
	return &File{fs: fs, sourcePath: sourcePath, follow: follow}
}

// Attr implements the Node interface, returning the source file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	info, err := statSource(f.sourcePath.FullPath(f.fs.sourceDir), f.follow)
	if err != nil {
		if os.IsNotExist(err) {
			fileLogger.Warn("Source file not found: %q", f.sourcePath.String())
			return syscall.ENOENT
		}
		return err
	}

	a.Mode = info.Mode() &^ 0222
	a.Size = safeInt64ToUint64(info.Size())
	a.Mtime = info.ModTime()
	a.Atime = info.ModTime()
	a.Ctime = info.ModTime()
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.BlockSize = 4096
	a.Blocks = safeInt64ToUint64((info.Size() + 511) / 512)
	return nil
}
