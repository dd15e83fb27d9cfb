// Package vmap serves a virtual, read-only view of a source directory as a
// tree of FUSE nodes. Virtual directories and file mappings come from a
// state file; every source entry that has no mapping appears under
// _UNSORTED.
package vmap

import (
	"os"
	"strconv"
	"sort"

	"fsdu/internal/logging"
	"fsdu/internal/state"

	fusefs "bazil.org/fuse/fs"
)

// UnsortedName is the root entry that mirrors unmapped source files.
const UnsortedName = "_UNSORTED"

var (
	vfsLogger = logging.GetLogger().WithPrefix("vmap")
)

// VMapFS is the root of a virtual tree. It is immutable once built, so
// its nodes may be used from several goroutines.
type VMapFS struct {
	sourceDir   string
	directories map[string]bool
	pathMapper  *PathMapper
	uid         uint32
	gid         uint32
}

// New builds the virtual tree for sourceDir described by st. Ownership
// reported in attributes defaults to the current user and can be
// overridden with PUID and PGID.
func New(sourceDir string, st *state.FSState) *VMapFS {
	uid := safeIntToUint32(os.Getuid())
	gid := safeIntToUint32(os.Getgid())

	if puidStr := os.Getenv("PUID"); puidStr != "" {
		if puid, err := strconv.ParseUint(puidStr, 10, 32); err == nil {
			uid = uint32(puid)
		}
	}
	if pgidStr := os.Getenv("PGID"); pgidStr != "" {
		if pgid, err := strconv.ParseUint(pgidStr, 10, 32); err == nil {
			gid = uint32(pgid)
		}
	}

	directories := map[string]bool{"/": true}
	for dir, ok := range st.Directories {
		if ok {
			directories[NewVirtualPath(dir).String()] = true
		}
	}

	vfsLogger.Debug("Virtual tree over %s: %d directories, %d mappings",
		sourceDir, len(directories), len(st.VirtualPaths))

	return &VMapFS{
		sourceDir:   sourceDir,
		directories: directories,
		pathMapper:  NewPathMapper(st.VirtualPaths),
		uid:         uid,
		gid:         gid,
	}
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (vfs *VMapFS) Root() (fusefs.Node, error) {
	return &Dir{
		fs:   vfs,
		path: NewVirtualPath("/"),
	}, nil
}

func (vfs *VMapFS) isDirectory(vp *VirtualPath) bool {
	return vfs.directories[vp.String()]
}

// subdirectories returns the sorted names of virtual directories directly
// inside dir.
func (vfs *VMapFS) subdirectories(dir *VirtualPath) []string {
	var names []string
	for dirPath := range vfs.directories {
		if name := childName(dir, dirPath); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
