package vmap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"fsdu/internal/fs"
	"fsdu/internal/pathsize"
	"fsdu/internal/state"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

func setupTestFS(t *testing.T) (*VMapFS, string) {
	t.Helper()
	sourceDir := t.TempDir()

	testFiles := map[string]string{
		"a.txt":         "aaaa",
		"b.txt":         "bb",
		"dir1/c.txt":    "ccc",
		"dir1/d.txt":    "ddddd",
		"dir2/e.txt":    "eeeeee",
		"photos/p1.jpg": "ppppppp",
	}
	for name, content := range testFiles {
		fullPath := filepath.Join(sourceDir, name)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	st := state.NewState()
	st.Directories["/docs"] = true
	st.Directories["/media"] = true
	st.VirtualPaths["/docs/a.txt"] = "a.txt"
	st.VirtualPaths["/docs/e.txt"] = "dir2/e.txt"
	st.VirtualPaths["/d.txt"] = "dir1/d.txt"
	st.VirtualPaths["/media/photos"] = "photos"
	st.VirtualPaths["/gone.txt"] = "missing.txt"

	return New(sourceDir, st), sourceDir
}

func direntNames(entries []fuse.Dirent) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		names = append(names, e.Name)
	}
	return names
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func lookupPath(t *testing.T, vfs *VMapFS, names ...string) fusefs.Node {
	t.Helper()
	node, err := vfs.Root()
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}
	for _, name := range names {
		dir, ok := node.(fusefs.NodeStringLookuper)
		if !ok {
			t.Fatalf("%q is not a directory", name)
		}
		node, err = dir.Lookup(context.Background(), name)
		if err != nil {
			t.Fatalf("Lookup %q failed: %v", name, err)
		}
	}
	return node
}

func TestRootDirectory(t *testing.T) {
	vfs, _ := setupTestFS(t)
	ctx := context.Background()

	root, err := vfs.Root()
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}

	var attr fuse.Attr
	if err := root.Attr(ctx, &attr); err != nil {
		t.Fatalf("Attr failed: %v", err)
	}
	if !attr.Mode.IsDir() {
		t.Error("Root should be a directory")
	}

	entries, err := root.(*Dir).ReadDirAll(ctx)
	if err != nil {
		t.Fatalf("ReadDirAll failed: %v", err)
	}
	want := []string{UnsortedName, "docs", "media", "d.txt", "gone.txt"}
	if got := direntNames(entries); !equalNames(got, want) {
		t.Errorf("Root entries = %v, want %v", got, want)
	}
}

func TestMappedFileAttr(t *testing.T) {
	vfs, _ := setupTestFS(t)

	node := lookupPath(t, vfs, "docs", "e.txt")
	if _, ok := node.(*File); !ok {
		t.Fatalf("Expected *File, got %T", node)
	}

	var attr fuse.Attr
	if err := node.Attr(context.Background(), &attr); err != nil {
		t.Fatalf("Attr failed: %v", err)
	}
	if attr.Size != 6 {
		t.Errorf("Size = %d, want 6", attr.Size)
	}
	if attr.Mode&0222 != 0 {
		t.Errorf("Mode %v should be read-only", attr.Mode)
	}
	if attr.Uid != vfs.uid || attr.Gid != vfs.gid {
		t.Errorf("Owner = %d:%d, want %d:%d", attr.Uid, attr.Gid, vfs.uid, vfs.gid)
	}
}

func TestMappedDirectory(t *testing.T) {
	vfs, _ := setupTestFS(t)

	node := lookupPath(t, vfs, "media", "photos")
	dir, ok := node.(*SourceDir)
	if !ok {
		t.Fatalf("Expected *SourceDir, got %T", node)
	}
	if dir.unsorted {
		t.Error("Mapped directory should not filter entries")
	}

	entries, err := dir.ReadDirAll(context.Background())
	if err != nil {
		t.Fatalf("ReadDirAll failed: %v", err)
	}
	if got := direntNames(entries); !equalNames(got, []string{"p1.jpg"}) {
		t.Errorf("Entries = %v, want [p1.jpg]", got)
	}
}

func TestLookupMissing(t *testing.T) {
	vfs, _ := setupTestFS(t)
	root, _ := vfs.Root()
	ctx := context.Background()

	for _, name := range []string{"nope", "gone.txt"} {
		_, err := root.(*Dir).Lookup(ctx, name)
		if !errors.Is(err, syscall.ENOENT) {
			t.Errorf("Lookup %q: got %v, want ENOENT", name, err)
		}
	}
}

func TestUnsortedHidesMapped(t *testing.T) {
	vfs, _ := setupTestFS(t)
	ctx := context.Background()

	unsorted := lookupPath(t, vfs, UnsortedName).(*SourceDir)

	var attr fuse.Attr
	if err := unsorted.Attr(ctx, &attr); err != nil {
		t.Fatalf("Attr failed: %v", err)
	}
	if !attr.Mode.IsDir() {
		t.Error("_UNSORTED should be a directory")
	}

	entries, err := unsorted.ReadDirAll(ctx)
	if err != nil {
		t.Fatalf("ReadDirAll failed: %v", err)
	}
	if got := direntNames(entries); !equalNames(got, []string{"b.txt", "dir1"}) {
		t.Errorf("Entries = %v, want [b.txt dir1]", got)
	}

	for _, name := range []string{"a.txt", "dir2", "photos"} {
		if _, err := unsorted.Lookup(ctx, name); !errors.Is(err, syscall.ENOENT) {
			t.Errorf("Lookup %q: got %v, want ENOENT", name, err)
		}
	}

	dir1 := lookupPath(t, vfs, UnsortedName, "dir1").(*SourceDir)
	entries, err = dir1.ReadDirAll(ctx)
	if err != nil {
		t.Fatalf("ReadDirAll failed: %v", err)
	}
	if got := direntNames(entries); !equalNames(got, []string{"c.txt"}) {
		t.Errorf("dir1 entries = %v, want [c.txt]", got)
	}
}

func TestOwnerFromEnvironment(t *testing.T) {
	t.Setenv("PUID", "1234")
	t.Setenv("PGID", "not-a-number")

	vfs := New(t.TempDir(), state.NewState())
	if vfs.uid != 1234 {
		t.Errorf("uid = %d, want 1234", vfs.uid)
	}
	if vfs.gid != safeIntToUint32(os.Getgid()) {
		t.Errorf("gid = %d, want current gid", vfs.gid)
	}
}

func TestVirtualTreeSize(t *testing.T) {
	vfs, _ := setupTestFS(t)
	fsys := fs.NewNodeFS(vfs)
	ctx := context.Background()

	tests := []struct {
		pattern string
		want    int64
	}{
		{"/", 27},
		{"/" + UnsortedName, 5},
		{"/docs", 10},
		{"/media/photos", 7},
		{"/*.txt", 5},
		{"/docs/**/*.txt", 10},
		{"/gone.txt", pathsize.NotFound},
		{"/nowhere/*", pathsize.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := pathsize.Compute(ctx, fsys, tt.pattern)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compute(%q) = %d, want %d", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestSymlinksInSource(t *testing.T) {
	sourceDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(sourceDir, "real"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "real", "f"), make([]byte, 100), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	for link, target := range map[string]string{"alias": "real", "loop": "."} {
		if err := os.Symlink(target, filepath.Join(sourceDir, link)); err != nil {
			t.Fatalf("Failed to create symlink: %v", err)
		}
	}
	ctx := context.Background()

	t.Run("listed links are files", func(t *testing.T) {
		vfs := New(sourceDir, state.NewState())

		alias := lookupPath(t, vfs, UnsortedName, "alias")
		if _, ok := alias.(*File); !ok {
			t.Fatalf("Expected *File for a listed symlink, got %T", alias)
		}

		// real/f plus the links themselves: "real" and "."
		got, err := pathsize.Compute(ctx, fs.NewNodeFS(vfs), "/"+UnsortedName)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if got != 105 {
			t.Errorf("Compute(_UNSORTED) = %d, want 105", got)
		}
	})

	t.Run("mapped link is followed", func(t *testing.T) {
		st := state.NewState()
		st.VirtualPaths["/linked"] = "alias"
		vfs := New(sourceDir, st)
		fsys := fs.NewNodeFS(vfs)

		tests := []struct {
			pattern string
			want    int64
		}{
			{"/linked", 100},
			{"/" + UnsortedName, 101},
			{"/", 201},
		}
		for _, tt := range tests {
			got, err := pathsize.Compute(ctx, fsys, tt.pattern)
			if err != nil {
				t.Fatalf("Compute(%q) failed: %v", tt.pattern, err)
			}
			if got != tt.want {
				t.Errorf("Compute(%q) = %d, want %d", tt.pattern, got, tt.want)
			}
		}
	})
}
