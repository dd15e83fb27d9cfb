package fs

import (
	"context"
	"net/textproto"
	"testing"

	"github.com/jlaffaye/ftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFTPConn answers like a server whose MLST/LIST replies are canned.
type fakeFTPConn struct {
	entries map[string]*ftp.Entry
	lists   map[string][]*ftp.Entry
	quit    bool
}

func (c *fakeFTPConn) GetEntry(p string) (*ftp.Entry, error) {
	if e, ok := c.entries[p]; ok {
		return e, nil
	}
	return nil, &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "No such file or directory"}
}

func (c *fakeFTPConn) List(p string) ([]*ftp.Entry, error) {
	if l, ok := c.lists[p]; ok {
		return l, nil
	}
	return nil, &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "No such file or directory"}
}

func (c *fakeFTPConn) Quit() error {
	c.quit = true
	return nil
}

func newFakeFTP() (*FTPFS, *fakeFTPConn) {
	conn := &fakeFTPConn{
		entries: map[string]*ftp.Entry{
			"/pub":           {Name: "pub", Type: ftp.EntryTypeFolder},
			"/pub/iso":       {Name: "iso", Type: ftp.EntryTypeFolder},
			"/pub/README":    {Name: "README", Type: ftp.EntryTypeFile, Size: 42},
			"/pub/iso/a.iso": {Name: "a.iso", Type: ftp.EntryTypeFile, Size: 4096},
		},
		lists: map[string][]*ftp.Entry{
			"/pub": {
				{Name: ".", Type: ftp.EntryTypeFolder},
				{Name: "..", Type: ftp.EntryTypeFolder},
				{Name: "README", Type: ftp.EntryTypeFile, Size: 42},
				{Name: "current", Type: ftp.EntryTypeLink, Size: 7, Target: "iso"},
				{Name: "iso", Type: ftp.EntryTypeFolder},
			},
			"/pub/iso": {
				{Name: "a.iso", Type: ftp.EntryTypeFile, Size: 4096},
			},
		},
	}
	return &FTPFS{conn: conn}, conn
}

func TestFTPFSList(t *testing.T) {
	f, _ := newFakeFTP()

	got, err := f.List(context.Background(), "/pub")
	require.NoError(t, err)
	assert.Equal(t, []PathStatus{
		{Path: "/pub/README", Length: 42},
		{Path: "/pub/current", Length: 7},
		{Path: "/pub/iso", IsDir: true},
	}, got)

	_, err = f.List(context.Background(), "/private")
	require.Error(t, err)
	assert.True(t, IsNotExist(err))
}

func TestFTPFSGlob(t *testing.T) {
	f, _ := newFakeFTP()
	ctx := context.Background()

	got, err := f.Glob(ctx, "/pub/README")
	require.NoError(t, err)
	assert.Equal(t, []PathStatus{{Path: "/pub/README", Length: 42}}, got)

	got, err = f.Glob(ctx, "/pub/*/*.iso")
	require.NoError(t, err)
	assert.Equal(t, []PathStatus{{Path: "/pub/iso/a.iso", Length: 4096}}, got)

	got, err = f.Glob(ctx, "/pub/missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFTPFSClose(t *testing.T) {
	f, conn := newFakeFTP()
	require.NoError(t, f.Close())
	assert.True(t, conn.quit)
}
