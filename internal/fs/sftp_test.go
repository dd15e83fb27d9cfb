package fs

import (
	"context"
	"io"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipeConn struct {
	io.Reader
	io.WriteCloser
}

// newInMemorySFTP starts an in-process SFTP request server backed by
// memory and returns a filesystem talking to it.
func newInMemorySFTP(t *testing.T) (*SFTPFS, *sftp.Client) {
	t.Helper()

	clientRead, serverWrite := io.Pipe()
	serverRead, clientWrite := io.Pipe()

	server := sftp.NewRequestServer(pipeConn{serverRead, serverWrite}, sftp.InMemHandler())
	go server.Serve()

	client, err := sftp.NewClientPipe(clientRead, clientWrite)
	require.NoError(t, err)

	sfs := NewSFTPFSFromClient(client)
	t.Cleanup(func() {
		sfs.Close()
		server.Close()
	})
	return sfs, client
}

func writeRemote(t *testing.T, client *sftp.Client, name string, size int) {
	t.Helper()
	f, err := client.Create(name)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, size))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestSFTPFS(t *testing.T) {
	sfs, client := newInMemorySFTP(t)
	ctx := context.Background()

	require.NoError(t, client.Mkdir("/warehouse"))
	require.NoError(t, client.Mkdir("/warehouse/events"))
	writeRemote(t, client, "/warehouse/events/part-0", 11)
	writeRemote(t, client, "/warehouse/events/part-1", 13)
	writeRemote(t, client, "/warehouse/manifest.json", 5)

	t.Run("glob literal directory", func(t *testing.T) {
		got, err := sfs.Glob(ctx, "/warehouse/events")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, PathStatus{Path: "/warehouse/events", IsDir: true}, got[0])
	})

	t.Run("glob wildcard", func(t *testing.T) {
		got, err := sfs.Glob(ctx, "/warehouse/events/part-*")
		require.NoError(t, err)
		assert.Equal(t, []PathStatus{
			{Path: "/warehouse/events/part-0", Length: 11},
			{Path: "/warehouse/events/part-1", Length: 13},
		}, got)
	})

	t.Run("glob missing", func(t *testing.T) {
		got, err := sfs.Glob(ctx, "/warehouse/nothing")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("list", func(t *testing.T) {
		got, err := sfs.List(ctx, "/warehouse")
		require.NoError(t, err)
		assert.ElementsMatch(t, []PathStatus{
			{Path: "/warehouse/events", IsDir: true},
			{Path: "/warehouse/manifest.json", Length: 5},
		}, got)
	})

	t.Run("list missing", func(t *testing.T) {
		_, err := sfs.List(ctx, "/elsewhere")
		require.Error(t, err)
		assert.True(t, IsNotExist(err))
	})
}
