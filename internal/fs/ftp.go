package fs

import (
	"context"
	"crypto/tls"
	"fmt"
	"path"
	"sync"

	"fsdu/internal/config"

	"github.com/jlaffaye/ftp"
)

// ftpConn is the subset of *ftp.ServerConn used for metadata.
type ftpConn interface {
	GetEntry(path string) (*ftp.Entry, error)
	List(path string) ([]*ftp.Entry, error)
	Quit() error
}

// FTPFS implements FileSystem over an FTP/FTPS control connection.
// The connection handles one command at a time, so calls are serialized.
type FTPFS struct {
	conn ftpConn
	mu   sync.Mutex
}

// NewFTPFS establishes an FTP/FTPS connection based on the given server config.
func NewFTPFS(cfg config.ServerConfig) (*FTPFS, error) {
	port := cfg.Port
	if port == 0 {
		port = config.DefaultFTPPort
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, port)

	opts := []ftp.DialOption{ftp.DialWithTimeout(config.DialTimeout)}
	if cfg.Protocol == config.ProtocolFTPS {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName: cfg.Host,
		}))
	}

	fsLogger.Debug("Dialing FTP server %s", addr)
	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, NewError(OpConnect, addr, err)
	}

	user, password := cfg.User, cfg.Password
	if user == "" {
		user, password = "anonymous", "anonymous"
	}
	if err := conn.Login(user, password); err != nil {
		conn.Quit()
		return nil, NewError(OpConnect, addr, fmt.Errorf("login: %w", err))
	}

	return &FTPFS{conn: conn}, nil
}

// Glob implements FileSystem.
func (f *FTPFS) Glob(ctx context.Context, pattern string) ([]PathStatus, error) {
	return GlobWalk(ctx, f, pattern)
}

// List implements FileSystem.
func (f *FTPFS) List(ctx context.Context, dirPath string) ([]PathStatus, error) {
	return f.ReadDir(ctx, dirPath)
}

// Stat implements StatLister using MLST.
func (f *FTPFS) Stat(ctx context.Context, filePath string) (PathStatus, error) {
	if err := ctx.Err(); err != nil {
		return PathStatus{}, err
	}

	f.mu.Lock()
	entry, err := f.conn.GetEntry(filePath)
	f.mu.Unlock()
	if err != nil {
		return PathStatus{}, NewError(OpStat, filePath, err)
	}
	return statusFromEntry(filePath, entry), nil
}

// ReadDir implements StatLister.
func (f *FTPFS) ReadDir(ctx context.Context, dirPath string) ([]PathStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	entries, err := f.conn.List(dirPath)
	f.mu.Unlock()
	if err != nil {
		return nil, NewError(OpList, dirPath, err)
	}

	statuses := make([]PathStatus, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		statuses = append(statuses, statusFromEntry(path.Join(dirPath, e.Name), e))
	}
	return statuses, nil
}

// Close logs out and closes the control connection.
func (f *FTPFS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn.Quit()
}

// statusFromEntry treats links as files, matching the other backends'
// listings.
func statusFromEntry(p string, e *ftp.Entry) PathStatus {
	st := PathStatus{Path: p, IsDir: e.Type == ftp.EntryTypeFolder}
	if !st.IsDir {
		st.Length = int64(e.Size)
	}
	return st
}
