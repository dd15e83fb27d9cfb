package fs

import (
	"context"
	"fmt"
	"os"
	"path"

	"fsdu/internal/config"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPFS implements FileSystem over an SSH/SFTP connection.
type SFTPFS struct {
	client    *sftp.Client
	sshClient *ssh.Client
}

// NewSFTPFS establishes an SFTP connection based on the given server config.
func NewSFTPFS(cfg config.ServerConfig) (*SFTPFS, error) {
	port := cfg.Port
	if port == 0 {
		port = config.DefaultSFTPPort
	}

	authMethods := []ssh.AuthMethod{}

	if cfg.KeyPath != "" {
		keyData, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read key %s: %w", cfg.KeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, fmt.Errorf("parse key: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}

	if len(authMethods) == 0 {
		return nil, fmt.Errorf("server %s: no authentication method configured", cfg.Name)
	}

	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         config.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	fsLogger.Debug("Dialing SFTP server %s as %q", addr, cfg.User)
	sshClient, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, NewError(OpConnect, addr, err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, NewError(OpConnect, addr, err)
	}

	return &SFTPFS{
		client:    sftpClient,
		sshClient: sshClient,
	}, nil
}

// NewSFTPFSFromClient wraps an already established SFTP session. Closing
// the SFTPFS closes the client.
func NewSFTPFSFromClient(client *sftp.Client) *SFTPFS {
	return &SFTPFS{client: client}
}

// Glob implements FileSystem.
func (s *SFTPFS) Glob(ctx context.Context, pattern string) ([]PathStatus, error) {
	return GlobWalk(ctx, s, pattern)
}

// List implements FileSystem.
func (s *SFTPFS) List(ctx context.Context, dirPath string) ([]PathStatus, error) {
	return s.ReadDir(ctx, dirPath)
}

// Stat implements StatLister. Symlinks are followed.
func (s *SFTPFS) Stat(ctx context.Context, filePath string) (PathStatus, error) {
	if err := ctx.Err(); err != nil {
		return PathStatus{}, err
	}
	info, err := s.client.Stat(filePath)
	if err != nil {
		return PathStatus{}, NewError(OpStat, filePath, err)
	}
	return statusFromInfo(filePath, info), nil
}

// ReadDir implements StatLister. Entries come from the server's lstat
// data, so symlinks count as files.
func (s *SFTPFS) ReadDir(ctx context.Context, dirPath string) ([]PathStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := s.client.ReadDir(dirPath)
	if err != nil {
		return nil, NewError(OpList, dirPath, err)
	}

	statuses := make([]PathStatus, 0, len(infos))
	for _, info := range infos {
		statuses = append(statuses, statusFromInfo(path.Join(dirPath, info.Name()), info))
	}
	return statuses, nil
}

// Close ends the SFTP session and the SSH connection under it.
func (s *SFTPFS) Close() error {
	err := s.client.Close()
	if s.sshClient != nil {
		if sshErr := s.sshClient.Close(); err == nil {
			err = sshErr
		}
	}
	return err
}
