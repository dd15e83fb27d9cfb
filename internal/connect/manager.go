package connect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"fsdu/internal/config"
	"fsdu/internal/fs"
	"fsdu/internal/logging"
	"fsdu/internal/state"
	"fsdu/internal/vmap"

	"github.com/hashicorp/go-multierror"
)

var (
	logger = logging.GetLogger().WithPrefix("connect")
)

// ErrNoVMap is returned for vmap targets when no virtual tree is configured.
var ErrNoVMap = errors.New("no vmap source configured")

type remoteFS interface {
	fs.FileSystem
	Close() error
}

type dialFunc func(cfg config.ServerConfig) (remoteFS, error)

func dialServer(cfg config.ServerConfig) (remoteFS, error) {
	switch cfg.Protocol {
	case config.ProtocolSFTP:
		return fs.NewSFTPFS(cfg)
	case config.ProtocolFTP, config.ProtocolFTPS:
		return fs.NewFTPFS(cfg)
	default:
		return nil, fmt.Errorf("unknown protocol: %s", cfg.Protocol)
	}
}

// Manager opens filesystems for targets and keeps one connection per
// server until Close.
type Manager struct {
	cfg  *config.Config
	dial dialFunc

	mu    sync.Mutex
	conns map[string]remoteFS
	local *fs.LocalFS
	vmap  fs.FileSystem
}

// NewManager creates a manager resolving server names against cfg.
func NewManager(cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Manager{
		cfg:   cfg,
		dial:  dialServer,
		conns: make(map[string]remoteFS),
	}
}

// Open returns the filesystem that target's pattern should be resolved
// against. Dialing uses the config's timeout; ctx only guards against
// starting new work after cancellation.
func (m *Manager) Open(ctx context.Context, t Target) (fs.FileSystem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch t.Scheme {
	case SchemeLocal:
		if m.local == nil {
			m.local = fs.NewLocalFS()
		}
		return m.local, nil
	case SchemeVMap:
		return m.openVMap()
	}

	srv := m.serverFor(t)
	// one server may be reached over several protocols
	key := srv.Protocol + "://" + srv.Name
	if conn, ok := m.conns[key]; ok {
		return conn, nil
	}

	logger.Debug("Connecting to %s (%s)", srv.Name, srv.Protocol)
	conn, err := m.dial(srv)
	if err != nil {
		return nil, fs.NewError(fs.OpConnect, t.String(), err)
	}
	m.conns[key] = conn
	return conn, nil
}

// serverFor resolves the server part of t: a configured server name wins,
// otherwise it is taken as a host name. Explicit user and port override
// the configured ones.
func (m *Manager) serverFor(t Target) config.ServerConfig {
	srv, ok := m.cfg.Server(t.Server)
	if !ok {
		srv = config.ServerConfig{
			Host:     t.Server,
			Password: os.Getenv(config.PasswordEnv),
		}
	}
	srv.Protocol = t.Scheme
	if t.User != "" {
		srv.User = t.User
	}
	if t.Port != 0 {
		srv.Port = t.Port
	}

	if !ok || t.User != "" || t.Port != 0 {
		srv.Name = fmt.Sprintf("%s@%s:%d", srv.User, srv.Host, srv.Port)
	}
	return srv
}

func (m *Manager) openVMap() (fs.FileSystem, error) {
	if m.vmap != nil {
		return m.vmap, nil
	}

	vc := m.cfg.VMap
	if vc.Source == "" || vc.State == "" {
		return nil, ErrNoVMap
	}

	stateManager, err := state.NewManager(vc.State)
	if err != nil {
		return nil, err
	}
	st, err := stateManager.LoadState()
	if err != nil {
		if !errors.Is(err, state.ErrNoState) {
			return nil, err
		}
		logger.Warn("No state at %s, showing everything as unsorted", stateManager.Path())
		st = state.NewState()
	}

	m.vmap = fs.NewNodeFS(vmap.New(vc.Source, st))
	return m.vmap, nil
}

// Close releases every open connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result *multierror.Error
	for name, conn := range m.conns {
		if err := conn.Close(); err != nil {
			logger.Warn("Closing %s: %v", name, err)
			result = multierror.Append(result, fmt.Errorf("close %s: %w", name, err))
		}
		delete(m.conns, name)
	}
	return result.ErrorOrNil()
}
