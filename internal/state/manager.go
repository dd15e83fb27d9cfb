package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fsdu/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("state")

	// ErrNoState indicates the state file is missing or empty
	ErrNoState = errors.New("no state file")
)

// Manager handles loading and saving filesystem state
type Manager struct {
	statePath string
	mu        sync.Mutex
}

// NewManager creates a state manager for the given state file path.
// Relative paths are resolved against the working directory.
func NewManager(statePath string) (*Manager, error) {
	if statePath == "" {
		return nil, fmt.Errorf("state file path is empty")
	}

	absPath, err := filepath.Abs(statePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state path %s: %w", statePath, err)
	}
	logger.Debug("Resolved state path: %s", absPath)

	return &Manager{statePath: absPath}, nil
}

// Path returns the absolute state file path.
func (sm *Manager) Path() string {
	return sm.statePath
}

// LoadState reads the state file. A missing or empty file yields ErrNoState.
func (sm *Manager) LoadState() (*FSState, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	logger.Debug("Loading state from: %s", sm.statePath)
	data, err := os.ReadFile(sm.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoState, sm.statePath)
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoState, sm.statePath)
	}

	var state FSState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	state.normalize()

	logger.Debug("State loaded: %d mappings, %d directories",
		len(state.VirtualPaths), len(state.Directories))
	return &state, nil
}

// SaveState writes the state to a temporary file next to the target and
// renames it into place, so readers never see a partial file.
func (sm *Manager) SaveState(state *FSState) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(sm.statePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), sm.statePath); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	logger.Debug("Saved %d bytes of state to %s", len(data), sm.statePath)
	return nil
}
