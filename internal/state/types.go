// Package state loads and saves the path mappings of a virtual tree.
package state

// CurrentVersion is written into every new state file.
const CurrentVersion = 1

// FSState represents the virtual tree layout
type FSState struct {
	// Map of virtual paths to source paths
	VirtualPaths map[string]string `json:"virtual_paths"`

	// Set of virtual directories (stored as map for quick lookup)
	Directories map[string]bool `json:"directories"`

	// Version for future compatibility
	Version int `json:"version"`
}

// NewState returns an empty state holding only the root directory.
func NewState() *FSState {
	return &FSState{
		VirtualPaths: make(map[string]string),
		Directories: map[string]bool{
			"/": true,
		},
		Version: CurrentVersion,
	}
}

// normalize fills in maps a hand-written file may omit.
func (s *FSState) normalize() {
	if s.VirtualPaths == nil {
		s.VirtualPaths = make(map[string]string)
	}
	if s.Directories == nil {
		s.Directories = make(map[string]bool)
	}
	s.Directories["/"] = true
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
}
