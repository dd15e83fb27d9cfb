package vmap

import (
	"sort"

	"fsdu/internal/logging"
)

// PathMapper resolves virtual paths to source paths and back.
type PathMapper struct {
	virtualToSource map[string]string // virtual path -> source path
	sourceToVirtual map[string]string // source path -> virtual path
	logger          *logging.Logger
}

// NewPathMapper builds a mapper from virtual->source mappings. Both sides
// are cleaned; the input map is not retained.
func NewPathMapper(mappings map[string]string) *PathMapper {
	logger := logging.GetLogger().WithPrefix("pathmap")

	pm := &PathMapper{
		virtualToSource: make(map[string]string, len(mappings)),
		sourceToVirtual: make(map[string]string, len(mappings)),
		logger:          logger,
	}
	for vpath, spath := range mappings {
		vp := NewVirtualPath(vpath).String()
		sp := NewSourcePath(spath).String()
		pm.virtualToSource[vp] = sp
		pm.sourceToVirtual[sp] = vp
		logger.Trace("Mapping: %q -> %q", vp, sp)
	}
	return pm
}

// IsPathMapped returns true if the source path has a virtual mapping
func (pm *PathMapper) IsPathMapped(sp *SourcePath) bool {
	_, exists := pm.sourceToVirtual[sp.String()]
	return exists
}

// GetVirtualPath returns the virtual path for a source path, if one exists
func (pm *PathMapper) GetVirtualPath(sp *SourcePath) (*VirtualPath, bool) {
	vpath, exists := pm.sourceToVirtual[sp.String()]
	if !exists {
		return nil, false
	}
	return NewVirtualPath(vpath), true
}

// GetSourcePath returns the source path for a virtual path, if one exists
func (pm *PathMapper) GetSourcePath(vp *VirtualPath) (*SourcePath, bool) {
	spath, exists := pm.virtualToSource[vp.String()]
	pm.logger.Trace("Looking up source path: %q -> %q (exists=%v)",
		vp.String(), spath, exists)
	if !exists {
		return nil, false
	}
	return NewSourcePath(spath), true
}

// MappedChildren returns the sorted names of mappings placed directly in dir.
func (pm *PathMapper) MappedChildren(dir *VirtualPath) []string {
	var names []string
	for vpath := range pm.virtualToSource {
		if name := childName(dir, vpath); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
