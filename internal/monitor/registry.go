package monitor

import "fmt"

// Registry is the immutable catalog of monitored sources. Iteration order is
// the declaration order and stays stable across sweeps.
type Registry struct {
	sources []Source
	byID    map[string]Source
}

// NewRegistry validates the catalog and builds a Registry. Source IDs must be
// non-empty and unique.
func NewRegistry(sources []Source) (*Registry, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	byID := make(map[string]Source, len(sources))
	ordered := make([]Source, 0, len(sources))
	for _, src := range sources {
		if src.ID == "" {
			return nil, fmt.Errorf("source %q has no url", src.DisplayName)
		}
		if _, dup := byID[src.ID]; dup {
			return nil, fmt.Errorf("duplicate source %q", src.ID)
		}
		if src.DisplayName == "" {
			src.DisplayName = src.ID
		}
		byID[src.ID] = src
		ordered = append(ordered, src)
	}
	return &Registry{sources: ordered, byID: byID}, nil
}

// Sources returns the catalog in stable order.
func (r *Registry) Sources() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len returns the catalog size.
func (r *Registry) Len() int {
	return len(r.sources)
}

// Get looks up a source by ID.
func (r *Registry) Get(id string) (Source, bool) {
	src, ok := r.byID[id]
	return src, ok
}
