package viewer

import "github.com/google/uuid"

// Registry is identifier-keyed viewer storage with unique keys. It is not
// safe for concurrent use on its own; the Manager serializes all access.
type Registry struct {
	entries map[string]*State
	genID   func() string
}

// NewRegistry creates an empty registry. genID supplies fresh globally
// unique identifiers; pass nil for UUID generation.
func NewRegistry(genID func() string) *Registry {
	if genID == nil {
		genID = uuid.NewString
	}
	return &Registry{
		entries: make(map[string]*State),
		genID:   genID,
	}
}

// AllocateID picks an identifier for a new viewer bound to the container.
// A stable identifier carried by the container is reused unless a live
// viewer already holds it; otherwise a fresh identifier is generated.
func (r *Registry) AllocateID(c Container) string {
	if id := c.ID(); id != "" {
		if _, taken := r.entries[id]; !taken {
			return id
		}
	}
	return r.genID()
}

// Get returns the state for an identifier, or false if absent.
func (r *Registry) Get(id string) (*State, bool) {
	st, ok := r.entries[id]
	return st, ok
}

// Put inserts or overwrites the state for an identifier.
func (r *Registry) Put(id string, st *State) {
	r.entries[id] = st
}

// Remove deletes the entry if present. Removing an absent identifier is
// a no-op, not an error.
func (r *Registry) Remove(id string) {
	delete(r.entries, id)
}

// Len returns the number of live viewers.
func (r *Registry) Len() int {
	return len(r.entries)
}
