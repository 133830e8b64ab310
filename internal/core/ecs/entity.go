package ecs

// EntityID represents a unique identifier for entities.
// IDs come from a monotonically increasing counter and are never reused within a Registry.
type EntityID uint64

// AnyStore provides type-erased operations for lifecycle management.
// This allows the Registry to destroy entities without knowing concrete component types.
type AnyStore interface {
	Has(EntityID) bool
	Detach(EntityID) bool
	Len() int
	Clear()
}

// Registry owns entity identity and the set of registered component stores
type Registry struct {
	next   EntityID
	alive  []EntityID
	stores []AnyStore
}

// NewRegistry creates an empty registry. The first created entity has ID 1.
func NewRegistry() *Registry {
	return &Registry{
		next:  1,
		alive: make([]EntityID, 0, 64),
	}
}

// Register adds stores to the lifecycle set used by DestroyEntity and Clear
func (r *Registry) Register(stores ...AnyStore) {
	r.stores = append(r.stores, stores...)
}

// CreateEntity reserves a new entity ID without attaching any components
func (r *Registry) CreateEntity() EntityID {
	id := r.next
	r.next++
	r.alive = append(r.alive, id)
	return id
}

// DestroyEntity detaches the entity from every registered store.
// Returns false when the entity was not created by this registry or is already destroyed.
func (r *Registry) DestroyEntity(e EntityID) bool {
	idx := r.indexOf(e)
	if idx < 0 {
		return false
	}
	for _, s := range r.stores {
		s.Detach(e)
	}
	// order-preserving removal keeps query iteration stable
	r.alive = append(r.alive[:idx], r.alive[idx+1:]...)
	return true
}

// Exists reports whether the entity has at least one attached component
func (r *Registry) Exists(e EntityID) bool {
	for _, s := range r.stores {
		if s.Has(e) {
			return true
		}
	}
	return false
}

// Entities returns a copy of all live entity IDs in creation order
func (r *Registry) Entities() []EntityID {
	out := make([]EntityID, len(r.alive))
	copy(out, r.alive)
	return out
}

// Count returns the number of live entities
func (r *Registry) Count() int {
	return len(r.alive)
}

// Clear destroys every entity. The ID counter is not rewound.
func (r *Registry) Clear() {
	for _, s := range r.stores {
		s.Clear()
	}
	r.alive = r.alive[:0]
}

func (r *Registry) indexOf(e EntityID) int {
	for i, id := range r.alive {
		if id == e {
			return i
		}
	}
	return -1
}
