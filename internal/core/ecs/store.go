package ecs

// Store is a container for a single component type T keyed by entity.
// Iteration order is attach order; detaching preserves the order of the rest.
type Store[T any] struct {
	components map[EntityID]T
	entities   []EntityID
}

// NewStore creates an empty component store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		components: make(map[EntityID]T),
		entities:   make([]EntityID, 0, 16),
	}
}

// Attach inserts or replaces the component for an entity
func (s *Store[T]) Attach(e EntityID, val T) {
	if _, exists := s.components[e]; !exists {
		s.entities = append(s.entities, e)
	}
	s.components[e] = val
}

// Get returns the component and whether it is present
func (s *Store[T]) Get(e EntityID) (T, bool) {
	val, ok := s.components[e]
	return val, ok
}

// Has checks if entity has this component
func (s *Store[T]) Has(e EntityID) bool {
	_, ok := s.components[e]
	return ok
}

// Detach removes the component from an entity. Returns false if it was absent.
func (s *Store[T]) Detach(e EntityID) bool {
	if _, exists := s.components[e]; !exists {
		return false
	}
	delete(s.components, e)
	for i, id := range s.entities {
		if id == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	return true
}

// Update applies fn to the stored component in place. No-op when absent.
func (s *Store[T]) Update(e EntityID, fn func(*T)) bool {
	val, ok := s.components[e]
	if !ok {
		return false
	}
	fn(&val)
	s.components[e] = val
	return true
}

// Entities returns a copy of the entities holding this component, in attach order
func (s *Store[T]) Entities() []EntityID {
	out := make([]EntityID, len(s.entities))
	copy(out, s.entities)
	return out
}

// Len returns number of entities with this component
func (s *Store[T]) Len() int {
	return len(s.entities)
}

// Clear removes all components from this store
func (s *Store[T]) Clear() {
	s.components = make(map[EntityID]T)
	s.entities = s.entities[:0]
}
