package ecs

// Query returns the live entities present in every given store, in entity creation order.
// It is a full scan filtered by a presence predicate; entity counts are expected to stay small.
// An empty store list matches nothing.
//
// Example:
//
//	movers := registry.Query(world.Positions, world.Velocities)
func (r *Registry) Query(stores ...AnyStore) []EntityID {
	if len(stores) == 0 {
		return nil
	}
	for _, s := range stores {
		if s.Len() == 0 {
			return nil
		}
	}

	result := make([]EntityID, 0, stores[0].Len())
	for _, e := range r.alive {
		if hasAll(e, stores) {
			result = append(result, e)
		}
	}
	return result
}

// QueryWithout returns entities present in every store of with and absent from every store of without
func (r *Registry) QueryWithout(with []AnyStore, without ...AnyStore) []EntityID {
	candidates := r.Query(with...)
	if len(without) == 0 {
		return candidates
	}
	filtered := candidates[:0]
	for _, e := range candidates {
		if !hasAny(e, without) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// First returns the first match of Query
func (r *Registry) First(stores ...AnyStore) (EntityID, bool) {
	if len(stores) == 0 {
		return 0, false
	}
	for _, e := range r.alive {
		if hasAll(e, stores) {
			return e, true
		}
	}
	return 0, false
}

func hasAll(e EntityID, stores []AnyStore) bool {
	for _, s := range stores {
		if !s.Has(e) {
			return false
		}
	}
	return true
}

func hasAny(e EntityID, stores []AnyStore) bool {
	for _, s := range stores {
		if s.Has(e) {
			return true
		}
	}
	return false
}
