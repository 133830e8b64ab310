package ecs

// Tags stores a data-less marker component as a set of entity IDs
type Tags struct {
	set   map[EntityID]struct{}
	order []EntityID
}

func NewTags() *Tags {
	return &Tags{set: make(map[EntityID]struct{})}
}

// Add marks the entity. Adding twice is a no-op.
func (t *Tags) Add(e EntityID) {
	if _, ok := t.set[e]; ok {
		return
	}
	t.set[e] = struct{}{}
	t.order = append(t.order, e)
}

func (t *Tags) Has(e EntityID) bool {
	_, ok := t.set[e]
	return ok
}

// Detach unmarks the entity; it satisfies AnyStore
func (t *Tags) Detach(e EntityID) bool {
	if _, ok := t.set[e]; !ok {
		return false
	}
	delete(t.set, e)
	for i, id := range t.order {
		if id == e {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *Tags) Entities() []EntityID {
	out := make([]EntityID, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Tags) Len() int { return len(t.order) }

func (t *Tags) Clear() {
	t.set = make(map[EntityID]struct{})
	t.order = t.order[:0]
}
