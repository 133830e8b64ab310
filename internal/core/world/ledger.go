package world

import (
	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/ecs"
	"github.com/zeusync/stembranch/internal/core/events/bus"
)

// The ledger operates on the first entity that is both player-controlled and carries Resources.
// Without one, reads return 0 and writes do nothing.

// Resources returns the player's resource amount
func (w *World) Resources() int {
	e, ok := w.ledgerEntity()
	if !ok {
		return 0
	}
	r, _ := w.ResourcePools.Get(e)
	return r.Amount
}

// SetResources overwrites the player's resource amount. Negative amounts store as 0.
func (w *World) SetResources(amount int) {
	e, ok := w.ledgerEntity()
	if !ok {
		return
	}
	w.setAmount(e, max(0, amount))
}

// ModifyResources adds delta and clamps the result at zero
func (w *World) ModifyResources(delta int) {
	e, ok := w.ledgerEntity()
	if !ok {
		return
	}
	r, _ := w.ResourcePools.Get(e)
	w.setAmount(e, max(0, r.Amount+delta))
}

func (w *World) setAmount(e ecs.EntityID, amount int) {
	var prev int
	w.ResourcePools.Update(e, func(r *components.Resources) {
		prev = r.Amount
		r.Amount = amount
	})
	if prev != amount {
		w.Publish(bus.EventResourcesChanged, bus.ResourcesEvent{Previous: prev, Current: amount})
	}
}

func (w *World) ledgerEntity() (ecs.EntityID, bool) {
	return w.Entities.First(w.Players, w.ResourcePools)
}
