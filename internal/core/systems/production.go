package systems

import (
	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/world"
)

// ProductionSystem advances every active producer by rate*dt. Completing a cycle resets
// progress to 0 and credits the ledger once; surplus beyond one cycle is dropped.
// Terrain-gated buildings off their required terrain are frozen, not reset.
// A nil provider disables the terrain gate.
func ProductionSystem(w *world.World, dt float64, provider world.TerrainProvider) {
	for _, e := range w.Entities.Query(w.Buildings, w.Productions) {
		prod, _ := w.Productions.Get(e)
		if !prod.Active {
			continue
		}
		b, _ := w.Buildings.Get(e)
		def, known := components.Lookup(b.Type)

		if known && def.RequiresTerrain && provider != nil &&
			provider.TerrainAt(b.GridX, b.GridY) != def.RequiredTerrain {
			continue
		}

		prod.Progress += prod.Rate * dt
		completed := prod.Progress >= 1
		if completed {
			prod.Progress = 0
		}
		w.Productions.Attach(e, prod)

		if !completed || !known || def.Production == nil {
			continue
		}
		w.ModifyResources(def.Production.Amount)
		w.Publish(bus.EventProductionCycle, bus.ProductionEvent{
			Entity:   uint64(e),
			Resource: string(def.Production.Resource),
			Amount:   def.Production.Amount,
		})
	}
}
