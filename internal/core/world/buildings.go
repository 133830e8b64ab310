package world

import (
	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/ecs"
	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/observability/log"
)

// BuildingRecord is a read-only view of one placed building
type BuildingRecord struct {
	Entity   ecs.EntityID
	Building components.Building
	// Production is the zero value when HasProduction is false
	Production    components.Production
	HasProduction bool
}

// AddBuilding creates a building entity without validating the site.
// Types with a production profile also get an active Production starting at zero progress.
func (w *World) AddBuilding(t components.BuildingType, gridX, gridY int) ecs.EntityID {
	e := w.Entities.CreateEntity()
	w.Buildings.Attach(e, components.Building{Type: t, GridX: gridX, GridY: gridY})
	if def, ok := components.Lookup(t); ok && def.Production != nil {
		w.Productions.Attach(e, components.Production{Rate: def.Production.Rate, Active: true})
	}

	w.logger.Debug("building added",
		log.Uint64("entity", uint64(e)),
		log.String("type", t.String()),
		log.Int("grid_x", gridX),
		log.Int("grid_y", gridY),
	)
	w.Publish(bus.EventBuildingPlaced, bus.BuildingEvent{Entity: uint64(e), Type: uint8(t), GridX: gridX, GridY: gridY})
	return e
}

// PlaceBuilding validates the site and adds the building.
// When provider implements BuildSiteValidator its policy is consulted first;
// the cell must be unoccupied in every case.
func (w *World) PlaceBuilding(t components.BuildingType, gridX, gridY int, provider TerrainProvider) (ecs.EntityID, bool) {
	if !t.Valid() {
		return 0, false
	}
	if v, ok := provider.(BuildSiteValidator); ok && !v.IsValidBuildPosition(gridX, gridY, t) {
		return 0, false
	}
	if _, occupied := w.BuildingAt(gridX, gridY); occupied {
		return 0, false
	}
	return w.AddBuilding(t, gridX, gridY), true
}

// RemoveBuilding destroys the building on the cell. It reports whether one was found.
func (w *World) RemoveBuilding(gridX, gridY int) bool {
	e, ok := w.BuildingAt(gridX, gridY)
	if !ok {
		return false
	}
	b, _ := w.Buildings.Get(e)
	w.Entities.DestroyEntity(e)

	w.logger.Debug("building removed", log.Uint64("entity", uint64(e)), log.Int("grid_x", gridX), log.Int("grid_y", gridY))
	w.Publish(bus.EventBuildingRemoved, bus.BuildingEvent{Entity: uint64(e), Type: uint8(b.Type), GridX: gridX, GridY: gridY})
	return true
}

// BuildingAt returns the building on the cell
func (w *World) BuildingAt(gridX, gridY int) (ecs.EntityID, bool) {
	for _, e := range w.Entities.Query(w.Buildings) {
		b, _ := w.Buildings.Get(e)
		if b.GridX == gridX && b.GridY == gridY {
			return e, true
		}
	}
	return 0, false
}

// BuildingRecords lists every building in creation order
func (w *World) BuildingRecords() []BuildingRecord {
	ids := w.Entities.Query(w.Buildings)
	out := make([]BuildingRecord, 0, len(ids))
	for _, e := range ids {
		b, _ := w.Buildings.Get(e)
		p, hasProd := w.Productions.Get(e)
		out = append(out, BuildingRecord{Entity: e, Building: b, Production: p, HasProduction: hasProd})
	}
	return out
}

// ClearBuildings destroys every building entity and returns how many were removed
func (w *World) ClearBuildings() int {
	ids := w.Entities.Query(w.Buildings)
	for _, e := range ids {
		w.Entities.DestroyEntity(e)
	}
	return len(ids)
}
