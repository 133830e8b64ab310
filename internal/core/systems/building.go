package systems

import (
	"github.com/zeusync/stembranch/internal/core/observability/log"
	"github.com/zeusync/stembranch/internal/core/world"
)

// ProcessBuildIntents places a building for each BuildIntent whose site passes validation.
// Rejected intents are dropped without retry; CleanupIntents removes them either way.
func ProcessBuildIntents(w *world.World, provider world.TerrainProvider) {
	for _, e := range w.Entities.Query(w.BuildIntents) {
		intent, _ := w.BuildIntents.Get(e)
		if _, ok := w.PlaceBuilding(intent.Type, intent.GridX, intent.GridY, provider); !ok {
			w.Logger().Debug("build intent rejected",
				log.String("type", intent.Type.String()),
				log.Int("grid_x", intent.GridX),
				log.Int("grid_y", intent.GridY),
			)
		}
	}
}

// ProcessRemoveIntents demolishes the building targeted by each RemoveIntent.
// An empty target cell is not an error.
func ProcessRemoveIntents(w *world.World) {
	for _, e := range w.Entities.Query(w.RemoveIntents) {
		intent, _ := w.RemoveIntents.Get(e)
		w.RemoveBuilding(intent.GridX, intent.GridY)
	}
}
