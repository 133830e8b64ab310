package systems

import (
	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/input"
	"github.com/zeusync/stembranch/internal/core/world"
)

// IntentSystem translates the input snapshot into intent components on every player entity.
// It only touches intent components. A nil snapshot leaves intents as they are.
func IntentSystem(w *world.World, in input.Snapshot) {
	if in == nil {
		return
	}
	mx, my := in.Movement()
	px, py := in.PointerGrid()
	building := in.Mode() == input.ModeBuild

	for _, e := range w.Entities.Query(w.Players) {
		if mx == 0 && my == 0 {
			w.MoveIntents.Detach(e)
		} else {
			w.MoveIntents.Attach(e, components.MoveIntent{X: mx, Y: my})
		}

		if building {
			if in.JustPressed(input.ActionPlaceBuilding) {
				// only one placeable type is bound to input for now
				w.BuildIntents.Attach(e, components.BuildIntent{Type: components.MiningDrill, GridX: px, GridY: py})
			}
			if in.JustPressed(input.ActionRemoveBuilding) {
				w.RemoveIntents.Attach(e, components.RemoveIntent{GridX: px, GridY: py})
			}
			continue
		}

		if in.JustPressed(input.ActionInteract) {
			w.InteractIntents.Attach(e, components.InteractIntent{GridX: px, GridY: py})
		}
		if in.JustPressed(input.ActionToggleInventory) {
			w.InventoryToggles.Add(e)
		}
	}
}

// CleanupIntents drops every one-shot intent whether or not it was acted on.
// MoveIntent is continuous and survives.
func CleanupIntents(w *world.World) {
	w.BuildIntents.Clear()
	w.RemoveIntents.Clear()
	w.InteractIntents.Clear()
	w.InventoryToggles.Clear()
}
