package systems

import (
	"math"

	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/terrain"
	"github.com/zeusync/stembranch/internal/core/world"
)

// ProcessMovementIntents copies MoveIntent into Velocity unscaled and zeroes Velocity
// on entities without one, so movement stops as soon as input does.
func ProcessMovementIntents(w *world.World) {
	for _, e := range w.Entities.Query(w.Velocities) {
		intent, ok := w.MoveIntents.Get(e)
		if !ok {
			w.Velocities.Attach(e, components.Velocity{})
			continue
		}
		w.Velocities.Attach(e, components.Velocity{X: intent.X, Y: intent.Y})
	}
}

// MovementSystem integrates positions. Each axis is checked against the terrain on its own,
// so an entity can slide along a wall. A blocked axis keeps its coordinate and the velocity is
// left alone. A nil provider permits every move and applies no terrain speed factor.
func MovementSystem(w *world.World, dt float64, provider world.TerrainProvider) {
	cell := w.Grid.CellSize
	maxX, maxY := w.Grid.WorldWidth(), w.Grid.WorldHeight()

	for _, e := range w.Entities.Query(w.Positions, w.Velocities) {
		pos, _ := w.Positions.Get(e)
		vel, _ := w.Velocities.Get(e)
		if vel.X == 0 && vel.Y == 0 {
			continue
		}

		gx := world.CellIndex(pos.X, cell)
		gy := world.CellIndex(pos.Y, cell)

		speed := w.Player.BaseSpeed
		if provider != nil && provider.TerrainAt(gx, gy) == terrain.Sand {
			speed *= w.Player.SandSpeedMultiplier
		}

		next := pos
		if vel.X != 0 {
			nx := pos.X + vel.X*speed*dt
			if provider == nil || provider.IsValidPosition(world.CellIndex(nx, cell), gy) {
				next.X = clampAxis(nx, maxX)
			}
		}
		if vel.Y != 0 {
			ny := pos.Y + vel.Y*speed*dt
			if provider == nil || provider.IsValidPosition(gx, world.CellIndex(ny, cell)) {
				next.Y = clampAxis(ny, maxY)
			}
		}
		if next != pos {
			w.Positions.Attach(e, next)
		}
	}
}

// clampAxis keeps v within [0, limit)
func clampAxis(v, limit float64) float64 {
	if v < 0 || limit <= 0 {
		return 0
	}
	if v >= limit {
		return math.Nextafter(limit, 0)
	}
	return v
}
