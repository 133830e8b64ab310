package components

// Position is a world coordinate in pixels; the grid cell is floor(coord / cell size)
type Position struct {
	X, Y float64
}

// Velocity is a signed direction scaled by the movement system's speed
type Velocity struct {
	X, Y float64
}

// Resources is the player-owned resource count
type Resources struct {
	Amount int
}

// Building marks a placed structure on a grid cell
type Building struct {
	Type  BuildingType
	GridX int
	GridY int
}

// Production tracks progress towards the next output cycle.
// Progress stays in [0, 1).
type Production struct {
	Rate     float64 // cycles per second
	Progress float64
	Active   bool
}

// MoveIntent is a normalized direction. It persists while movement input is held.
type MoveIntent struct {
	X, Y float64
}

// BuildIntent requests placement on a cell; consumed at the end of the tick
type BuildIntent struct {
	Type  BuildingType
	GridX int
	GridY int
}

// RemoveIntent requests demolition of the building on a cell; consumed at the end of the tick
type RemoveIntent struct {
	GridX int
	GridY int
}

// InteractIntent targets a cell; consumed at the end of the tick
type InteractIntent struct {
	GridX int
	GridY int
}
