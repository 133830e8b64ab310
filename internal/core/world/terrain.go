package world

import (
	"math"

	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/terrain"
)

// TerrainProvider answers terrain queries by grid cell
type TerrainProvider interface {
	TerrainAt(gridX, gridY int) terrain.Kind
	IsValidPosition(gridX, gridY int) bool
}

// BuildSiteValidator is an optional TerrainProvider extension deciding where buildings may go
type BuildSiteValidator interface {
	IsValidBuildPosition(gridX, gridY int, t components.BuildingType) bool
}

var (
	_ TerrainProvider    = (*MapTerrain)(nil)
	_ BuildSiteValidator = (*MapTerrain)(nil)
)

// MapTerrain serves a terrain grid and applies the build-site policy:
// the cell must be passable and unoccupied, and sit on the type's required terrain if it has one.
type MapTerrain struct {
	grid  *terrain.Grid
	world *World
}

// NewMapTerrain binds a grid to the world used for occupancy checks. world may be nil.
func NewMapTerrain(grid *terrain.Grid, w *World) *MapTerrain {
	return &MapTerrain{grid: grid, world: w}
}

// Grid returns the served grid
func (m *MapTerrain) Grid() *terrain.Grid {
	return m.grid
}

func (m *MapTerrain) TerrainAt(gridX, gridY int) terrain.Kind {
	return m.grid.TerrainAt(gridX, gridY)
}

func (m *MapTerrain) IsValidPosition(gridX, gridY int) bool {
	return m.grid.IsValidPosition(gridX, gridY)
}

func (m *MapTerrain) IsValidBuildPosition(gridX, gridY int, t components.BuildingType) bool {
	def, ok := components.Lookup(t)
	if !ok {
		return false
	}
	if !m.grid.IsValidPosition(gridX, gridY) {
		return false
	}
	if def.RequiresTerrain && m.grid.TerrainAt(gridX, gridY) != def.RequiredTerrain {
		return false
	}
	if m.world != nil {
		if _, occupied := m.world.BuildingAt(gridX, gridY); occupied {
			return false
		}
	}
	return true
}

// CellIndex maps a world coordinate to its grid cell: floor(coord / cellSize)
func CellIndex(coord, cellSize float64) int {
	return int(math.Floor(coord / cellSize))
}
