package storage

import (
	"fmt"

	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/terrain"
	"github.com/zeusync/stembranch/internal/core/world"
)

// MapData is the persisted map document. Field names follow the browser save format.
// Production progress is not persisted.
type MapData struct {
	Width       int            `json:"width" yaml:"width"`
	Height      int            `json:"height" yaml:"height"`
	// terrain codes are ints since encoding/json would base64 a []uint8 row
	TerrainGrid [][]int        `json:"terrainGrid" yaml:"terrain_grid"`
	Buildings   []BuildingData `json:"buildings" yaml:"buildings"`
	Seed        float64        `json:"seed" yaml:"seed"`

	GenerationParameters GenerationParameters `json:"generationParameters" yaml:"generation_parameters"`
}

// BuildingData is one saved building
type BuildingData struct {
	Type  int `json:"type" yaml:"type"`
	GridX int `json:"gridX" yaml:"grid_x"`
	GridY int `json:"gridY" yaml:"grid_y"`
}

type GenerationParameters struct {
	NoiseScale        float64            `json:"noiseScale" yaml:"noise_scale"`
	NoiseOctaves      int                `json:"noiseOctaves" yaml:"noise_octaves"`
	NoisePersistence  float64            `json:"noisePersistence" yaml:"noise_persistence"`
	TerrainThresholds terrain.Thresholds `json:"terrainThresholds" yaml:"terrain_thresholds"`
	OreChance         float64            `json:"oreChance,omitempty" yaml:"ore_chance,omitempty"`
}

// Capture projects the terrain grid and every building of w into a MapData
func Capture(w *world.World, grid *terrain.Grid, params terrain.Params) MapData {
	m := MapData{
		Width:       grid.Width(),
		Height:      grid.Height(),
		TerrainGrid: make([][]int, grid.Height()),
		Seed:        params.Seed,
		GenerationParameters: GenerationParameters{
			NoiseScale:        params.Scale,
			NoiseOctaves:      params.Octaves,
			NoisePersistence:  params.Persistence,
			TerrainThresholds: params.Thresholds,
			OreChance:         params.OreChance,
		},
	}
	for y, row := range grid.Rows() {
		codes := make([]int, len(row))
		for x, k := range row {
			codes[x] = int(k)
		}
		m.TerrainGrid[y] = codes
	}

	records := w.BuildingRecords()
	m.Buildings = make([]BuildingData, 0, len(records))
	for _, r := range records {
		m.Buildings = append(m.Buildings, BuildingData{
			Type:  int(r.Building.Type),
			GridX: r.Building.GridX,
			GridY: r.Building.GridY,
		})
	}
	return m
}

// EmptyMap is an all-grass map with no buildings
func EmptyMap(width, height int, params terrain.Params) MapData {
	return Capture(world.New(), terrain.NewGrid(width, height, terrain.Grass), params)
}

// Validate checks the grid shape and codes, and that buildings sit on distinct in-bounds cells
func (m MapData) Validate() error {
	if m.Width < 0 || m.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidMap, m.Width, m.Height)
	}
	if len(m.TerrainGrid) != m.Height {
		return fmt.Errorf("%w: %d rows, want %d", ErrInvalidMap, len(m.TerrainGrid), m.Height)
	}
	for y, row := range m.TerrainGrid {
		if len(row) != m.Width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidMap, y, len(row), m.Width)
		}
		for x, code := range row {
			if code < 0 || code > int(terrain.IronOre) {
				return fmt.Errorf("%w: unknown terrain code %d at (%d,%d)", ErrInvalidMap, code, x, y)
			}
		}
	}
	occupied := make(map[[2]int]int, len(m.Buildings))
	for i, b := range m.Buildings {
		if b.Type < 0 || !components.BuildingType(b.Type).Valid() {
			return fmt.Errorf("%w: building %d has unknown type %d", ErrInvalidMap, i, b.Type)
		}
		if b.GridX < 0 || b.GridX >= m.Width || b.GridY < 0 || b.GridY >= m.Height {
			return fmt.Errorf("%w: building %d at (%d,%d) is outside the map", ErrInvalidMap, i, b.GridX, b.GridY)
		}
		cell := [2]int{b.GridX, b.GridY}
		if prev, taken := occupied[cell]; taken {
			return fmt.Errorf("%w: buildings %d and %d share cell (%d,%d)", ErrInvalidMap, prev, i, b.GridX, b.GridY)
		}
		occupied[cell] = i
	}
	return nil
}

// Grid rebuilds the terrain grid
func (m MapData) Grid() (*terrain.Grid, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	g := terrain.NewGrid(m.Width, m.Height, terrain.Grass)
	for y, row := range m.TerrainGrid {
		for x, code := range row {
			g.Set(x, y, terrain.Kind(code))
		}
	}
	return g, nil
}

// Params returns the generation parameters the map was created with
func (m MapData) Params() terrain.Params {
	return terrain.Params{
		Seed:        m.Seed,
		Scale:       m.GenerationParameters.NoiseScale,
		Octaves:     m.GenerationParameters.NoiseOctaves,
		Persistence: m.GenerationParameters.NoisePersistence,
		OreChance:   m.GenerationParameters.OreChance,
		Thresholds:  m.GenerationParameters.TerrainThresholds,
	}
}

// RestoreBuildings destroys every building in w and re-adds the saved ones.
// Restored producers start from zero progress.
func (m MapData) RestoreBuildings(w *world.World) int {
	w.ClearBuildings()
	for _, b := range m.Buildings {
		w.AddBuilding(components.BuildingType(b.Type), b.GridX, b.GridY)
	}
	return len(m.Buildings)
}
