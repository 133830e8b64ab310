package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/stembranch/internal/config"
	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/input"
	"github.com/zeusync/stembranch/internal/core/storage"
	"github.com/zeusync/stembranch/internal/core/terrain"
	"github.com/zeusync/stembranch/internal/core/world"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Grid.MapWidth = 16
	cfg.Grid.MapHeight = 16
	cfg.Terrain.Seed = 3.5
	cfg.Storage.Backend = "memory"
	return cfg
}

func newSession(t *testing.T, backend storage.Storage, events bus.EventBus) *Session {
	t.Helper()
	cfg := testConfig()
	var maps *storage.MapStore
	if backend != nil {
		var err error
		maps, err = storage.NewMapStore(backend, cfg.Storage.Format, cfg.Storage.Key)
		require.NoError(t, err)
	}
	s, err := NewSession(context.Background(), cfg, maps, events, nil)
	require.NoError(t, err)
	return s
}

// flatten turns the whole map into kind so tests do not depend on generated terrain
func flatten(s *Session, kind terrain.Kind) {
	s.Inspect(func(_ *world.World, grid *terrain.Grid) {
		for y := 0; y < grid.Height(); y++ {
			for x := 0; x < grid.Width(); x++ {
				grid.Set(x, y, kind)
			}
		}
	})
}

func setCell(s *Session, x, y int, kind terrain.Kind) {
	s.Inspect(func(_ *world.World, grid *terrain.Grid) { grid.Set(x, y, kind) })
}

func TestNewSessionGeneratesMap(t *testing.T) {
	s := newSession(t, storage.NewMemoryStorage(), nil)
	snap := s.Snapshot()

	assert.Equal(t, uint64(0), snap.Tick)
	assert.Equal(t, "normal", snap.Mode)
	assert.Equal(t, 16, snap.Map.Width)
	assert.Equal(t, 3.5, snap.Map.Seed)
	require.NotNil(t, snap.Player)
	assert.Equal(t, 256.0, snap.Player.X)
	assert.Equal(t, 8, snap.Player.GridX)
	assert.Empty(t, snap.Buildings)
	assert.Zero(t, snap.Resources)

	other := newSession(t, nil, nil)
	s.Inspect(func(_ *world.World, a *terrain.Grid) {
		other.Inspect(func(_ *world.World, b *terrain.Grid) {
			assert.Equal(t, a.Rows(), b.Rows(), "same seed, same terrain")
		})
	})
}

func TestInputDrivesPlacementAndMovement(t *testing.T) {
	s := newSession(t, nil, nil)
	flatten(s, terrain.Grass)
	setCell(s, 3, 4, terrain.IronOre)

	s.ApplyInput(InputCommand{
		Press:   []input.Action{input.ActionBuildMode, input.ActionPlaceBuilding},
		Release: []input.Action{input.ActionBuildMode, input.ActionPlaceBuilding},
		Pointer: &Cell{X: 3, Y: 4},
	})
	s.Tick(100 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, "build", snap.Mode)
	require.Len(t, snap.Buildings, 1)
	assert.Equal(t, 3, snap.Buildings[0].GridX)
	assert.Equal(t, 4, snap.Buildings[0].GridY)
	assert.InDelta(t, 0.1, snap.Buildings[0].Progress, 1e-9)

	s.ApplyInput(InputCommand{Press: []input.Action{input.ActionMoveRight}})
	s.Tick(100 * time.Millisecond)
	snap = s.Snapshot()
	assert.InDelta(t, 356.0, snap.Player.X, 1e-9)
	assert.Equal(t, 256.0, snap.Player.Y)

	s.ReleaseInput()
	s.Tick(100 * time.Millisecond)
	assert.InDelta(t, 356.0, s.Snapshot().Player.X, 1e-9, "velocity decays once input stops")
}

func TestTickCapsDelta(t *testing.T) {
	s := newSession(t, nil, nil)
	flatten(s, terrain.IronOre)
	require.True(t, s.PlaceBuilding(components.MiningDrill, 1, 1))

	s.Tick(10 * time.Second)
	snap := s.Snapshot()
	require.Len(t, snap.Buildings, 1)
	assert.InDelta(t, 0.25, snap.Buildings[0].Progress, 1e-9)
	assert.Zero(t, snap.Resources)

	for i := 0; i < 3; i++ {
		s.Tick(time.Second)
	}
	assert.Equal(t, 1, s.Resources())
	assert.Equal(t, uint64(4), s.Snapshot().Tick)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := bus.New()
	var events []string
	_, err := b.Subscribe(bus.Wildcard, func(e bus.Event) error {
		events = append(events, e.Type())
		return nil
	})
	require.NoError(t, err)

	backend := storage.NewMemoryStorage()
	s := newSession(t, backend, b)
	ctx := context.Background()
	assert.False(t, s.HasSavedMap(ctx))
	assert.False(t, s.Load(ctx), "nothing saved yet")

	flatten(s, terrain.Grass)
	setCell(s, 2, 2, terrain.IronOre)
	require.True(t, s.PlaceBuilding(components.MiningDrill, 2, 2))
	require.False(t, s.PlaceBuilding(components.MiningDrill, 2, 2), "occupied")
	s.Tick(200 * time.Millisecond)

	var saved [][]terrain.Kind
	s.Inspect(func(_ *world.World, grid *terrain.Grid) { saved = grid.Rows() })
	require.True(t, s.Save(ctx))
	assert.True(t, s.HasSavedMap(ctx))

	s.NewMap(77)
	assert.Empty(t, s.Snapshot().Buildings)
	assert.Equal(t, 77.0, s.Snapshot().Map.Seed)

	require.True(t, s.Load(ctx))
	snap := s.Snapshot()
	require.Len(t, snap.Buildings, 1)
	assert.Equal(t, 2, snap.Buildings[0].GridX)
	assert.Zero(t, snap.Buildings[0].Progress, "progress restarts after load")
	assert.Equal(t, 3.5, snap.Map.Seed)
	s.Inspect(func(_ *world.World, grid *terrain.Grid) {
		assert.Equal(t, saved, grid.Rows())
	})

	assert.Contains(t, events, bus.EventBuildingPlaced)
	assert.Contains(t, events, bus.EventMapSaved)
	assert.Contains(t, events, bus.EventMapGenerated)
	assert.Contains(t, events, bus.EventMapLoaded)

	assert.True(t, s.DeleteSavedMap(ctx))
	assert.False(t, s.HasSavedMap(ctx))
}

func TestNewSessionLoadsSavedMap(t *testing.T) {
	backend := storage.NewMemoryStorage()
	first := newSession(t, backend, nil)
	flatten(first, terrain.Sand)
	require.True(t, first.PlaceBuilding(components.Conveyor, 5, 6))
	require.True(t, first.Save(context.Background()))

	second := newSession(t, backend, nil)
	snap := second.Snapshot()
	require.Len(t, snap.Buildings, 1)
	assert.Equal(t, "Conveyor", snap.Buildings[0].Name)
	assert.False(t, snap.Buildings[0].Active)
	assert.Equal(t, "sand", snap.Player.Terrain)
}

func TestFailedLoadLeavesWorldUntouched(t *testing.T) {
	backend := storage.NewMemoryStorage()
	s := newSession(t, backend, nil)
	ctx := context.Background()
	flatten(s, terrain.Grass)
	require.True(t, s.PlaceBuilding(components.Conveyor, 1, 1))
	s.SetResources(9)

	require.NoError(t, backend.Write(ctx, testConfig().Storage.Key, []byte("{broken")))
	assert.False(t, s.Load(ctx))

	snap := s.Snapshot()
	assert.Len(t, snap.Buildings, 1)
	assert.Equal(t, 9, snap.Resources)
}

func TestLoadRejectsStackedBuildings(t *testing.T) {
	backend := storage.NewMemoryStorage()
	s := newSession(t, backend, nil)
	ctx := context.Background()
	flatten(s, terrain.Grass)
	require.True(t, s.PlaceBuilding(components.Conveyor, 5, 5))

	cfg := testConfig()
	maps, err := storage.NewMapStore(backend, cfg.Storage.Format, cfg.Storage.Key)
	require.NoError(t, err)
	m := storage.EmptyMap(cfg.Grid.MapWidth, cfg.Grid.MapHeight, cfg.Terrain)
	m.Buildings = []storage.BuildingData{
		{Type: int(components.MiningDrill), GridX: 1, GridY: 1},
		{Type: int(components.Conveyor), GridX: 1, GridY: 1},
	}
	require.NoError(t, maps.Save(ctx, m))

	assert.False(t, s.Load(ctx))
	snap := s.Snapshot()
	require.Len(t, snap.Buildings, 1)
	assert.Equal(t, 5, snap.Buildings[0].GridX)
}

func TestSessionWithoutStorage(t *testing.T) {
	s := newSession(t, nil, nil)
	ctx := context.Background()
	assert.False(t, s.Save(ctx))
	assert.False(t, s.Load(ctx))
	assert.False(t, s.HasSavedMap(ctx))
	assert.False(t, s.DeleteSavedMap(ctx))
}

func TestExternalPlacementApi(t *testing.T) {
	s := newSession(t, nil, nil)
	flatten(s, terrain.Grass)
	setCell(s, 0, 0, terrain.Water)

	assert.False(t, s.PlaceBuilding(components.Conveyor, 0, 0), "water")
	assert.False(t, s.PlaceBuilding(components.MiningDrill, 1, 0), "no ore")
	assert.True(t, s.PlaceBuilding(components.Conveyor, 1, 0))
	assert.True(t, s.RemoveBuilding(1, 0))
	assert.False(t, s.RemoveBuilding(1, 0))

	s.SetResources(-4)
	assert.Zero(t, s.Resources())
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Grid.CellSize = 0
	_, err := NewSession(context.Background(), cfg, nil, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
