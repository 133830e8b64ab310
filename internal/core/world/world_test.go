package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/terrain"
)

func TestLedgerWithoutPlayer(t *testing.T) {
	w := New()
	assert.Zero(t, w.Resources())
	w.SetResources(10)
	w.ModifyResources(5)
	assert.Zero(t, w.Resources())
}

func TestLedgerClampsAtZero(t *testing.T) {
	w := New()
	w.CreatePlayerEntity(0, 0)

	rng := rand.New(rand.NewSource(42))
	prev := 0
	for i := 0; i < 500; i++ {
		delta := rng.Intn(21) - 12
		w.ModifyResources(delta)
		got := w.Resources()
		assert.GreaterOrEqual(t, got, 0)
		assert.Equal(t, max(0, prev+delta), got)
		prev = got
	}

	w.SetResources(-3)
	assert.Zero(t, w.Resources())
	w.SetResources(7)
	assert.Equal(t, 7, w.Resources())
}

func TestLedgerPublishesChanges(t *testing.T) {
	b := bus.New()
	var got []bus.ResourcesEvent
	_, err := b.Subscribe(bus.EventResourcesChanged, func(e bus.Event) error {
		got = append(got, e.Data().(bus.ResourcesEvent))
		return nil
	})
	require.NoError(t, err)

	w := New(WithEventBus(b))
	w.CreatePlayerEntity(0, 0)
	w.ModifyResources(3)
	w.ModifyResources(-10)
	w.ModifyResources(-1)

	assert.Equal(t, []bus.ResourcesEvent{{Previous: 0, Current: 3}, {Previous: 3, Current: 0}}, got)
}

func TestOccupancyHoldsUnderRandomOps(t *testing.T) {
	w := New()
	rng := rand.New(rand.NewSource(7))
	grid := terrain.NewGrid(4, 4, terrain.Grass)
	provider := NewMapTerrain(grid, w)

	for i := 0; i < 400; i++ {
		x, y := rng.Intn(4), rng.Intn(4)
		if rng.Intn(2) == 0 {
			w.PlaceBuilding(components.Conveyor, x, y, provider)
		} else {
			w.RemoveBuilding(x, y)
		}

		seen := map[[2]int]int{}
		for _, r := range w.BuildingRecords() {
			seen[[2]int{r.Building.GridX, r.Building.GridY}]++
		}
		for cell, n := range seen {
			require.Equal(t, 1, n, "cell %v", cell)
		}
	}
}

func TestAddBuildingAttachesProduction(t *testing.T) {
	w := New()
	drill := w.AddBuilding(components.MiningDrill, 1, 2)
	conv := w.AddBuilding(components.Conveyor, 2, 2)

	p, ok := w.Productions.Get(drill)
	require.True(t, ok)
	assert.Equal(t, components.Production{Rate: 1.0, Progress: 0, Active: true}, p)
	assert.False(t, w.Productions.Has(conv))

	e, ok := w.BuildingAt(1, 2)
	require.True(t, ok)
	assert.Equal(t, drill, e)

	assert.True(t, w.RemoveBuilding(1, 2))
	assert.False(t, w.RemoveBuilding(1, 2))
	assert.False(t, w.Entities.Exists(drill))
	_, ok = w.BuildingAt(1, 2)
	assert.False(t, ok)
}

func TestBuildSitePolicy(t *testing.T) {
	rows := [][]terrain.Kind{
		{terrain.Grass, terrain.IronOre, terrain.Water},
		{terrain.Sand, terrain.IronOre, terrain.Mountain},
	}
	grid, err := terrain.FromRows(rows)
	require.NoError(t, err)
	w := New()
	m := NewMapTerrain(grid, w)

	assert.True(t, m.IsValidBuildPosition(1, 0, components.MiningDrill))
	assert.False(t, m.IsValidBuildPosition(0, 0, components.MiningDrill), "drill needs ore")
	assert.True(t, m.IsValidBuildPosition(0, 0, components.Conveyor))
	assert.False(t, m.IsValidBuildPosition(2, 0, components.Conveyor), "water")
	assert.False(t, m.IsValidBuildPosition(2, 1, components.Conveyor), "mountain")
	assert.False(t, m.IsValidBuildPosition(5, 5, components.Conveyor), "out of bounds")
	assert.False(t, m.IsValidBuildPosition(0, 0, components.BuildingType(9)))

	_, ok := w.PlaceBuilding(components.MiningDrill, 1, 1, m)
	require.True(t, ok)
	assert.False(t, m.IsValidBuildPosition(1, 1, components.MiningDrill), "occupied")
	_, ok = w.PlaceBuilding(components.MiningDrill, 1, 1, nil)
	assert.False(t, ok, "occupancy is checked without a validator")
}

func TestResetKeepsCounting(t *testing.T) {
	w := New()
	p := w.CreatePlayerEntity(10, 10)
	w.AddBuilding(components.Conveyor, 0, 0)
	w.Reset()

	assert.Zero(t, w.Entities.Count())
	assert.Zero(t, w.Buildings.Len())
	_, ok := w.PlayerEntity()
	assert.False(t, ok)

	next := w.CreatePlayerEntity(0, 0)
	assert.Greater(t, next, p)
}

func TestClearBuildingsKeepsPlayer(t *testing.T) {
	w := New()
	w.CreatePlayerEntity(64, 96)
	w.AddBuilding(components.Conveyor, 0, 0)
	w.AddBuilding(components.MiningDrill, 1, 0)

	assert.Equal(t, 2, w.ClearBuildings())
	assert.Empty(t, w.BuildingRecords())

	pos, ok := w.PlayerPosition()
	require.True(t, ok)
	gx, gy := w.CellOf(pos)
	assert.Equal(t, 2, gx)
	assert.Equal(t, 3, gy)
}
