package sim

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/zeusync/stembranch/internal/config"
	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/ecs"
	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/input"
	"github.com/zeusync/stembranch/internal/core/observability/log"
	"github.com/zeusync/stembranch/internal/core/storage"
	"github.com/zeusync/stembranch/internal/core/systems"
	"github.com/zeusync/stembranch/internal/core/terrain"
	"github.com/zeusync/stembranch/internal/core/world"
)

// Session drives one world: it owns the terrain, the input state and the system runner,
// and serialises ticks, input and persistence with a single mutex.
type Session struct {
	mu sync.Mutex

	cfg     config.Config
	world   *world.World
	terrain *world.MapTerrain
	params  terrain.Params
	input   *input.State
	runner  *systems.Runner
	maps    *storage.MapStore
	logger  log.Log

	player ecs.EntityID
	tick   uint64
}

// NewSession builds the world. A saved map is loaded when one exists; otherwise a map is
// generated from cfg.Terrain, with a random seed if the configured seed is zero.
// maps and events may be nil.
func NewSession(ctx context.Context, cfg config.Config, maps *storage.MapStore, events bus.EventBus, logger log.Log) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.Named("sim")

	w := world.New(
		world.WithGrid(cfg.Grid),
		world.WithPlayer(cfg.Player),
		world.WithEventBus(events),
		world.WithLogger(logger),
	)
	runner := systems.NewRunner(logger)
	runner.SetSlowTick(cfg.Simulation.SlowTick)
	s := &Session{
		cfg:    cfg,
		world:  w,
		params: cfg.Terrain,
		input:  input.NewState(),
		runner: runner,
		maps:   maps,
		logger: logger,
	}

	loaded := false
	if maps != nil {
		exists, err := maps.Exists(ctx)
		if err != nil {
			logger.Warn("saved map check failed", log.Error(err))
		}
		if exists {
			loaded = s.loadLocked(ctx)
		}
	}
	if !loaded {
		seed := cfg.Terrain.Seed
		if seed == 0 {
			seed = RandomSeed()
		}
		s.generateLocked(seed)
	}

	s.player = w.CreatePlayerEntity(w.Grid.WorldWidth()/2, w.Grid.WorldHeight()/2)
	logger.Info("session ready",
		log.Bool("loaded", loaded),
		log.Int("width", s.terrain.Grid().Width()),
		log.Int("height", s.terrain.Grid().Height()),
		log.Float64("seed", s.params.Seed),
	)
	return s, nil
}

// RandomSeed returns a seed in [0, 1000)
func RandomSeed() float64 {
	return rand.Float64() * 1000
}

// Tick advances the simulation by dt, capped at simulation.max_delta, and returns the new tick number
func (s *Session) Tick(dt time.Duration) uint64 {
	if dt < 0 {
		dt = 0
	}
	if limit := s.cfg.Simulation.MaxDelta; limit > 0 && dt > limit {
		dt = limit
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runner.Tick(s.world, systems.Frame{
		DeltaTime: dt.Seconds(),
		Input:     s.input,
		Terrain:   s.terrain,
	})
	s.input.Advance()
	s.tick++
	return s.tick
}

// InputCommand is one batch of input transitions from a client
type InputCommand struct {
	Press   []input.Action
	Release []input.Action
	Pointer *Cell
}

// Cell is a grid coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ApplyInput feeds transitions into the input state. Presses are applied before releases,
// so a press and release in the same batch still registers as one edge on the next tick.
func (s *Session) ApplyInput(cmd InputCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd.Pointer != nil {
		s.input.SetPointer(cmd.Pointer.X, cmd.Pointer.Y)
	}
	for _, a := range cmd.Press {
		s.input.Press(a)
	}
	for _, a := range cmd.Release {
		s.input.Release(a)
	}
}

// ReleaseInput drops all held actions
func (s *Session) ReleaseInput() {
	s.mu.Lock()
	s.input.ReleaseAll()
	s.mu.Unlock()
}

// Save writes the current map and buildings. Failures are logged and leave the world untouched.
func (s *Session) Save(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maps == nil {
		s.logger.Warn("save skipped: no map storage")
		return false
	}

	m := storage.Capture(s.world, s.terrain.Grid(), s.params)
	if err := s.maps.Save(ctx, m); err != nil {
		s.logger.Warn("save failed", log.String("key", s.maps.Key()), log.Error(err))
		return false
	}
	s.logger.Info("map saved", log.String("key", s.maps.Key()), log.Int("buildings", len(m.Buildings)))
	s.world.Publish(bus.EventMapSaved, bus.MapEvent{Key: s.maps.Key(), Seed: s.params.Seed, Buildings: len(m.Buildings)})
	return true
}

// Load replaces terrain and buildings with the saved map. Production progress restarts from zero.
func (s *Session) Load(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maps == nil {
		s.logger.Warn("load skipped: no map storage")
		return false
	}
	if !s.loadLocked(ctx) {
		return false
	}
	s.keepPlayerOnMap()
	return true
}

// NewMap generates fresh terrain with the current parameters and the given seed.
// Existing buildings are removed.
func (s *Session) NewMap(seed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.world.ClearBuildings()
	s.generateLocked(seed)
	s.keepPlayerOnMap()
	s.logger.Info("new map generated", log.Float64("seed", seed), log.Int("buildings_removed", removed))
}

// HasSavedMap reports whether a saved map exists
func (s *Session) HasSavedMap(ctx context.Context) bool {
	if s.maps == nil {
		return false
	}
	ok, err := s.maps.Exists(ctx)
	if err != nil {
		s.logger.Warn("saved map check failed", log.Error(err))
		return false
	}
	return ok
}

// DeleteSavedMap removes the saved map
func (s *Session) DeleteSavedMap(ctx context.Context) bool {
	if s.maps == nil {
		return false
	}
	if err := s.maps.Delete(ctx); err != nil {
		s.logger.Warn("delete saved map failed", log.Error(err))
		return false
	}
	s.logger.Info("saved map deleted", log.String("key", s.maps.Key()))
	return true
}

// PlaceBuilding places a building with the same site rules as build intents
func (s *Session) PlaceBuilding(t components.BuildingType, gridX, gridY int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.world.PlaceBuilding(t, gridX, gridY, s.terrain)
	if !ok {
		s.logger.Debug("placement rejected", log.String("type", t.String()), log.Int("grid_x", gridX), log.Int("grid_y", gridY))
	}
	return ok
}

// RemoveBuilding demolishes the building on the cell
func (s *Session) RemoveBuilding(gridX, gridY int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.RemoveBuilding(gridX, gridY)
}

// SetResources overwrites the player's resources
func (s *Session) SetResources(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.SetResources(amount)
}

// Resources returns the player's resources
func (s *Session) Resources() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Resources()
}

// Inspect runs fn with the world and terrain while holding the session lock.
// fn must not call back into the session.
func (s *Session) Inspect(fn func(w *world.World, grid *terrain.Grid)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.world, s.terrain.Grid())
}

func (s *Session) loadLocked(ctx context.Context) bool {
	m, err := s.maps.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info("no saved map", log.String("key", s.maps.Key()))
		} else {
			s.logger.Warn("load failed", log.String("key", s.maps.Key()), log.Error(err))
		}
		return false
	}
	grid, err := m.Grid()
	if err != nil {
		s.logger.Warn("saved map rejected", log.Error(err))
		return false
	}

	s.params = m.Params()
	s.setGrid(grid)
	n := m.RestoreBuildings(s.world)
	s.logger.Info("map loaded", log.String("key", s.maps.Key()), log.Int("buildings", n))
	s.world.Publish(bus.EventMapLoaded, bus.MapEvent{Key: s.maps.Key(), Seed: s.params.Seed, Buildings: n})
	return true
}

func (s *Session) generateLocked(seed float64) {
	s.params.Seed = seed
	start := time.Now()
	grid := terrain.Generate(s.cfg.Grid.MapWidth, s.cfg.Grid.MapHeight, s.params)
	s.setGrid(grid)
	s.logger.Debug("terrain generated",
		log.Float64("seed", seed),
		log.Duration("took", time.Since(start)),
		log.Int("ore_cells", grid.Count(terrain.IronOre)),
	)
	s.world.Publish(bus.EventMapGenerated, bus.MapEvent{Seed: seed})
}

func (s *Session) setGrid(grid *terrain.Grid) {
	s.terrain = world.NewMapTerrain(grid, s.world)
	s.world.Grid.MapWidth = grid.Width()
	s.world.Grid.MapHeight = grid.Height()
}

// keepPlayerOnMap moves the player to the map centre when a map swap left it outside
func (s *Session) keepPlayerOnMap() {
	pos, ok := s.world.Positions.Get(s.player)
	if !ok {
		return
	}
	gx, gy := s.world.CellOf(pos)
	if s.terrain.Grid().InBounds(gx, gy) {
		return
	}
	s.world.Positions.Attach(s.player, components.Position{
		X: s.world.Grid.WorldWidth() / 2,
		Y: s.world.Grid.WorldHeight() / 2,
	})
}
