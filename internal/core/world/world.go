package world

import (
	"github.com/zeusync/stembranch/internal/config"
	"github.com/zeusync/stembranch/internal/core/components"
	"github.com/zeusync/stembranch/internal/core/ecs"
	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/observability/log"
)

// World owns every entity and component of one simulation.
// Systems receive it explicitly; nothing reaches it through package state.
// A World is not safe for concurrent use; the driver serialises access.
type World struct {
	Entities *ecs.Registry

	Positions     *ecs.Store[components.Position]
	Velocities    *ecs.Store[components.Velocity]
	ResourcePools *ecs.Store[components.Resources]
	Buildings     *ecs.Store[components.Building]
	Productions   *ecs.Store[components.Production]

	MoveIntents     *ecs.Store[components.MoveIntent]
	BuildIntents    *ecs.Store[components.BuildIntent]
	RemoveIntents   *ecs.Store[components.RemoveIntent]
	InteractIntents *ecs.Store[components.InteractIntent]

	// Players marks player-controlled entities
	Players *ecs.Tags
	// InventoryToggles is the one-shot toggle-inventory intent
	InventoryToggles *ecs.Tags

	Grid   config.Grid
	Player config.Player

	events bus.EventBus
	logger log.Log
}

// Option configures a World
type Option func(*World)

// WithGrid sets the cell size and map dimensions
func WithGrid(g config.Grid) Option {
	return func(w *World) { w.Grid = g }
}

// WithPlayer sets player movement tuning
func WithPlayer(p config.Player) Option {
	return func(w *World) { w.Player = p }
}

// WithEventBus publishes world changes on b
func WithEventBus(b bus.EventBus) Option {
	return func(w *World) { w.events = b }
}

// WithLogger sets the logger
func WithLogger(l log.Log) Option {
	return func(w *World) { w.logger = l }
}

// New creates an empty world. Grid and player settings default to config.Default.
func New(opts ...Option) *World {
	def := config.Default()
	w := &World{
		Entities:         ecs.NewRegistry(),
		Positions:        ecs.NewStore[components.Position](),
		Velocities:       ecs.NewStore[components.Velocity](),
		ResourcePools:    ecs.NewStore[components.Resources](),
		Buildings:        ecs.NewStore[components.Building](),
		Productions:      ecs.NewStore[components.Production](),
		MoveIntents:      ecs.NewStore[components.MoveIntent](),
		BuildIntents:     ecs.NewStore[components.BuildIntent](),
		RemoveIntents:    ecs.NewStore[components.RemoveIntent](),
		InteractIntents:  ecs.NewStore[components.InteractIntent](),
		Players:          ecs.NewTags(),
		InventoryToggles: ecs.NewTags(),
		Grid:             def.Grid,
		Player:           def.Player,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.NewNop()
	}

	w.Entities.Register(
		w.Positions, w.Velocities, w.ResourcePools, w.Buildings, w.Productions,
		w.MoveIntents, w.BuildIntents, w.RemoveIntents, w.InteractIntents,
		w.Players, w.InventoryToggles,
	)
	return w
}

// Logger returns the world's logger
func (w *World) Logger() log.Log {
	return w.logger
}

// CreatePlayerEntity spawns the player-controlled entity at (x, y) with an empty resource pool
func (w *World) CreatePlayerEntity(x, y float64) ecs.EntityID {
	e := w.Entities.CreateEntity()
	w.Positions.Attach(e, components.Position{X: x, Y: y})
	w.Velocities.Attach(e, components.Velocity{})
	w.ResourcePools.Attach(e, components.Resources{})
	w.Players.Add(e)
	w.logger.Debug("player created", log.Uint64("entity", uint64(e)), log.Float64("x", x), log.Float64("y", y))
	return e
}

// PlayerEntity returns the first player-controlled entity
func (w *World) PlayerEntity() (ecs.EntityID, bool) {
	return w.Entities.First(w.Players)
}

// PlayerPosition returns the player's position
func (w *World) PlayerPosition() (components.Position, bool) {
	e, ok := w.Entities.First(w.Players, w.Positions)
	if !ok {
		return components.Position{}, false
	}
	return w.Positions.Get(e)
}

// CellOf converts a world coordinate to its grid cell
func (w *World) CellOf(p components.Position) (int, int) {
	return CellIndex(p.X, w.Grid.CellSize), CellIndex(p.Y, w.Grid.CellSize)
}

// Reset destroys every entity. Entity IDs keep counting up.
func (w *World) Reset() {
	w.Entities.Clear()
}

// Publish sends an event on the world's bus, if one is attached. Handler errors are logged.
func (w *World) Publish(eventType string, data any) {
	if w.events == nil {
		return
	}
	if err := w.events.Publish(bus.NewEvent(eventType, "world", data)); err != nil {
		w.logger.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
