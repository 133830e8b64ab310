package systems

import (
	"sort"
	"time"

	"github.com/zeusync/stembranch/internal/core/input"
	"github.com/zeusync/stembranch/internal/core/observability/log"
	"github.com/zeusync/stembranch/internal/core/world"
)

// System represents one step of the per-tick pipeline
type System interface {
	Name() string
	Phase() ExecutionPhase
	Update(w *world.World, frame Frame)
}

// Frame carries the per-tick inputs shared by all systems
type Frame struct {
	DeltaTime float64
	Input     input.Snapshot
	// Terrain may be nil; systems then run unconstrained
	Terrain world.TerrainProvider
}

// ExecutionPhase defines when a system runs within a tick
type ExecutionPhase uint8

const (
	// PhaseInput translates input into intents
	PhaseInput ExecutionPhase = iota
	// PhaseResolve turns intents into component changes
	PhaseResolve
	// PhaseUpdate advances simulation state
	PhaseUpdate
	// PhaseCleanup drops one-shot intents
	PhaseCleanup
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseResolve:
		return "resolve"
	case PhaseUpdate:
		return "update"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount     uint64
	TotalExecutionTime time.Duration
	MaxExecutionTime   time.Duration
	LastExecutionTime  time.Duration
}

// AverageExecutionTime is TotalExecutionTime over ExecutionCount
func (m Metrics) AverageExecutionTime() time.Duration {
	if m.ExecutionCount == 0 {
		return 0
	}
	return m.TotalExecutionTime / time.Duration(m.ExecutionCount)
}

type funcSystem struct {
	name   string
	phase  ExecutionPhase
	update func(w *world.World, frame Frame)
}

func (s funcSystem) Name() string                       { return s.name }
func (s funcSystem) Phase() ExecutionPhase              { return s.phase }
func (s funcSystem) Update(w *world.World, frame Frame) { s.update(w, frame) }

// Func adapts a plain function to System
func Func(name string, phase ExecutionPhase, update func(w *world.World, frame Frame)) System {
	return funcSystem{name: name, phase: phase, update: update}
}

// Default returns the tick pipeline in its fixed order:
// intents, movement intents, build intents, remove intents, movement, production, cleanup.
func Default() []System {
	return []System{
		Func("intents", PhaseInput, func(w *world.World, f Frame) {
			IntentSystem(w, f.Input)
		}),
		Func("movement_intents", PhaseResolve, func(w *world.World, _ Frame) {
			ProcessMovementIntents(w)
		}),
		Func("build_intents", PhaseResolve, func(w *world.World, f Frame) {
			ProcessBuildIntents(w, f.Terrain)
		}),
		Func("remove_intents", PhaseResolve, func(w *world.World, _ Frame) {
			ProcessRemoveIntents(w)
		}),
		Func("movement", PhaseUpdate, func(w *world.World, f Frame) {
			MovementSystem(w, f.DeltaTime, f.Terrain)
		}),
		Func("production", PhaseUpdate, func(w *world.World, f Frame) {
			ProductionSystem(w, f.DeltaTime, f.Terrain)
		}),
		Func("cleanup_intents", PhaseCleanup, func(w *world.World, _ Frame) {
			CleanupIntents(w)
		}),
	}
}

// DefaultSlowTick is the tick duration above which the runner logs at debug level
const DefaultSlowTick = 4 * time.Millisecond

// Runner executes systems ordered by phase, keeping registration order within a phase
type Runner struct {
	systems  []System
	metrics  []Metrics
	ticks    uint64
	slowTick time.Duration
	logger   log.Log
}

// NewRunner creates a runner. With no systems it runs Default.
func NewRunner(logger log.Log, systems ...System) *Runner {
	if len(systems) == 0 {
		systems = Default()
	}
	ordered := make([]System, len(systems))
	copy(ordered, systems)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Phase() < ordered[j].Phase()
	})
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		systems:  ordered,
		metrics:  make([]Metrics, len(ordered)),
		slowTick: DefaultSlowTick,
		logger:   logger.Named("systems"),
	}
}

// SetSlowTick changes the slow tick threshold; zero disables the log
func (r *Runner) SetSlowTick(d time.Duration) {
	r.slowTick = d
}

// Tick runs every system once
func (r *Runner) Tick(w *world.World, frame Frame) {
	start := time.Now()
	for i, s := range r.systems {
		began := time.Now()
		s.Update(w, frame)
		r.record(i, time.Since(began))
	}
	r.ticks++

	if took := time.Since(start); r.slowTick > 0 && took > r.slowTick {
		r.logger.Debug("slow tick",
			log.Uint64("tick", r.ticks),
			log.Duration("took", took),
			log.Int("entities", w.Entities.Count()),
		)
	}
}

// Ticks returns how many ticks have run
func (r *Runner) Ticks() uint64 {
	return r.ticks
}

// ExecutionOrder lists system names in run order
func (r *Runner) ExecutionOrder() []string {
	names := make([]string, len(r.systems))
	for i, s := range r.systems {
		names[i] = s.Name()
	}
	return names
}

// SystemMetrics returns the metrics of the named system
func (r *Runner) SystemMetrics(name string) (Metrics, bool) {
	for i, s := range r.systems {
		if s.Name() == name {
			return r.metrics[i], true
		}
	}
	return Metrics{}, false
}

func (r *Runner) record(i int, took time.Duration) {
	m := &r.metrics[i]
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.LastExecutionTime = took
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
}
