package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/stembranch/internal/core/terrain"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration document
type Config struct {
	Grid       Grid           `json:"grid" yaml:"grid"`
	Player     Player         `json:"player" yaml:"player"`
	Terrain    terrain.Params `json:"terrain" yaml:"terrain"`
	Simulation Simulation     `json:"simulation" yaml:"simulation"`
	Storage    Storage        `json:"storage" yaml:"storage"`
	Server     Server         `json:"server" yaml:"server"`
	Log        Log            `json:"log" yaml:"log"`
}

// Grid sizes the world
type Grid struct {
	CellSize  float64 `json:"cell_size" yaml:"cell_size"`
	MapWidth  int     `json:"map_width" yaml:"map_width"`
	MapHeight int     `json:"map_height" yaml:"map_height"`
}

// WorldWidth is the map width in world units
func (g Grid) WorldWidth() float64 { return float64(g.MapWidth) * g.CellSize }

// WorldHeight is the map height in world units
func (g Grid) WorldHeight() float64 { return float64(g.MapHeight) * g.CellSize }

// Player tunes player movement
type Player struct {
	BaseSpeed           float64 `json:"base_speed" yaml:"base_speed"`
	SandSpeedMultiplier float64 `json:"sand_speed_multiplier" yaml:"sand_speed_multiplier"`
}

// Simulation controls the tick driver
type Simulation struct {
	TickRate int `json:"tick_rate" yaml:"tick_rate"`
	// MaxDelta caps a single step so a stalled host does not produce one huge tick
	MaxDelta time.Duration `json:"max_delta" yaml:"max_delta"`
	// SlowTick is the tick duration above which a debug line is logged; zero disables it
	SlowTick time.Duration `json:"slow_tick" yaml:"slow_tick"`
}

// TickInterval is the wall-clock period of one tick
func (s Simulation) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// Storage selects where maps are persisted
type Storage struct {
	Backend string `json:"backend" yaml:"backend"` // file | memory
	Dir     string `json:"dir" yaml:"dir"`
	Key     string `json:"key" yaml:"key"`
	Format  string `json:"format" yaml:"format"` // json | yaml
}

// Server configures the headless websocket front
type Server struct {
	Addr           string        `json:"addr" yaml:"addr"`
	BroadcastEvery int           `json:"broadcast_every" yaml:"broadcast_every"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout"`
	MaxClients     int           `json:"max_clients" yaml:"max_clients"`
	// RateLimit caps frames per second per websocket client, 0 disables it
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`
	// Token, when set, must be presented by websocket clients as ?token= or a bearer header
	Token string `json:"token" yaml:"token"`
}

// Log configures the zap logger
type Log struct {
	Level       string `json:"level" yaml:"level"`
	Encoding    string `json:"encoding" yaml:"encoding"`
	Development bool   `json:"development" yaml:"development"`
}

// Default returns the stock configuration
func Default() Config {
	return Config{
		Grid: Grid{
			CellSize:  32,
			MapWidth:  400,
			MapHeight: 400,
		},
		Player: Player{
			BaseSpeed:           1000,
			SandSpeedMultiplier: 1,
		},
		Terrain: terrain.DefaultParams(),
		Simulation: Simulation{
			TickRate: 60,
			MaxDelta: 250 * time.Millisecond,
			SlowTick: 4 * time.Millisecond,
		},
		Storage: Storage{
			Backend: "file",
			Dir:     "saves",
			Key:     "stem-and-branch--map-data",
			Format:  "json",
		},
		Server: Server{
			Addr:           "127.0.0.1:8080",
			BroadcastEvery: 3,
			WriteTimeout:   5 * time.Second,
			MaxClients:     64,
			RateLimit:      120,
		},
		Log: Log{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load decodes YAML from r on top of Default and validates the result
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config file. An empty path yields Default.
func LoadFile(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks invariants the simulation relies on
func (c Config) Validate() error {
	var errs []error
	if c.Grid.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("grid.cell_size must be positive, got %v", c.Grid.CellSize))
	}
	if c.Grid.MapWidth <= 0 || c.Grid.MapHeight <= 0 {
		errs = append(errs, fmt.Errorf("grid map size must be positive, got %dx%d", c.Grid.MapWidth, c.Grid.MapHeight))
	}
	if c.Player.BaseSpeed < 0 {
		errs = append(errs, fmt.Errorf("player.base_speed must not be negative"))
	}
	if c.Player.SandSpeedMultiplier < 0 {
		errs = append(errs, fmt.Errorf("player.sand_speed_multiplier must not be negative"))
	}
	th := c.Terrain.Thresholds
	if !(th.Water <= th.Sand && th.Sand <= th.Grass && th.Grass <= th.Mountain) {
		errs = append(errs, fmt.Errorf("terrain thresholds must be ascending"))
	}
	if c.Terrain.OreChance < 0 || c.Terrain.OreChance > 1 {
		errs = append(errs, fmt.Errorf("terrain.ore_chance must be within [0, 1]"))
	}
	if c.Simulation.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("simulation.tick_rate must be positive"))
	}
	if c.Simulation.SlowTick < 0 {
		errs = append(errs, fmt.Errorf("simulation.slow_tick must not be negative"))
	}
	switch c.Storage.Backend {
	case "file", "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of file, memory", c.Storage.Backend))
	}
	switch c.Storage.Format {
	case "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("storage.format %q is not one of json, yaml", c.Storage.Format))
	}
	if c.Storage.Key == "" {
		errs = append(errs, fmt.Errorf("storage.key is required"))
	}
	if c.Server.BroadcastEvery <= 0 {
		errs = append(errs, fmt.Errorf("server.broadcast_every must be positive"))
	}
	if c.Server.MaxClients < 0 || c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.max_clients and server.rate_limit must not be negative"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
