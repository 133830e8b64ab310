package terrain

import "fmt"

// Kind classifies a grid cell
type Kind uint8

const (
	Water Kind = iota
	Sand
	Grass
	Mountain
	IronOre
)

func (k Kind) String() string {
	switch k {
	case Water:
		return "water"
	case Sand:
		return "sand"
	case Grass:
		return "grass"
	case Mountain:
		return "mountain"
	case IronOre:
		return "iron_ore"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Passable reports whether units can stand on the kind
func (k Kind) Passable() bool {
	return k != Water && k != Mountain
}

// Thresholds are upper noise bounds per classification, checked in ascending order
type Thresholds struct {
	Water    float64 `json:"WATER" yaml:"water"`
	Sand     float64 `json:"SAND" yaml:"sand"`
	Grass    float64 `json:"GRASS" yaml:"grass"`
	Mountain float64 `json:"MOUNTAIN" yaml:"mountain"`
}

// Params drive terrain generation
type Params struct {
	Seed        float64    `json:"seed" yaml:"seed"`
	Scale       float64    `json:"noiseScale" yaml:"noise_scale"`
	Octaves     int        `json:"noiseOctaves" yaml:"noise_octaves"`
	Persistence float64    `json:"noisePersistence" yaml:"noise_persistence"`
	OreChance   float64    `json:"oreChance" yaml:"ore_chance"`
	Thresholds  Thresholds `json:"terrainThresholds" yaml:"thresholds"`
}

// DefaultParams returns the stock generation parameters
func DefaultParams() Params {
	return Params{
		Seed:        0,
		Scale:       0.1,
		Octaves:     4,
		Persistence: 0.5,
		OreChance:   0.05,
		Thresholds: Thresholds{
			Water:    0.3,
			Sand:     0.4,
			Grass:    0.8,
			Mountain: 1.0,
		},
	}
}

// Classify maps a normalized noise value to a base kind. Ore placement is applied separately.
func (t Thresholds) Classify(v float64) Kind {
	switch {
	case v < t.Water:
		return Water
	case v < t.Sand:
		return Sand
	case v < t.Grass:
		return Grass
	default:
		return Mountain
	}
}
