package components

import (
	"fmt"

	"github.com/zeusync/stembranch/internal/core/terrain"
)

// BuildingType is a closed enumeration of placeable structures
type BuildingType uint8

const (
	MiningDrill BuildingType = iota
	Conveyor
)

// ResourceKind names what a production cycle yields
type ResourceKind string

const IronOre ResourceKind = "iron_ore"

// ProductionProfile describes a building's output
type ProductionProfile struct {
	Resource ResourceKind
	Rate     float64 // cycles per second
	Amount   int     // credited per completed cycle
}

// Definition is the static description of a building type
type Definition struct {
	Type       BuildingType
	Name       string
	Production *ProductionProfile

	// RequiredTerrain gates both placement and production when RequiresTerrain is set
	RequiredTerrain terrain.Kind
	RequiresTerrain bool
}

var definitions = [...]Definition{
	MiningDrill: {
		Type: MiningDrill,
		Name: "Mining Drill",
		Production: &ProductionProfile{
			Resource: IronOre,
			Rate:     1.0,
			Amount:   1,
		},
		RequiredTerrain: terrain.IronOre,
		RequiresTerrain: true,
	},
	Conveyor: {
		Type: Conveyor,
		Name: "Conveyor",
	},
}

// Lookup returns the definition for a building type
func Lookup(t BuildingType) (Definition, bool) {
	if int(t) >= len(definitions) {
		return Definition{}, false
	}
	d := definitions[t]
	if d.Production != nil {
		p := *d.Production
		d.Production = &p
	}
	return d, true
}

// BuildingTypes lists every known type in enum order
func BuildingTypes() []BuildingType {
	out := make([]BuildingType, len(definitions))
	for i := range definitions {
		out[i] = BuildingType(i)
	}
	return out
}

// Valid reports whether t is a known building type
func (t BuildingType) Valid() bool {
	return int(t) < len(definitions)
}

func (t BuildingType) String() string {
	if d, ok := Lookup(t); ok {
		return d.Name
	}
	return fmt.Sprintf("building(%d)", uint8(t))
}
