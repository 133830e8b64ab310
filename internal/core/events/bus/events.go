package bus

import "errors"

var ErrNilHandler = errors.New("event handler is nil")

// Simulation event types
const (
	EventBuildingPlaced   = "building.placed"
	EventBuildingRemoved  = "building.removed"
	EventProductionCycle  = "production.cycle"
	EventResourcesChanged = "resources.changed"
	EventMapSaved         = "map.saved"
	EventMapLoaded        = "map.loaded"
	EventMapGenerated     = "map.generated"
)

// BuildingEvent is the payload of EventBuildingPlaced and EventBuildingRemoved
type BuildingEvent struct {
	Entity uint64 `json:"entity"`
	Type   uint8  `json:"type"`
	GridX  int    `json:"gridX"`
	GridY  int    `json:"gridY"`
}

// ProductionEvent is the payload of EventProductionCycle
type ProductionEvent struct {
	Entity   uint64 `json:"entity"`
	Resource string `json:"resource"`
	Amount   int    `json:"amount"`
}

// ResourcesEvent is the payload of EventResourcesChanged
type ResourcesEvent struct {
	Previous int `json:"previous"`
	Current  int `json:"current"`
}

// MapEvent is the payload of the map lifecycle events
type MapEvent struct {
	Key       string  `json:"key,omitempty"`
	Seed      float64 `json:"seed"`
	Buildings int     `json:"buildings"`
}
