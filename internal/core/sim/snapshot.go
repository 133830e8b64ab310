package sim

// Snapshot is the externally observed state after a tick
type Snapshot struct {
	Tick      uint64          `json:"tick"`
	Mode      string          `json:"mode"`
	Resources int             `json:"resources"`
	Player    *PlayerState    `json:"player,omitempty"`
	Buildings []BuildingState `json:"buildings"`
	Map       MapInfo         `json:"map"`
}

type PlayerState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	GridX   int     `json:"gridX"`
	GridY   int     `json:"gridY"`
	Terrain string  `json:"terrain"`
}

type BuildingState struct {
	Entity   uint64  `json:"entity"`
	Type     int     `json:"type"`
	Name     string  `json:"name"`
	GridX    int     `json:"gridX"`
	GridY    int     `json:"gridY"`
	Progress float64 `json:"progress,omitempty"`
	Active   bool    `json:"active"`
}

type MapInfo struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	CellSize float64 `json:"cellSize"`
	Seed     float64 `json:"seed"`
}

// Snapshot captures the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.terrain.Grid()
	snap := Snapshot{
		Tick:      s.tick,
		Mode:      s.input.Mode().String(),
		Resources: s.world.Resources(),
		Map: MapInfo{
			Width:    grid.Width(),
			Height:   grid.Height(),
			CellSize: s.world.Grid.CellSize,
			Seed:     s.params.Seed,
		},
	}

	if pos, ok := s.world.PlayerPosition(); ok {
		gx, gy := s.world.CellOf(pos)
		snap.Player = &PlayerState{
			X:       pos.X,
			Y:       pos.Y,
			GridX:   gx,
			GridY:   gy,
			Terrain: grid.TerrainAt(gx, gy).String(),
		}
	}

	records := s.world.BuildingRecords()
	snap.Buildings = make([]BuildingState, 0, len(records))
	for _, r := range records {
		snap.Buildings = append(snap.Buildings, BuildingState{
			Entity:   uint64(r.Entity),
			Type:     int(r.Building.Type),
			Name:     r.Building.Type.String(),
			GridX:    r.Building.GridX,
			GridY:    r.Building.GridY,
			Progress: r.Production.Progress,
			Active:   r.HasProduction && r.Production.Active,
		})
	}
	return snap
}
