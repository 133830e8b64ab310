package input

var _ Snapshot = (*State)(nil)

// State is a mutable input collaborator fed by an external source (network, tests).
// Press/Release record transitions; Advance closes the tick and clears edge flags.
// It also drives the interaction mode machine.
type State struct {
	held     [actionCount]bool
	pressed  [actionCount]bool
	mode     Mode
	pointerX int
	pointerY int
}

func NewState() *State {
	return &State{}
}

// Press marks an action as held. A press while already held is not a new edge.
func (s *State) Press(a Action) {
	if a >= actionCount || s.held[a] {
		return
	}
	s.held[a] = true
	s.pressed[a] = true
	s.applyMode(a)
}

// Release marks an action as no longer held
func (s *State) Release(a Action) {
	if a >= actionCount {
		return
	}
	s.held[a] = false
}

// Tap presses and immediately releases an action; the edge stays visible until Advance
func (s *State) Tap(a Action) {
	s.Press(a)
	s.Release(a)
}

// ReleaseAll drops every held action, e.g. when the input source disconnects
func (s *State) ReleaseAll() {
	s.held = [actionCount]bool{}
}

// SetPointer records the grid cell under the cursor
func (s *State) SetPointer(x, y int) {
	s.pointerX, s.pointerY = x, y
}

// Advance clears edge-triggered state after a tick consumed it
func (s *State) Advance() {
	s.pressed = [actionCount]bool{}
}

func (s *State) Movement() (float64, float64) {
	return MovementVector(s)
}

func (s *State) IsActive(a Action) bool {
	return a < actionCount && s.held[a]
}

func (s *State) JustPressed(a Action) bool {
	return a < actionCount && s.pressed[a]
}

func (s *State) Mode() Mode {
	return s.mode
}

func (s *State) PointerGrid() (int, int) {
	return s.pointerX, s.pointerY
}

func (s *State) applyMode(a Action) {
	switch a {
	case ActionBuildMode:
		if s.mode == ModeBuild {
			s.mode = ModeNormal
		} else {
			s.mode = ModeBuild
		}
	case ActionToggleInventory:
		switch s.mode {
		case ModeInventory:
			s.mode = ModeNormal
		case ModeNormal:
			s.mode = ModeInventory
		}
	case ActionCancel:
		s.mode = ModeNormal
	}
}
