package input

import "fmt"

// Action is a named, bindable input
type Action uint8

const (
	ActionMoveUp Action = iota
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionInteract
	ActionToggleInventory
	ActionBuildMode
	ActionCancel
	ActionPlaceBuilding
	ActionRemoveBuilding

	actionCount
)

var actionNames = [actionCount]string{
	ActionMoveUp:          "move_up",
	ActionMoveDown:        "move_down",
	ActionMoveLeft:        "move_left",
	ActionMoveRight:       "move_right",
	ActionInteract:        "interact",
	ActionToggleInventory: "toggle_inventory",
	ActionBuildMode:       "build_mode",
	ActionCancel:          "cancel",
	ActionPlaceBuilding:   "place_building",
	ActionRemoveBuilding:  "remove_building",
}

func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction resolves a wire name such as "move_up"
func ParseAction(name string) (Action, bool) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

// Mode is the current interaction mode
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeBuild
	ModeInventory
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeBuild:
		return "build"
	case ModeInventory:
		return "inventory"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// DiagonalFactor scales each axis when both are pressed so diagonal speed matches axis speed
const DiagonalFactor = 0.7071

// Snapshot is the per-tick view of input consumed by the intent system
type Snapshot interface {
	// Movement returns the direction vector, already normalized on diagonals
	Movement() (x, y float64)
	IsActive(a Action) bool
	// JustPressed is edge-triggered: true only on the tick the action went down
	JustPressed(a Action) bool
	Mode() Mode
	// PointerGrid is the grid cell under the cursor
	PointerGrid() (x, y int)
}

// MovementVector derives the direction from held movement actions.
// Left wins over right and up wins over down when both are held.
func MovementVector(s interface{ IsActive(Action) bool }) (x, y float64) {
	if s.IsActive(ActionMoveLeft) {
		x = -1
	} else if s.IsActive(ActionMoveRight) {
		x = 1
	}
	if s.IsActive(ActionMoveUp) {
		y = -1
	} else if s.IsActive(ActionMoveDown) {
		y = 1
	}
	if x != 0 && y != 0 {
		x *= DiagonalFactor
		y *= DiagonalFactor
	}
	return x, y
}
