package server

import (
	"fmt"
	"time"

	"github.com/zeusync/stembranch/internal/core/input"
	"github.com/zeusync/stembranch/internal/core/sim"
)

// Client frame types
const (
	FrameInput  = "input"
	FrameSave   = "save"
	FrameLoad   = "load"
	FrameNewMap = "new_map"
	FrameState  = "state"
)

// Server frame types. FrameState doubles as the snapshot frame.
const (
	FrameEvent  = "event"
	FrameResult = "result"
	FrameError  = "error"
)

// ClientFrame is any message a websocket client may send
type ClientFrame struct {
	Type    string    `json:"type"`
	Press   []string  `json:"press,omitempty"`
	Release []string  `json:"release,omitempty"`
	Pointer *sim.Cell `json:"pointer,omitempty"`
	Seed    *float64  `json:"seed,omitempty"`
}

// Command converts an input frame into a session command. Unknown action names reject the whole frame.
func (f ClientFrame) Command() (sim.InputCommand, error) {
	cmd := sim.InputCommand{Pointer: f.Pointer}
	var err error
	if cmd.Press, err = parseActions(f.Press); err != nil {
		return sim.InputCommand{}, err
	}
	if cmd.Release, err = parseActions(f.Release); err != nil {
		return sim.InputCommand{}, err
	}
	return cmd, nil
}

func parseActions(names []string) ([]input.Action, error) {
	if len(names) == 0 {
		return nil, nil
	}
	actions := make([]input.Action, 0, len(names))
	for _, name := range names {
		a, ok := input.ParseAction(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidMessage, name)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// ServerFrame is any message the server pushes to clients
type ServerFrame struct {
	Type      string        `json:"type"`
	State     *sim.Snapshot `json:"state,omitempty"`
	Event     string        `json:"event,omitempty"`
	Data      any           `json:"data,omitempty"`
	Timestamp *time.Time    `json:"timestamp,omitempty"`
	Action    string        `json:"action,omitempty"`
	// OK is set on result frames only, so a failure still carries "ok":false
	OK        *bool         `json:"ok,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func resultFrame(action string, ok bool) ServerFrame {
	return ServerFrame{Type: FrameResult, Action: action, OK: &ok}
}
