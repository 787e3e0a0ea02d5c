// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/terrain-lod/internal/engine/debug"
)

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// browserKeys maps keys to LOD browser commands.
var browserKeys = map[sdl.Scancode]debug.Command{
	sdl.SCANCODE_GRAVE:    debug.CmdToggle,
	sdl.SCANCODE_PAGEDOWN: debug.CmdLevelUp,
	sdl.SCANCODE_PAGEUP:   debug.CmdLevelDown,
	sdl.SCANCODE_END:      debug.CmdDiffNext,
	sdl.SCANCODE_HOME:     debug.CmdDiffPrev,
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events. Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			// Held keys repeat; browsing steps once per press.
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Commands returns the browser commands pressed this frame, in order.
func (i *Input) Commands() []debug.Command {
	var cmds []debug.Command
	for _, e := range i.events {
		if e.Type != EventKeyDown {
			continue
		}
		if cmd, ok := browserKeys[e.Key]; ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
