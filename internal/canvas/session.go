package canvas

import (
	"noteboard/internal/domain"
	"noteboard/internal/geometry"
)

// gestureState tags the session variant.
type gestureState int

const (
	gestureIdle gestureState = iota
	gesturePanning
	gestureDragging
	gestureConnecting
)

func (g gestureState) String() string {
	switch g {
	case gesturePanning:
		return "panning"
	case gestureDragging:
		return "dragging-block"
	case gestureConnecting:
		return "connecting"
	}
	return "idle"
}

// session is the ephemeral state of one pointer-down-to-up interaction. The
// engine owns exactly one for its whole lifetime; the tagged state, not
// listener presence, decides whether a move or release has any effect.
type session struct {
	state gestureState

	// Pointer tracking, screen space.
	start geometry.ScreenPoint
	last  geometry.ScreenPoint
	moved bool

	// Dragging.
	blockID     string
	blockStart  geometry.WorldPoint // block origin at drag start
	highlighted string              // edge id under the dragged block, if any

	// Connecting.
	fromBlock  string
	fromHandle domain.HandleSide
	preview    geometry.WorldPoint
}

// reset returns the session to idle, clearing every transient.
func (s *session) reset() {
	*s = session{}
}

// active reports whether any gesture is in flight.
func (s *session) active() bool { return s.state != gestureIdle }
