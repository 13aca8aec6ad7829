package model

// ConnectionState is the liveness of the shadow transport session.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

// String returns the lowercase state name, which is also the name used by
// the session state machine.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// ParseConnectionState converts a state name back to a ConnectionState.
// Unknown names map to Disconnected.
func ParseConnectionState(s string) ConnectionState {
	switch s {
	case "connecting":
		return Connecting
	case "connected":
		return Connected
	default:
		return Disconnected
	}
}
