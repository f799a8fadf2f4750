// Package transport streams newline-framed gaze messages between two
// processes over a persistent TCP connection, with local-network service
// discovery on the receiving side.
package transport

// ConnectionState describes one endpoint's connection lifecycle.
type ConnectionState int

const (
	// StateIdle is the initial state: no connection and not listening.
	StateIdle ConnectionState = iota
	// StateListening means the receiver is accepting connections.
	StateListening
	// StateConnected means a peer connection is established.
	StateConnected
	// StateFailed means the last connection attempt or session ended in
	// an error. A new Connect/Start is required; there is no auto-retry.
	StateFailed
)

// String implements fmt.Stringer.
func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventKind identifies a connection lifecycle event.
type EventKind int

const (
	// EventConnected fires once per established peer connection.
	EventConnected EventKind = iota
	// EventDisconnected fires once when a peer connection closes cleanly.
	EventDisconnected
	// EventError fires once when a peer connection dies on an error.
	EventError
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a connection lifecycle notification. Each peer connection
// produces exactly one terminal event: Disconnected or Error, never both.
type Event struct {
	Kind   EventKind
	PeerID string
	Err    error
}
