// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern. The receiver
// dashboard uses it to stream gaze state to any number of browsers.
package hub

// Message is one pre-encoded JSON payload to broadcast to clients.
type Message struct {
	Data []byte
}

// NewMessage wraps pre-encoded JSON bytes.
func NewMessage(data []byte) Message {
	return Message{Data: data}
}
