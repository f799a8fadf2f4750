package transport

import "errors"

// Sentinel errors for transport failures.
var (
	// ErrNotConnected is returned by Send before Connect or after the
	// connection has been torn down.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrAlreadyConnected is returned by Connect on a live sender.
	ErrAlreadyConnected = errors.New("transport: already connected")

	// ErrClosed is returned when using a closed receiver.
	ErrClosed = errors.New("transport: closed")

	// ErrNoPeersFound is returned when discovery finds no receivers.
	ErrNoPeersFound = errors.New("transport: no peers found")
)
