package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gazelink/go-gazelink/internal/log"
	"github.com/gazelink/go-gazelink/pkg/protocol"
)

// SenderConfig holds sender-side transport parameters.
type SenderConfig struct {
	// DialTimeout bounds the connection attempt.
	DialTimeout time.Duration

	// WriteTimeout bounds each message write. Sends are fire-and-forget
	// at sensor frame rate; a stalled peer must fail the write quickly
	// rather than stall the sensor-processing thread.
	WriteTimeout time.Duration
}

// DefaultSenderConfig returns the recommended sender parameters.
func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		DialTimeout:  5 * time.Second,
		WriteTimeout: 250 * time.Millisecond,
	}
}

// Sender streams gaze messages to one receiver over a persistent TCP
// connection. There is no acknowledgement, no backpressure signal, and
// no automatic reconnect: after a failure the owner must call Connect
// again.
type Sender struct {
	config SenderConfig

	mu       sync.Mutex
	conn     net.Conn
	state    ConnectionState
	peerID   string
	terminal bool // terminal event already emitted for this session

	events chan Event
}

// NewSender creates a sender. Connect establishes the session.
func NewSender(config SenderConfig) *Sender {
	return &Sender{
		config: config,
		state:  StateIdle,
		events: make(chan Event, 8),
	}
}

// Events returns the lifecycle event channel. Events are dropped rather
// than block the sending thread if the owner stops draining.
func (s *Sender) Events() <-chan Event { return s.events }

// State returns the current connection state.
func (s *Sender) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect dials the receiver at addr (host:port).
func (s *Sender) Connect(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateConnected {
		return ErrAlreadyConnected
	}

	conn, err := net.DialTimeout("tcp", addr, s.config.DialTimeout)
	if err != nil {
		s.state = StateFailed
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	s.conn = conn
	s.state = StateConnected
	s.peerID = addr
	s.terminal = false
	s.emit(Event{Kind: EventConnected, PeerID: addr})
	log.Info("sender connected", "peer", addr)
	return nil
}

// Send serializes one message as a single line and writes it with the
// configured deadline. A failed write tears the connection down and
// emits one error event; subsequent sends return ErrNotConnected.
func (s *Sender) Send(m *protocol.GazeMessage) error {
	line, err := protocol.EncodeLine(m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if _, err := s.conn.Write(line); err != nil {
		s.teardownLocked(err)
		return fmt.Errorf("write gaze message: %w", err)
	}
	return nil
}

// Close ends the session, emitting a single disconnected event if the
// connection was live.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.state = StateIdle
	if !s.terminal {
		s.terminal = true
		s.emit(Event{Kind: EventDisconnected, PeerID: s.peerID})
	}
	return err
}

// teardownLocked closes the connection after a write failure.
// Caller holds s.mu.
func (s *Sender) teardownLocked(cause error) {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.state = StateFailed
	if !s.terminal {
		s.terminal = true
		s.emit(Event{Kind: EventError, PeerID: s.peerID, Err: cause})
	}
	log.Warn("sender connection lost", "peer", s.peerID, "error", cause)
}

func (s *Sender) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		log.Debug("sender event dropped", "kind", ev.Kind.String())
	}
}
