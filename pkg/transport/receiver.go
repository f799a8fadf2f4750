package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gazelink/go-gazelink/internal/log"
	"github.com/gazelink/go-gazelink/pkg/protocol"
)

// ReceiverConfig holds receiver-side transport parameters.
type ReceiverConfig struct {
	// Port is the TCP listen port. Zero picks an ephemeral port
	// (useful in tests).
	Port int

	// Advertise registers the receiver via mDNS under ServiceType.
	Advertise    bool
	ServiceName  string
	ServiceType  string
	Domain       string

	// ReadIdleTimeout bounds each read. A sender that goes silent for
	// this long is torn down with a timeout error rather than holding
	// the read forever.
	ReadIdleTimeout time.Duration
}

// DefaultReceiverConfig returns the standard receiver parameters:
// port 8080, advertised as _gazelink._tcp.
func DefaultReceiverConfig() ReceiverConfig {
	host, err := os.Hostname()
	if err != nil {
		host = "gazelink"
	}
	return ReceiverConfig{
		Port:            8080,
		Advertise:       true,
		ServiceName:     host,
		ServiceType:     "_gazelink._tcp",
		Domain:          "local.",
		ReadIdleTimeout: 30 * time.Second,
	}
}

// Incoming is one decoded message tagged with its sender connection.
type Incoming struct {
	PeerID string
	Msg    *protocol.GazeMessage
}

// Receiver accepts gaze streams over TCP and hands decoded messages to
// the owner through a channel. Multiple concurrent senders are accepted
// and treated as independent streams with no fan-in conflict resolution.
type Receiver struct {
	config ReceiverConfig

	mu       sync.Mutex
	listener net.Listener
	state    ConnectionState
	closed   bool
	dropped  uint64 // undecodable lines

	advertiser *Advertiser
	messages   chan Incoming
	events     chan Event
	wg         sync.WaitGroup
	cancel     context.CancelFunc
}

// NewReceiver creates a receiver. Start begins listening.
func NewReceiver(config ReceiverConfig) *Receiver {
	return &Receiver{
		config:   config,
		state:    StateIdle,
		messages: make(chan Incoming, 64),
		events:   make(chan Event, 16),
	}
}

// Messages returns the decoded-message channel. The read loops block on
// delivery, so the owner must drain it.
func (r *Receiver) Messages() <-chan Incoming { return r.messages }

// Events returns the connection lifecycle channel.
func (r *Receiver) Events() <-chan Event { return r.events }

// State returns the current listener state.
func (r *Receiver) State() ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Addr returns the bound listen address, valid after Start.
func (r *Receiver) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// DroppedLines reports how many undecodable lines have been discarded.
func (r *Receiver) DroppedLines() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Start begins listening and, if configured, advertising. It returns
// once the listener is bound; accepting runs in the background until
// ctx is cancelled or Close is called.
func (r *Receiver) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.listener != nil {
		return fmt.Errorf("transport: receiver already started")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", r.config.Port))
	if err != nil {
		r.state = StateFailed
		return fmt.Errorf("listen :%d: %w", r.config.Port, err)
	}
	r.listener = ln
	r.state = StateListening

	if r.config.Advertise {
		port := ln.Addr().(*net.TCPAddr).Port
		adv, err := NewAdvertiser(r.config.ServiceName, r.config.ServiceType, r.config.Domain, port)
		if err != nil {
			// Discovery is a convenience; direct-address connections
			// still work, so listening continues.
			log.Warn("service advertisement failed", "error", err)
		} else {
			r.advertiser = adv
		}
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.acceptLoop(ctx, ln)

	log.Info("receiver listening", "addr", ln.Addr().String(),
		"advertise", r.advertiser != nil)
	return nil
}

// Close tears down the listener and every live connection, cancelling
// in-flight reads. Safe to call more than once.
func (r *Receiver) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.state = StateIdle
	if r.cancel != nil {
		r.cancel()
	}
	ln := r.listener
	adv := r.advertiser
	r.mu.Unlock()

	if adv != nil {
		adv.Shutdown()
	}
	var err error
	if ln != nil {
		err = ln.Close()
	}
	r.wg.Wait()
	close(r.messages)
	close(r.events)
	return err
}

func (r *Receiver) acceptLoop(ctx context.Context, ln net.Listener) {
	defer r.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("accept failed", "error", err)
			continue
		}

		peerID := uuid.NewString()
		r.emit(Event{Kind: EventConnected, PeerID: peerID})
		log.Info("sender connected", "peer", peerID, "remote", conn.RemoteAddr().String())

		r.wg.Add(1)
		go r.readLoop(ctx, conn, peerID)
	}
}

// readLoop reads chunks from one connection, reassembles lines, and
// delivers decoded messages. It emits exactly one terminal event.
func (r *Receiver) readLoop(ctx context.Context, conn net.Conn, peerID string) {
	defer r.wg.Done()
	defer conn.Close()

	// Cancel the blocking read when the receiver shuts down.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var buf protocol.LineBuffer
	chunk := make([]byte, 4096)

	for {
		if r.config.ReadIdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(r.config.ReadIdleTimeout))
		}
		n, err := conn.Read(chunk)
		if n > 0 {
			for _, line := range buf.Feed(chunk[:n]) {
				msg, derr := protocol.DecodeLine(line)
				if derr != nil {
					// A corrupt message must not end the stream.
					r.mu.Lock()
					r.dropped++
					r.mu.Unlock()
					log.Debug("dropped malformed line", "peer", peerID, "error", derr)
					continue
				}
				select {
				case r.messages <- Incoming{PeerID: peerID, Msg: msg}:
				case <-ctx.Done():
					r.emit(Event{Kind: EventDisconnected, PeerID: peerID})
					return
				}
			}
		}
		if err != nil {
			switch {
			case ctx.Err() != nil:
				r.emit(Event{Kind: EventDisconnected, PeerID: peerID})
			case errors.Is(err, io.EOF):
				r.emit(Event{Kind: EventDisconnected, PeerID: peerID})
				log.Info("sender disconnected", "peer", peerID)
			default:
				r.emit(Event{Kind: EventError, PeerID: peerID, Err: err})
				log.Warn("read failed", "peer", peerID, "error", err)
			}
			return
		}
	}
}

func (r *Receiver) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		log.Debug("receiver event dropped", "kind", ev.Kind.String())
	}
}
