// Package cursor drives the receiver's pointer from an incoming gaze
// stream: remap to local coordinates, dwell detection, and guarded
// pointer actuation. All mutation happens on the controller's own
// goroutine so the read loops and the dwell tick cannot race.
package cursor

import (
	"context"
	"time"

	"github.com/gazelink/go-gazelink/internal/log"
	"github.com/gazelink/go-gazelink/pkg/dwell"
	"github.com/gazelink/go-gazelink/pkg/protocol"
	"github.com/gazelink/go-gazelink/pkg/remote"
	"github.com/gazelink/go-gazelink/pkg/transport"
)

// Config assembles the receiver-side processing stages.
type Config struct {
	Mapper   remote.MapperConfig
	Actuator remote.ActuatorConfig
	Dwell    dwell.Config

	// DefaultSenderSize is used for legacy messages that omit
	// phoneScreenSize.
	DefaultSenderSize protocol.ScreenSize
}

// DefaultConfig returns the standard controller configuration for the
// given receiver screen rectangle.
func DefaultConfig(screen remote.Rect) Config {
	return Config{
		Mapper:            remote.DefaultMapperConfig(screen),
		Actuator:          remote.DefaultActuatorConfig(),
		Dwell:             dwell.DefaultConfig(),
		DefaultSenderSize: protocol.ScreenSize{Width: 1311, Height: 603},
	}
}

// StateUpdater receives controller state for a dashboard.
type StateUpdater interface {
	UpdateCursor(x, y float64)
	UpdateConnection(state string, peers int)
}

// Controller consumes decoded gaze messages and applies them.
type Controller struct {
	config   Config
	mapper   *remote.Mapper
	actuator *remote.Actuator
	detector *dwell.Detector

	state StateUpdater
	peers int
}

// New creates a controller. hits resolves gaze positions to selectable
// regions; observer receives the dwell callbacks.
func New(config Config, warper remote.Warper, hits dwell.HitTester, observer dwell.Observer) *Controller {
	return &Controller{
		config:   config,
		mapper:   remote.NewMapper(config.Mapper),
		actuator: remote.NewActuator(config.Actuator, warper),
		detector: dwell.New(config.Dwell, hits, observer),
	}
}

// SetStateUpdater sets the dashboard state updater.
func (c *Controller) SetStateUpdater(state StateUpdater) {
	c.state = state
}

// Detector exposes the dwell detector for inspection.
func (c *Controller) Detector() *dwell.Detector { return c.detector }

// Run consumes the receiver until ctx is cancelled or the receiver
// closes. Messages, connection events, and the dwell tick are all
// serialized through this one goroutine.
func (c *Controller) Run(ctx context.Context, r *transport.Receiver) {
	ticker := time.NewTicker(c.config.Dwell.TickInterval)
	defer ticker.Stop()

	messages := r.Messages()
	events := r.Events()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			c.detector.Tick()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			c.handleEvent(ev)

		case in, ok := <-messages:
			if !ok {
				return
			}
			c.HandleMessage(in.Msg)
		}
	}
}

// HandleMessage applies one decoded gaze message.
func (c *Controller) HandleMessage(msg *protocol.GazeMessage) {
	if msg.ScreenPosition == nil {
		// Legacy or blink-gated frame: nothing to move, and not a
		// tracking loss either, so the dwell session stands.
		return
	}

	size := c.config.DefaultSenderSize
	if msg.PhoneScreenSize != nil {
		size = *msg.PhoneScreenSize
	}

	pt := c.mapper.Map(msg.ScreenPosition.X, msg.ScreenPosition.Y, size.Width, size.Height)
	c.detector.Update(pt.X, pt.Y)

	// Warp failures are logged by the actuator and do not advance its
	// rate-limit state, so the next frame retries from scratch.
	_, _ = c.actuator.MoveTo(pt)

	if c.state != nil {
		c.state.UpdateCursor(pt.X, pt.Y)
	}
}

// handleEvent reacts to connection lifecycle changes.
func (c *Controller) handleEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EventConnected:
		c.peers++
	case transport.EventDisconnected, transport.EventError:
		if c.peers > 0 {
			c.peers--
		}
		if c.peers == 0 {
			// The stream is gone: equivalent to tracking loss.
			c.detector.Reset()
			c.mapper.Reset()
			c.actuator.Reset()
			log.Info("all senders gone, cursor state reset")
		}
	}
	if c.state != nil {
		state := "listening"
		if c.peers > 0 {
			state = "connected"
		}
		c.state.UpdateConnection(state, c.peers)
	}
}
