// Package pipeline runs the sender-side gaze pipeline: face samples in,
// wire messages out. Processing is frame-synchronous; each sample is
// carried through geometry, smoothing, calibration, and serialization
// before the next one is accepted, so a slow frame drops samples rather
// than queue them.
package pipeline

import (
	"context"
	"sync"

	"github.com/gazelink/go-gazelink/internal/log"
	"github.com/gazelink/go-gazelink/pkg/calibration"
	"github.com/gazelink/go-gazelink/pkg/facetrack"
	"github.com/gazelink/go-gazelink/pkg/geometry"
	"github.com/gazelink/go-gazelink/pkg/protocol"
	"github.com/gazelink/go-gazelink/pkg/smoothing"
)

// Sink receives the serialized frames. transport.Sender satisfies it.
type Sink interface {
	Send(*protocol.GazeMessage) error
}

// Config assembles the pipeline stages.
type Config struct {
	Scene     geometry.Scene
	Smoothing smoothing.Config
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Scene:     geometry.DefaultScene(),
		Smoothing: smoothing.DefaultConfig(),
	}
}

// Pipeline owns one tracking session's processing state.
type Pipeline struct {
	config    Config
	estimator *geometry.Estimator
	smoother  *smoothing.Smoother
	sink      Sink

	modelMu sync.RWMutex
	model   calibration.Model

	// OnGaze, if set, observes each calibrated output point.
	OnGaze func(calibration.Point)

	// OnTrackingLost, if set, observes tracking loss.
	OnTrackingLost func()

	// RawTap, if non-nil, receives each smoothed-but-uncalibrated point
	// without blocking; calibration capture listens here. Frames are
	// dropped when the tap is not drained.
	RawTap chan<- calibration.Point
}

// New creates a pipeline writing to sink.
func New(config Config, sink Sink) *Pipeline {
	return &Pipeline{
		config:    config,
		estimator: geometry.NewEstimator(config.Scene),
		smoother:  smoothing.New(config.Smoothing),
		sink:      sink,
		model:     calibration.Identity(),
	}
}

// SetModel swaps the calibration model. The model is replaced wholesale,
// never partially mutated.
func (p *Pipeline) SetModel(m calibration.Model) {
	p.modelMu.Lock()
	p.model = m
	p.modelMu.Unlock()
	log.Info("calibration model applied", "fitted", m.Fitted,
		"scaleX", m.ScaleX, "scaleY", m.ScaleY)
}

// Model returns the current calibration model.
func (p *Pipeline) Model() calibration.Model {
	p.modelMu.RLock()
	defer p.modelMu.RUnlock()
	return p.model
}

// Run consumes the source until it ends or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, source facetrack.Source) error {
	samples := source.Samples()
	events := source.Events()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Kind == facetrack.TrackingLost {
				p.smoother.Reset()
				if p.OnTrackingLost != nil {
					p.OnTrackingLost()
				}
				log.Debug("tracking lost, smoother reset")
			}

		case sample, ok := <-samples:
			if !ok {
				return nil
			}
			msg, ok := p.Process(sample)
			if !ok {
				continue
			}
			if err := p.sink.Send(msg); err != nil {
				// Fire-and-forget: a dead sink ends the run, the owner
				// decides whether to reconnect.
				return err
			}
		}
	}
}

// Process carries one sample through the full pipeline. ok is false
// when the frame produced no usable estimate (a gaze ray missed the
// screen plane): such frames are not emitted at all.
func (p *Pipeline) Process(sample facetrack.FaceSample) (*protocol.GazeMessage, bool) {
	raw, ok := p.estimator.Estimate(sample)
	if !ok {
		return nil, false
	}

	msg := p.baseMessage(sample)

	smoothed, ok := p.smoother.Push(smoothing.Sample{
		X:             raw.X,
		Y:             raw.Y,
		Timestamp:     sample.Timestamp,
		OpennessLeft:  1 - sample.BlinkLeft,
		OpennessRight: 1 - sample.BlinkRight,
	})
	if !ok {
		// Blink-gated or stage-rejected: the frame still ships the gaze
		// vector and blink state, just no screen position.
		return msg, true
	}

	calibrated := p.Model().Apply(calibration.Point{X: smoothed.X, Y: smoothed.Y})

	if p.RawTap != nil {
		select {
		case p.RawTap <- calibration.Point{X: smoothed.X, Y: smoothed.Y}:
		default:
		}
	}
	if p.OnGaze != nil {
		p.OnGaze(calibrated)
	}

	msg.ScreenPosition = &protocol.ScreenPoint{X: calibrated.X, Y: calibrated.Y}
	msg.PhoneScreenSize = &protocol.ScreenSize{
		Width:  p.config.Scene.PointWidth,
		Height: p.config.Scene.PointHeight,
	}
	return msg, true
}

// Reset clears per-session smoothing state.
func (p *Pipeline) Reset() {
	p.smoother.Reset()
}

// baseMessage fills the always-present wire fields from a sample.
func (p *Pipeline) baseMessage(sample facetrack.FaceSample) *protocol.GazeMessage {
	left := facetrack.EyePosition(sample.LeftEye)
	right := facetrack.EyePosition(sample.RightEye)
	mid := left.Add(right).Mul(0.5)

	dir := sample.LookAt.Sub(mid)
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}

	var flat [16]float32
	for i, v := range [16]float64(sample.Face) {
		flat[i] = float32(v)
	}

	return &protocol.GazeMessage{
		Timestamp:     sample.Timestamp,
		GazeVector:    protocol.Vector3{X: float32(dir.X()), Y: float32(dir.Y()), Z: float32(dir.Z())},
		FaceTransform: protocol.Transform{Flat: flat},
		EyeBlinkLeft:  float32(sample.BlinkLeft),
		EyeBlinkRight: float32(sample.BlinkRight),
		EyesOpen:      sample.EyesOpen(p.config.Smoothing.BlinkThreshold),
	}
}
