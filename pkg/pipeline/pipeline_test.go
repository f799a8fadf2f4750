package pipeline

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gazelink/go-gazelink/pkg/calibration"
	"github.com/gazelink/go-gazelink/pkg/facetrack"
	"github.com/gazelink/go-gazelink/pkg/protocol"
)

// captureSink records sent messages. Safe for concurrent use.
type captureSink struct {
	mu       sync.Mutex
	messages []*protocol.GazeMessage
}

func (s *captureSink) Send(m *protocol.GazeMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return nil
}

func (s *captureSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *captureSink) at(i int) *protocol.GazeMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 {
		i += len(s.messages)
	}
	return s.messages[i]
}

func eyeAt(x, y, z float64) mgl64.Mat4 {
	m := mgl64.Ident4()
	m.Set(0, 3, x)
	m.Set(1, 3, y)
	m.Set(2, 3, z)
	return m
}

// lookingAt builds a sample with open eyes gazing at a point on the
// screen plane.
func lookingAt(ts, x, y float64) facetrack.FaceSample {
	return facetrack.FaceSample{
		Timestamp: ts,
		LeftEye:   eyeAt(-0.032, 0, 0.3),
		RightEye:  eyeAt(0.032, 0, 0.3),
		LookAt:    mgl64.Vec3{x, y, 0},
		Face:      mgl64.Ident4(),
		BlinkLeft: 0.05, BlinkRight: 0.05,
	}
}

func TestProcess_EmitsCalibratedPosition(t *testing.T) {
	sink := &captureSink{}
	p := New(DefaultConfig(), sink)
	p.SetModel(calibration.Model{
		ScaleX: 1.1, ScaleY: 0.95, OffsetX: 5, OffsetY: -3, Fitted: true,
	})

	msg, ok := p.Process(lookingAt(0, 0, 0))
	if !ok {
		t.Fatal("Process() ok = false, want message")
	}
	if msg.ScreenPosition == nil {
		t.Fatal("ScreenPosition = nil, want calibrated point")
	}

	// Raw centre gaze is (0, 0); calibrated = (5, -3).
	if math.Abs(msg.ScreenPosition.X-5) > 1e-9 || math.Abs(msg.ScreenPosition.Y-(-3)) > 1e-9 {
		t.Errorf("ScreenPosition = (%v, %v), want (5, -3)",
			msg.ScreenPosition.X, msg.ScreenPosition.Y)
	}
	if msg.PhoneScreenSize == nil || msg.PhoneScreenSize.Width != 1311 {
		t.Errorf("PhoneScreenSize = %v, want sender screen size", msg.PhoneScreenSize)
	}
	if !msg.EyesOpen {
		t.Error("EyesOpen = false, want true")
	}
}

func TestProcess_MissedRayDropsFrame(t *testing.T) {
	p := New(DefaultConfig(), &captureSink{})

	// Gaze parallel to the screen plane: no intersection, no frame.
	sample := facetrack.FaceSample{
		Timestamp: 1,
		LeftEye:   eyeAt(-0.032, 0, 0.3),
		RightEye:  eyeAt(0.032, 0, 0.3),
		LookAt:    mgl64.Vec3{1, 0, 0.3},
	}
	if _, ok := p.Process(sample); ok {
		t.Error("Process() ok = true for missed ray, want frame dropped")
	}
}

func TestProcess_BlinkShipsFrameWithoutPosition(t *testing.T) {
	p := New(DefaultConfig(), &captureSink{})

	sample := lookingAt(0, 0, 0)
	sample.BlinkLeft, sample.BlinkRight = 0.9, 0.95

	msg, ok := p.Process(sample)
	if !ok {
		t.Fatal("Process() ok = false during blink, want legacy frame")
	}
	if msg.ScreenPosition != nil {
		t.Error("ScreenPosition set during blink, want nil")
	}
	if msg.EyesOpen {
		t.Error("EyesOpen = true during blink")
	}
	if msg.EyeBlinkLeft < 0.8 {
		t.Errorf("EyeBlinkLeft = %v, want blink weight preserved", msg.EyeBlinkLeft)
	}
}

func TestRun_StreamsSamplesToSink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &captureSink{}
	p := New(DefaultConfig(), sink)
	source := facetrack.NewMockSource()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, source) }()

	for i := 0; i < 3; i++ {
		source.Emit(lookingAt(float64(i)/60, 0.01, 0))
	}
	source.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not finish after source close")
	}

	if sink.len() != 3 {
		t.Fatalf("sink received %d messages, want 3", sink.len())
	}
	for i := 0; i < 3; i++ {
		if ts := sink.at(i).Timestamp; ts != float64(i)/60 {
			t.Errorf("message %d timestamp = %v", i, ts)
		}
	}
}

func TestRun_TrackingLossResetsSmoother(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &captureSink{}
	p := New(DefaultConfig(), sink)

	lost := make(chan struct{}, 1)
	p.OnTrackingLost = func() { lost <- struct{}{} }

	source := facetrack.NewMockSource()
	go p.Run(ctx, source)

	// Build up window state at one position.
	for i := 0; i < 10; i++ {
		source.Emit(lookingAt(float64(i)/60, 0.05, 0))
	}
	preDeadline := time.After(2 * time.Second)
	for sink.len() < 10 {
		select {
		case <-preDeadline:
			t.Fatalf("timed out; sink has %d messages", sink.len())
		case <-time.After(5 * time.Millisecond):
		}
	}
	source.EmitLost(0.2)

	select {
	case <-lost:
	case <-time.After(2 * time.Second):
		t.Fatal("tracking loss not observed")
	}

	// After the reset the first new sample must not be averaged with the
	// pre-loss window: its smoothed value equals its own raw value.
	source.Emit(lookingAt(0.3, -0.05, 0))

	deadline := time.After(2 * time.Second)
	for sink.len() < 11 {
		select {
		case <-deadline:
			t.Fatalf("timed out; sink has %d messages", sink.len())
		case <-time.After(5 * time.Millisecond):
		}
	}

	last := sink.at(-1)
	if last.ScreenPosition == nil {
		t.Fatal("post-reset frame missing screen position")
	}
	preLoss := sink.at(0).ScreenPosition
	if math.Signbit(last.ScreenPosition.X) == math.Signbit(preLoss.X) {
		t.Errorf("post-reset X = %v not independent of pre-loss window (first X = %v)",
			last.ScreenPosition.X, preLoss.X)
	}
}
