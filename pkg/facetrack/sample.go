// Package facetrack defines the face-tracking sample types and the source
// boundary that delivers them. The sensor itself (ARKit-class face tracking
// on the handheld) lives outside this module; everything downstream consumes
// FaceSample values through the Source interface.
package facetrack

import (
	"github.com/go-gl/mathgl/mgl64"
)

// FaceSample is one frame of face-tracking output.
// All transforms share a single tracking coordinate space.
type FaceSample struct {
	// Timestamp is a monotonic time in seconds.
	Timestamp float64

	// LeftEye and RightEye are the eye poses (position + orientation).
	LeftEye  mgl64.Mat4
	RightEye mgl64.Mat4

	// LookAt is the sensor's 3D look-at estimate.
	LookAt mgl64.Vec3

	// Face is the full face anchor transform.
	Face mgl64.Mat4

	// BlinkLeft and BlinkRight are blink blend-shape weights,
	// 0 = fully open, 1 = fully closed.
	BlinkLeft  float64
	BlinkRight float64
}

// EyePosition extracts the translation component of an eye transform.
func EyePosition(m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}
}

// EyesOpen reports whether at least one eye's openness meets the threshold.
// Openness is 1 minus the blink weight.
func (s FaceSample) EyesOpen(threshold float64) bool {
	return (1-s.BlinkLeft) >= threshold || (1-s.BlinkRight) >= threshold
}

// EventKind identifies a tracking lifecycle event.
type EventKind int

const (
	// TrackingAcquired fires when a face anchor appears.
	TrackingAcquired EventKind = iota
	// TrackingLost fires when the face anchor is removed. Distinct from a
	// frame with closed eyes: downstream state must reset on this event.
	TrackingLost
)

// TrackingEvent is a tracking lifecycle notification.
type TrackingEvent struct {
	Kind      EventKind
	Timestamp float64
}

// Source delivers face samples and tracking events.
// Implementations own their goroutines; Close releases them.
type Source interface {
	// Samples returns the per-frame sample channel. Closed on Close.
	Samples() <-chan FaceSample

	// Events returns the tracking lifecycle channel. Closed on Close.
	Events() <-chan TrackingEvent

	// Close stops delivery and releases resources.
	Close() error
}
