// Package geometry converts face-tracking samples into raw screen-space
// gaze points by casting per-eye rays onto a virtual screen plane.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gazelink/go-gazelink/pkg/facetrack"
)

// parallelEpsilon rejects rays effectively parallel to the screen plane.
const parallelEpsilon = 1e-9

// RawGazePoint is an uncalibrated screen-space gaze estimate in point
// units, origin at screen centre, +X right, +Y up.
type RawGazePoint struct {
	X float64
	Y float64
}

// Estimator casts per-eye gaze rays onto the virtual screen plane.
// It is a session object: the caller owns it and its scene constants.
type Estimator struct {
	scene Scene
}

// NewEstimator creates an estimator for the given scene.
func NewEstimator(scene Scene) *Estimator {
	return &Estimator{scene: scene}
}

// Scene returns the scene constants in use.
func (e *Estimator) Scene() Scene { return e.scene }

// Estimate produces a raw gaze point for one face sample.
// Both eyes must yield a plane intersection; if either ray misses, the
// frame is discarded and ok is false. The two eye points are averaged
// without parallax correction or bounds checking.
func (e *Estimator) Estimate(s facetrack.FaceSample) (RawGazePoint, bool) {
	left, ok := e.castEye(facetrack.EyePosition(s.LeftEye), s.LookAt)
	if !ok {
		return RawGazePoint{}, false
	}
	right, ok := e.castEye(facetrack.EyePosition(s.RightEye), s.LookAt)
	if !ok {
		return RawGazePoint{}, false
	}

	return RawGazePoint{
		X: (left.X + right.X) / 2,
		Y: (left.Y + right.Y) / 2,
	}, true
}

// castEye intersects one eye's gaze ray with the screen plane and maps
// the plane-local hit to screen-point units.
func (e *Estimator) castEye(eye, lookAt mgl64.Vec3) (RawGazePoint, bool) {
	view := lookAt.Sub(eye)
	if view.Len() < parallelEpsilon {
		return RawGazePoint{}, false
	}

	// The look-at target sits at a fixed distance along the view ray; the
	// gaze ray runs from that target back through the eye.
	target := eye.Add(view.Normalize().Mul(e.scene.LookAtDistance))
	dir := eye.Sub(target)

	denom := dir.Dot(e.scene.PlaneNormal)
	if math.Abs(denom) < parallelEpsilon {
		return RawGazePoint{}, false
	}

	t := e.scene.PlaneCenter.Sub(target).Dot(e.scene.PlaneNormal) / denom
	hit := target.Add(dir.Mul(t))

	// Plane-local coordinates relative to the screen centre.
	d := hit.Sub(e.scene.PlaneCenter)
	localX := d.Dot(e.scene.PlaneRight)
	localY := d.Dot(e.scene.PlaneUp) + e.scene.HeightOffset

	return RawGazePoint{
		X: localX / (e.scene.PhysicalWidth / 2) * e.scene.PointWidth,
		Y: localY / (e.scene.PhysicalHeight / 2) * e.scene.PointHeight,
	}, true
}
