package geometry

import "github.com/go-gl/mathgl/mgl64"

// Scene holds the calibration-independent scene constants: the virtual
// screen plane placed to match the physical display, its dimensions in
// both metres and points, and the look-at ray length.
type Scene struct {
	// PlaneCenter is the centre of the virtual screen plane in tracking space.
	PlaneCenter mgl64.Vec3

	// PlaneNormal is the plane's unit normal, facing the viewer.
	PlaneNormal mgl64.Vec3

	// PlaneRight and PlaneUp are unit axes spanning the plane.
	// PlaneRight points toward positive screen X, PlaneUp toward positive
	// screen Y (up, not flipped).
	PlaneRight mgl64.Vec3
	PlaneUp    mgl64.Vec3

	// Physical screen size in metres.
	PhysicalWidth  float64
	PhysicalHeight float64

	// Screen size in points.
	PointWidth  float64
	PointHeight float64

	// LookAtDistance places each eye's look-at target along its view ray,
	// in metres.
	LookAtDistance float64

	// HeightOffset is a per-device empirical vertical correction in plane
	// metres, applied to the local intersection Y. Zero by default.
	HeightOffset float64
}

// DefaultScene returns the scene constants for a phone held in landscape
// roughly 30cm in front of the face, screen facing the viewer along +Z.
func DefaultScene() Scene {
	return Scene{
		PlaneCenter:    mgl64.Vec3{0, 0, 0},
		PlaneNormal:    mgl64.Vec3{0, 0, 1},
		PlaneRight:     mgl64.Vec3{1, 0, 0},
		PlaneUp:        mgl64.Vec3{0, 1, 0},
		PhysicalWidth:  0.16,  // ~6.3" display, landscape
		PhysicalHeight: 0.0735,
		PointWidth:     1311,
		PointHeight:    603,
		LookAtDistance: 2.0,
		HeightOffset:   0,
	}
}
