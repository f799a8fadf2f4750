// Package remote converts sender-relative gaze points into receiver
// screen coordinates and drives the receiver's system pointer under
// rate and distance guards.
package remote

// Point is a receiver-absolute screen position in points,
// origin top-left.
type Point struct {
	X float64
	Y float64
}

// Mapper converts calibrated sender-relative points (origin at sender
// screen centre, +Y up) into receiver-absolute coordinates. It is a
// session object owned by the caller; Reset starts a fresh smoothing
// session.
type Mapper struct {
	config MapperConfig

	last   Point
	primed bool
}

// NewMapper creates a mapper for the configured receiver rectangle.
func NewMapper(config MapperConfig) *Mapper {
	return &Mapper{config: config}
}

// Map converts one sender-relative point given the sender's screen size
// in points. The point is shifted to a top-left origin, normalized,
// vertically inverted (sender "up" is receiver "top"), scaled into the
// receiver rectangle, clamped to its bounds, then exponentially
// smoothed against the previous output.
func (m *Mapper) Map(senderX, senderY, senderWidth, senderHeight float64) Point {
	nx := (senderX + senderWidth/2) / senderWidth
	ny := (senderHeight/2 - senderY) / senderHeight

	r := m.config.Screen
	pt := Point{
		X: clamp(r.X+nx*r.Width, r.X, r.X+r.Width),
		Y: clamp(r.Y+ny*r.Height, r.Y, r.Y+r.Height),
	}

	if !m.primed {
		m.last = pt
		m.primed = true
		return pt
	}

	a := m.config.Alpha
	m.last = Point{
		X: a*m.last.X + (1-a)*pt.X,
		Y: a*m.last.Y + (1-a)*pt.Y,
	}
	return m.last
}

// Reset clears the smoothing state, e.g. when a new sender connects.
func (m *Mapper) Reset() {
	m.primed = false
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
