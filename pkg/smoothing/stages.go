package smoothing

import "math"

// Stage is an optional filter applied to each windowed mean. Stages are
// independent and composable; the smoother applies them in order. A
// stage may transform the point or reject the frame outright.
type Stage interface {
	// Name identifies the stage for logging.
	Name() string

	// Apply filters one point. ts is the frame timestamp in seconds.
	// Returning ok=false suppresses output for this frame.
	Apply(pt Point, ts float64) (Point, bool)

	// Reset clears stage state for a new tracking session.
	Reset()
}

// =============================================================================
// Dead zone
// =============================================================================

// DeadZone suppresses movements smaller than a radius: the previously
// emitted point is repeated until the gaze moves past the threshold.
type DeadZone struct {
	radius float64
	last   Point
	primed bool
}

// NewDeadZone creates a dead-zone stage with the given radius in points.
func NewDeadZone(radius float64) *DeadZone {
	return &DeadZone{radius: radius}
}

// Name implements Stage.
func (d *DeadZone) Name() string { return "deadzone" }

// Apply implements Stage.
func (d *DeadZone) Apply(pt Point, _ float64) (Point, bool) {
	if !d.primed {
		d.last = pt
		d.primed = true
		return pt, true
	}
	if math.Hypot(pt.X-d.last.X, pt.Y-d.last.Y) < d.radius {
		return d.last, true
	}
	d.last = pt
	return pt, true
}

// Reset implements Stage.
func (d *DeadZone) Reset() { d.primed = false }

// =============================================================================
// Velocity cap
// =============================================================================

// VelocityCap limits gaze travel to a maximum speed in points per
// second, clamping larger jumps along their direction of motion.
type VelocityCap struct {
	maxPerSecond float64
	last         Point
	lastTS       float64
	primed       bool
}

// NewVelocityCap creates a velocity-cap stage.
func NewVelocityCap(maxPerSecond float64) *VelocityCap {
	return &VelocityCap{maxPerSecond: maxPerSecond}
}

// Name implements Stage.
func (v *VelocityCap) Name() string { return "velocitycap" }

// Apply implements Stage.
func (v *VelocityCap) Apply(pt Point, ts float64) (Point, bool) {
	if !v.primed {
		v.last, v.lastTS, v.primed = pt, ts, true
		return pt, true
	}

	dt := ts - v.lastTS
	if dt <= 0 {
		// Non-advancing timestamp: pass through, keep previous anchor.
		return pt, true
	}

	dx, dy := pt.X-v.last.X, pt.Y-v.last.Y
	dist := math.Hypot(dx, dy)
	if maxDist := v.maxPerSecond * dt; dist > maxDist {
		scale := maxDist / dist
		pt = Point{X: v.last.X + dx*scale, Y: v.last.Y + dy*scale}
	}

	v.last, v.lastTS = pt, ts
	return pt, true
}

// Reset implements Stage.
func (v *VelocityCap) Reset() { v.primed = false }

// =============================================================================
// Outlier rejection
// =============================================================================

// OutlierReject drops frames that jump further than a threshold from the
// last accepted point. The rejected frame produces no output at all.
type OutlierReject struct {
	threshold float64
	last      Point
	primed    bool
}

// NewOutlierReject creates an outlier-rejection stage.
func NewOutlierReject(threshold float64) *OutlierReject {
	return &OutlierReject{threshold: threshold}
}

// Name implements Stage.
func (o *OutlierReject) Name() string { return "outlier" }

// Apply implements Stage.
func (o *OutlierReject) Apply(pt Point, _ float64) (Point, bool) {
	if o.primed && math.Hypot(pt.X-o.last.X, pt.Y-o.last.Y) > o.threshold {
		return Point{}, false
	}
	o.last = pt
	o.primed = true
	return pt, true
}

// Reset implements Stage.
func (o *OutlierReject) Reset() { o.primed = false }

// =============================================================================
// Exponential average
// =============================================================================

// ExponentialAverage blends each point with the previous output:
// out = alpha*previous + (1-alpha)*new. An alternative to widening the
// sliding window when extra damping is wanted.
type ExponentialAverage struct {
	alpha  float64
	last   Point
	primed bool
}

// NewExponentialAverage creates an exponential-average stage.
// alpha is the weight on the previous output, in [0, 1).
func NewExponentialAverage(alpha float64) *ExponentialAverage {
	return &ExponentialAverage{alpha: alpha}
}

// Name implements Stage.
func (e *ExponentialAverage) Name() string { return "ema" }

// Apply implements Stage.
func (e *ExponentialAverage) Apply(pt Point, _ float64) (Point, bool) {
	if !e.primed {
		e.last = pt
		e.primed = true
		return pt, true
	}
	e.last = Point{
		X: e.alpha*e.last.X + (1-e.alpha)*pt.X,
		Y: e.alpha*e.last.Y + (1-e.alpha)*pt.Y,
	}
	return e.last, true
}

// Reset implements Stage.
func (e *ExponentialAverage) Reset() { e.primed = false }
