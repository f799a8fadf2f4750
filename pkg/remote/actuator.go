package remote

import (
	"math"
	"time"

	"github.com/gazelink/go-gazelink/internal/log"
)

// Warper moves the system pointer to an absolute position.
// The platform implementation lives in warp.go; tests use MockWarper.
type Warper interface {
	Warp(x, y int) error
}

// Actuator applies mapped points to the system pointer, guarded by a
// minimum interval and a minimum per-axis move distance.
type Actuator struct {
	config ActuatorConfig
	warper Warper

	// now is injectable for tests.
	now func() time.Time

	lastWarp time.Time
	lastPt   Point
	moved    bool
}

// NewActuator creates an actuator over the given warper.
func NewActuator(config ActuatorConfig, warper Warper) *Actuator {
	return &Actuator{
		config: config,
		warper: warper,
		now:    time.Now,
	}
}

// MoveTo warps the pointer to pt if the guards allow it. It reports
// whether a warp was performed. A rejected warp is logged and skipped;
// the next attempt proceeds normally.
func (a *Actuator) MoveTo(pt Point) (bool, error) {
	now := a.now()
	if a.moved && now.Sub(a.lastWarp) < a.config.MinInterval {
		return false, nil
	}
	if a.moved &&
		math.Abs(pt.X-a.lastPt.X) <= a.config.MinMove &&
		math.Abs(pt.Y-a.lastPt.Y) <= a.config.MinMove {
		return false, nil
	}

	if err := a.warper.Warp(int(math.Round(pt.X)), int(math.Round(pt.Y))); err != nil {
		log.Warn("pointer warp rejected", "x", pt.X, "y", pt.Y, "error", err)
		return false, err
	}

	a.lastWarp = now
	a.lastPt = pt
	a.moved = true
	return true, nil
}

// Reset forgets the last warp so the next move is applied regardless of
// distance.
func (a *Actuator) Reset() {
	a.moved = false
}
