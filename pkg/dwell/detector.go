// Package dwell turns sustained gaze on a screen region into a
// selection event: a hands-free "click" driven by a per-target timer
// state machine.
package dwell

import (
	"context"
	"sync"
	"time"
)

// HitTester resolves a gaze position to a selectable region.
// Implementations resolve overlapping regions topmost/most-specific
// first. The region identifier is opaque to the detector.
type HitTester interface {
	HitTest(x, y float64) (region string, ok bool)
}

// Observer receives dwell lifecycle callbacks. The detector delivers
// them from whichever goroutine drove the transition, with the session
// lock held: observers must return quickly and must not call back into
// the detector.
type Observer interface {
	// DwellStarted fires when gaze first lands on a region.
	DwellStarted(region string)

	// DwellProgress reports elapsed/threshold in [0, 1) on every tick.
	// Values are non-decreasing within one session.
	DwellProgress(region string, progress float64)

	// DwellCompleted fires once when progress reaches 1.
	DwellCompleted(region string)

	// DwellCancelled fires once when a session ends without selection:
	// gaze moved to another region, to no region, or tracking was lost.
	DwellCancelled(region string)
}

// state is the detector's phase.
type state int

const (
	stateIdle state = iota
	stateDwelling
)

// Detector is the dwell state machine. At most one session exists at a
// time. Position updates and ticks may arrive from different
// goroutines; all session state is guarded by one mutex.
type Detector struct {
	config   Config
	hits     HitTester
	observer Observer

	// now is injectable for tests.
	now func() time.Time

	mu     sync.Mutex
	state  state
	target string
	start  time.Time
}

// New creates a detector. observer may be nil to run event-free.
func New(config Config, hits HitTester, observer Observer) *Detector {
	return &Detector{
		config:   config,
		hits:     hits,
		observer: observer,
		now:      time.Now,
		state:    stateIdle,
	}
}

// Update drives the state machine with one gaze position.
func (d *Detector) Update(x, y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	region, ok := d.hits.HitTest(x, y)
	if !ok {
		d.cancelLocked()
		return
	}

	switch d.state {
	case stateIdle:
		d.startLocked(region)
	case stateDwelling:
		if region != d.target {
			// A new target always cancels the prior session first.
			d.cancelLocked()
			d.startLocked(region)
			return
		}
		d.advanceLocked()
	}
}

// Tick reports progress for the active session and completes it when
// the threshold is reached. Call at the configured tick interval, or
// use Run.
func (d *Detector) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == stateDwelling {
		d.advanceLocked()
	}
}

// Run ticks the detector until ctx is cancelled.
func (d *Detector) Run(ctx context.Context) {
	ticker := time.NewTicker(d.config.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick()
		}
	}
}

// Reset cancels any active session, used on tracking loss. With no
// session active it is a no-op with no event.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Dwelling returns the active session's region, if any.
func (d *Detector) Dwelling() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateDwelling {
		return "", false
	}
	return d.target, true
}

// Progress returns the active session's progress in [0, 1].
func (d *Detector) Progress() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateDwelling {
		return 0
	}
	return d.progressLocked()
}

func (d *Detector) startLocked(region string) {
	d.state = stateDwelling
	d.target = region
	d.start = d.now()
	if d.observer != nil {
		d.observer.DwellStarted(region)
	}
}

// advanceLocked reports progress and completes the session at 1.0.
func (d *Detector) advanceLocked() {
	p := d.progressLocked()
	if p >= 1 {
		region := d.target
		d.state = stateIdle
		d.target = ""
		if d.observer != nil {
			d.observer.DwellCompleted(region)
		}
		return
	}
	if d.observer != nil {
		d.observer.DwellProgress(d.target, p)
	}
}

func (d *Detector) cancelLocked() {
	if d.state != stateDwelling {
		return
	}
	region := d.target
	d.state = stateIdle
	d.target = ""
	if d.observer != nil {
		d.observer.DwellCancelled(region)
	}
}

func (d *Detector) progressLocked() float64 {
	elapsed := d.now().Sub(d.start)
	p := float64(elapsed) / float64(d.config.clampedThreshold())
	if p > 1 {
		return 1
	}
	return p
}
