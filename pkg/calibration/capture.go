package calibration

import (
	"context"
	"time"

	"github.com/gazelink/go-gazelink/internal/log"
)

// CaptureConfig holds the tunable parameters for a guided capture run.
type CaptureConfig struct {
	// ScreenWidth and ScreenHeight are the sender screen size in points.
	ScreenWidth  float64
	ScreenHeight float64

	// Inset pulls each non-centre target in from the screen edge by this
	// fraction of the corresponding dimension, per side.
	Inset float64

	// SettleDelay is how long to wait after showing a target before
	// collecting frames, giving the gaze time to arrive.
	SettleDelay time.Duration

	// SampleWindow is how long to collect raw frames per target.
	SampleWindow time.Duration
}

// DefaultCaptureConfig returns the standard 9-point capture parameters.
func DefaultCaptureConfig(screenWidth, screenHeight float64) CaptureConfig {
	return CaptureConfig{
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
		Inset:        0.10,
		SettleDelay:  time.Second,
		SampleWindow: 2 * time.Second,
	}
}

// Presenter is the UI boundary for a capture run: it draws and removes
// calibration targets. Positions are screen-centre-origin points.
type Presenter interface {
	// ShowTarget displays target index at the given position.
	ShowTarget(index int, target Point)

	// HideTargets removes any displayed target.
	HideTargets()
}

// Targets returns the fixed 9-point layout for the configured screen:
// centre, four corners, and four edge midpoints, inset from the true
// edges. Coordinates are centre-origin, +Y up.
func (c CaptureConfig) Targets() []Point {
	hx := c.ScreenWidth/2 - c.Inset*c.ScreenWidth
	hy := c.ScreenHeight/2 - c.Inset*c.ScreenHeight
	return []Point{
		{0, 0},
		{-hx, hy}, {hx, hy}, {-hx, -hy}, {hx, -hy}, // corners
		{0, hy}, {0, -hy}, {-hx, 0}, {hx, 0}, // edge midpoints
	}
}

// Capture runs the guided calibration sequence.
type Capture struct {
	config    CaptureConfig
	presenter Presenter
	store     *Store
}

// NewCapture creates a capture run against the given presenter and
// store. The store may be nil to fit without persisting.
func NewCapture(config CaptureConfig, presenter Presenter, store *Store) *Capture {
	return &Capture{config: config, presenter: presenter, store: store}
}

// Run drives the full sequence: for each target, settle, then average
// the raw frames arriving on frames during the sample window into one
// calibration sample. Targets that produce zero frames are skipped
// rather than aborting the sequence. After all targets, the model is
// fit and persisted.
//
// Run is abortable through ctx at any target; an aborted or failed run
// returns without touching a previously saved model.
func (c *Capture) Run(ctx context.Context, frames <-chan Point) (Model, error) {
	targets := c.config.Targets()
	raws := make([]Point, 0, len(targets))
	screens := make([]Point, 0, len(targets))

	defer c.presenter.HideTargets()

	for i, target := range targets {
		c.presenter.ShowTarget(i, target)

		if err := sleepCtx(ctx, c.config.SettleDelay); err != nil {
			return Model{}, err
		}

		avg, n, err := c.collect(ctx, frames)
		if err != nil {
			return Model{}, err
		}
		if n == 0 {
			log.Warn("calibration target produced no frames, skipping",
				"target", i, "x", target.X, "y", target.Y)
			continue
		}

		raws = append(raws, avg)
		screens = append(screens, target)
		log.Debug("calibration target captured",
			"target", i, "frames", n, "rawX", avg.X, "rawY", avg.Y)
	}

	if len(raws) == 0 {
		return Model{}, ErrNoSamples
	}

	model, err := Fit(raws, screens)
	if err != nil {
		return Model{}, err
	}

	if c.store != nil {
		if err := c.store.Save(model); err != nil {
			return Model{}, err
		}
	}

	log.Info("calibration fitted",
		"targets", len(raws),
		"scaleX", model.ScaleX, "scaleY", model.ScaleY,
		"offsetX", model.OffsetX, "offsetY", model.OffsetY)
	return model, nil
}

// collect averages the raw frames seen during one sample window.
// Frames queued before the window opens belong to the settle period and
// are discarded first.
func (c *Capture) collect(ctx context.Context, frames <-chan Point) (Point, int, error) {
	for drained := false; !drained; {
		select {
		case _, ok := <-frames:
			drained = !ok
		default:
			drained = true
		}
	}

	deadline := time.NewTimer(c.config.SampleWindow)
	defer deadline.Stop()

	var sum Point
	n := 0
	for {
		select {
		case <-ctx.Done():
			return Point{}, 0, ctx.Err()
		case <-deadline.C:
			if n == 0 {
				return Point{}, 0, nil
			}
			return Point{X: sum.X / float64(n), Y: sum.Y / float64(n)}, n, nil
		case pt, ok := <-frames:
			if !ok {
				// Source ended mid-window; use what we have.
				if n == 0 {
					return Point{}, 0, nil
				}
				return Point{X: sum.X / float64(n), Y: sum.Y / float64(n)}, n, nil
			}
			sum.X += pt.X
			sum.Y += pt.Y
			n++
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
