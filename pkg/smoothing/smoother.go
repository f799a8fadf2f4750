// Package smoothing stabilizes raw gaze estimates with a per-axis
// sliding-window mean, blink gating, and optional extra filter stages.
package smoothing

// Point is a 2D smoothed gaze point in sender screen-point units,
// origin at screen centre.
type Point struct {
	X float64
	Y float64
}

// Sample is one raw gaze estimate with the frame context the smoother
// needs: a monotonic timestamp in seconds and per-eye openness values
// (1 = fully open).
type Sample struct {
	X             float64
	Y             float64
	Timestamp     float64
	OpennessLeft  float64
	OpennessRight float64
}

// window is a fixed-capacity sliding window over one axis.
type window struct {
	values []float64
	cap    int
	sum    float64
}

func newWindow(capacity int) *window {
	return &window{values: make([]float64, 0, capacity), cap: capacity}
}

func (w *window) push(v float64) {
	if len(w.values) == w.cap {
		w.sum -= w.values[0]
		w.values = w.values[1:]
	}
	w.values = append(w.values, v)
	w.sum += v
}

func (w *window) mean() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return w.sum / float64(len(w.values))
}

func (w *window) reset() {
	w.values = w.values[:0]
	w.sum = 0
}

// Smoother maintains the sliding windows and gating state for one
// tracking session. The caller owns it; Reset starts a fresh session.
type Smoother struct {
	config Config
	x      *window
	y      *window
}

// New creates a smoother with the given configuration.
func New(config Config) *Smoother {
	if config.WindowSize < 1 {
		config.WindowSize = 1
	}
	return &Smoother{
		config: config,
		x:      newWindow(config.WindowSize),
		y:      newWindow(config.WindowSize),
	}
}

// Push feeds one sample. It returns the smoothed point and true, or false
// when output is suppressed because both eyes are under the blink
// threshold or a stage rejected the frame. Blink gating does not touch
// the windows: continuity is preserved across brief closures. Output
// begins with the very first sample; there is no warm-up delay.
func (s *Smoother) Push(smp Sample) (Point, bool) {
	if smp.OpennessLeft < s.config.BlinkThreshold && smp.OpennessRight < s.config.BlinkThreshold {
		return Point{}, false
	}

	s.x.push(smp.X)
	s.y.push(smp.Y)

	out := Point{X: s.x.mean(), Y: s.y.mean()}
	for _, stage := range s.config.Stages {
		var ok bool
		if out, ok = stage.Apply(out, smp.Timestamp); !ok {
			return Point{}, false
		}
	}
	return out, true
}

// Len returns the current window fill.
func (s *Smoother) Len() int {
	return len(s.x.values)
}

// Reset clears both windows and every stage. Used when tracking is lost
// entirely (face anchor removed), not on blinks.
func (s *Smoother) Reset() {
	s.x.reset()
	s.y.reset()
	for _, stage := range s.config.Stages {
		stage.Reset()
	}
}
