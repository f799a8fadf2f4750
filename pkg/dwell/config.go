package dwell

import "time"

// minThreshold is the floor the dwell threshold is clamped to.
const minThreshold = 100 * time.Millisecond

// Config holds the dwell-detection parameters.
type Config struct {
	// Threshold is how long gaze must rest on one region to select it.
	// Clamped to at least 100ms.
	Threshold time.Duration

	// TickInterval is how often progress is reported while dwelling.
	TickInterval time.Duration
}

// DefaultConfig returns the standard dwell parameters: 1.5s threshold,
// 20Hz progress ticks.
func DefaultConfig() Config {
	return Config{
		Threshold:    1500 * time.Millisecond,
		TickInterval: 50 * time.Millisecond,
	}
}

// clampedThreshold returns the effective threshold.
func (c Config) clampedThreshold() time.Duration {
	if c.Threshold < minThreshold {
		return minThreshold
	}
	return c.Threshold
}
