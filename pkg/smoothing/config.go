package smoothing

// Config holds all tunable parameters for gaze smoothing.
type Config struct {
	// WindowSize is the sliding-window capacity per axis.
	WindowSize int

	// BlinkThreshold is the eye-openness level below which (for both
	// eyes) no position output is produced.
	BlinkThreshold float64

	// Stage knobs. These feed the optional post-window stages; none are
	// active unless the stage is listed in Stages.
	DeadZoneRadius   float64 // points; suppress moves smaller than this
	MaxVelocity      float64 // points per second; clamp larger jumps
	OutlierThreshold float64 // points; drop jumps larger than this
	Alpha            float64 // exponential-average coefficient (weight on previous)

	// Stages are applied in order to each windowed mean. Empty by
	// default: the sliding-window mean is the only smoothing in effect.
	Stages []Stage
}

// DefaultConfig returns the recommended smoothing configuration:
// a 15-sample window mean with no extra stages.
func DefaultConfig() Config {
	return Config{
		WindowSize:       15,
		BlinkThreshold:   0.5,
		DeadZoneRadius:   15,
		MaxVelocity:      1500,
		OutlierThreshold: 300,
		Alpha:            0.7,
	}
}

// SteadyConfig returns a configuration for jitter-sensitive targets:
// window mean plus dead-zone and outlier rejection.
func SteadyConfig() Config {
	cfg := DefaultConfig()
	cfg.Stages = []Stage{
		NewOutlierReject(cfg.OutlierThreshold),
		NewDeadZone(cfg.DeadZoneRadius),
	}
	return cfg
}

// ResponsiveConfig returns a configuration that trades steadiness for
// latency: a shorter window, no extra stages.
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.WindowSize = 5
	return cfg
}
