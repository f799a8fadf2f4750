package remote

import "time"

// Rect is the receiver's usable display rectangle in absolute
// receiver coordinates (origin top-left).
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MapperConfig holds the coordinate-remapping parameters.
type MapperConfig struct {
	// Screen is the receiver rectangle mapped points land in.
	Screen Rect

	// Alpha is the exponential-smoothing weight on the previous output,
	// damping residual jitter after network transit.
	Alpha float64
}

// DefaultMapperConfig returns the standard mapping parameters for the
// given receiver rectangle.
func DefaultMapperConfig(screen Rect) MapperConfig {
	return MapperConfig{
		Screen: screen,
		Alpha:  0.7,
	}
}

// ActuatorConfig holds the pointer-actuation guards. Both exist because
// uncapped system-pointer warps can starve the receiver's own event
// queue.
type ActuatorConfig struct {
	// MinInterval is the minimum time between successful warps (~30Hz).
	MinInterval time.Duration

	// MinMove is the per-axis distance a move must exceed to be applied.
	MinMove float64
}

// DefaultActuatorConfig returns the recommended actuation guards.
func DefaultActuatorConfig() ActuatorConfig {
	return ActuatorConfig{
		MinInterval: 33 * time.Millisecond,
		MinMove:     1,
	}
}
