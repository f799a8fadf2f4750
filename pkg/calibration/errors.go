package calibration

import "errors"

// Sentinel errors for calibration failures.
var (
	// ErrTooFewSamples is returned when fewer than two sample pairs are
	// available for a fit.
	ErrTooFewSamples = errors.New("calibration: need at least 2 sample pairs")

	// ErrLengthMismatch is returned when the raw and screen sequences
	// differ in length.
	ErrLengthMismatch = errors.New("calibration: raw and screen sample counts differ")

	// ErrNoSamples is returned when a capture run collects no usable
	// target samples at all.
	ErrNoSamples = errors.New("calibration: capture produced no samples")
)
