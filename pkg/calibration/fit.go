package calibration

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// degenerateDenominator is the regression-denominator magnitude below
// which an axis is treated as degenerate (all raw values nearly equal).
const degenerateDenominator = 1e-4

// Fit performs independent ordinary least-squares regression per axis
// over paired (raw, screen) samples and returns a fitted model.
// It fails with ErrTooFewSamples or ErrLengthMismatch without producing
// a model; the caller's current calibration state is untouched.
func Fit(raw, screen []Point) (Model, error) {
	if len(raw) != len(screen) {
		return Model{}, ErrLengthMismatch
	}
	if len(raw) < 2 {
		return Model{}, ErrTooFewSamples
	}

	xs := make([]float64, len(raw))
	ys := make([]float64, len(raw))
	tx := make([]float64, len(raw))
	ty := make([]float64, len(raw))
	for i, p := range raw {
		xs[i], ys[i] = p.X, p.Y
		tx[i], ty[i] = screen[i].X, screen[i].Y
	}

	scaleX, offsetX := fitAxis(xs, tx)
	scaleY, offsetY := fitAxis(ys, ty)

	return Model{
		ScaleX:   scaleX,
		ScaleY:   scaleY,
		OffsetX:  offsetX,
		OffsetY:  offsetY,
		Fitted:   true,
		FittedAt: time.Now(),
	}, nil
}

// fitAxis regresses screen = raw*scale + offset on one axis.
// When the regression denominator collapses (the raw values barely vary
// on this axis) the slope is pinned to 1 and only the offset is fit, so
// a degenerate capture cannot explode into a near-zero division.
func fitAxis(raw, screen []float64) (scale, offset float64) {
	n := float64(len(raw))
	var sumRaw, sumSq float64
	for _, v := range raw {
		sumRaw += v
		sumSq += v * v
	}

	denom := n*sumSq - sumRaw*sumRaw
	if denom <= degenerateDenominator && denom >= -degenerateDenominator {
		var sumScreen float64
		for _, v := range screen {
			sumScreen += v
		}
		return 1, sumScreen/n - sumRaw/n
	}

	offset, scale = stat.LinearRegression(raw, screen, nil, false)
	return scale, offset
}
