// Package calibration maps raw gaze estimates to true screen coordinates
// with a per-axis affine model, fit by least squares from a guided
// 9-point capture sequence and persisted as a single named record.
package calibration

import "time"

// Point is a 2D point in sender screen-point units, origin at screen
// centre. Used for both raw estimates and known target positions.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Model is the per-axis affine correction from raw gaze space to screen
// space. It is replaced wholesale by a successful fit, never partially
// mutated. An unfitted model is the identity transform.
type Model struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64

	Fitted   bool
	FittedAt time.Time
}

// Identity returns the unfitted identity model.
func Identity() Model {
	return Model{ScaleX: 1, ScaleY: 1}
}

// Apply maps a raw point through the model.
func (m Model) Apply(raw Point) Point {
	return Point{
		X: raw.X*m.ScaleX + m.OffsetX,
		Y: raw.Y*m.ScaleY + m.OffsetY,
	}
}
