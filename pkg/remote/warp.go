package remote

import "github.com/go-vgo/robotgo"

// SystemWarper moves the real system pointer via robotgo.
type SystemWarper struct{}

// NewSystemWarper creates the platform warper. The post-move delay
// robotgo normally inserts is disabled so a warp cannot hold up the
// receiver's next user-driven pointer event.
func NewSystemWarper() *SystemWarper {
	robotgo.MouseSleep = 0
	return &SystemWarper{}
}

// Warp implements Warper.
func (w *SystemWarper) Warp(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// ScreenRect returns the primary display bounds as the usable receiver
// rectangle.
func ScreenRect() Rect {
	width, height := robotgo.GetScreenSize()
	return Rect{X: 0, Y: 0, Width: float64(width), Height: float64(height)}
}

// Ensure SystemWarper implements Warper
var _ Warper = (*SystemWarper)(nil)
