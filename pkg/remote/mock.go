package remote

// MockWarper records warps for tests.
type MockWarper struct {
	Calls []Point
	Err   error
}

// Warp implements Warper.
func (m *MockWarper) Warp(x, y int) error {
	if m.Err != nil {
		return m.Err
	}
	m.Calls = append(m.Calls, Point{X: float64(x), Y: float64(y)})
	return nil
}
