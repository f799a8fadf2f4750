package dwell

// Rect is an axis-aligned region bound in receiver screen coordinates
// (origin top-left).
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Region is one selectable screen region.
type Region struct {
	ID   string
	Rect Rect
}

// RegionSet is an ordered HitTester over rectangular regions. Regions
// listed first win overlaps, so callers order them topmost first.
type RegionSet struct {
	regions []Region
}

// NewRegionSet creates a hit tester over the given regions.
func NewRegionSet(regions ...Region) *RegionSet {
	return &RegionSet{regions: regions}
}

// HitTest implements HitTester.
func (s *RegionSet) HitTest(x, y float64) (string, bool) {
	for _, r := range s.regions {
		if r.Rect.Contains(x, y) {
			return r.ID, true
		}
	}
	return "", false
}

// Ensure RegionSet implements HitTester
var _ HitTester = (*RegionSet)(nil)
