package facetrack

// MockSource is a hand-driven Source for tests.
type MockSource struct {
	SampleCh chan FaceSample
	EventCh  chan TrackingEvent
	Closed   bool
}

// NewMockSource creates a mock source with buffered channels.
func NewMockSource() *MockSource {
	return &MockSource{
		SampleCh: make(chan FaceSample, 64),
		EventCh:  make(chan TrackingEvent, 8),
	}
}

// Samples implements Source.
func (m *MockSource) Samples() <-chan FaceSample { return m.SampleCh }

// Events implements Source.
func (m *MockSource) Events() <-chan TrackingEvent { return m.EventCh }

// Close implements Source.
func (m *MockSource) Close() error {
	if !m.Closed {
		m.Closed = true
		close(m.SampleCh)
		close(m.EventCh)
	}
	return nil
}

// Emit pushes a sample.
func (m *MockSource) Emit(s FaceSample) { m.SampleCh <- s }

// EmitLost pushes a tracking-lost event.
func (m *MockSource) EmitLost(ts float64) {
	m.EventCh <- TrackingEvent{Kind: TrackingLost, Timestamp: ts}
}

// Ensure MockSource implements Source
var _ Source = (*MockSource)(nil)
