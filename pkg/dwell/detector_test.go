package dwell

import (
	"fmt"
	"testing"
	"time"
)

// recorder captures dwell events in order.
type recorder struct {
	events []string
}

func (r *recorder) DwellStarted(region string) {
	r.events = append(r.events, "start:"+region)
}

func (r *recorder) DwellProgress(region string, progress float64) {
	r.events = append(r.events, fmt.Sprintf("progress:%s", region))
}

func (r *recorder) DwellCompleted(region string) {
	r.events = append(r.events, "complete:"+region)
}

func (r *recorder) DwellCancelled(region string) {
	r.events = append(r.events, "cancel:"+region)
}

func twoButtonLayout() *RegionSet {
	return NewRegionSet(
		Region{ID: "a", Rect: Rect{X: 0, Y: 0, Width: 100, Height: 100}},
		Region{ID: "b", Rect: Rect{X: 200, Y: 0, Width: 100, Height: 100}},
	)
}

// testDetector returns a detector with a manual clock.
func testDetector(observer Observer) (*Detector, *time.Time) {
	now := time.Unix(1000, 0)
	d := New(DefaultConfig(), twoButtonLayout(), observer)
	d.now = func() time.Time { return now }
	return d, &now
}

func TestDetector_CompletesAfterThreshold(t *testing.T) {
	rec := &recorder{}
	d, now := testDetector(rec)

	d.Update(50, 50) // lands on "a"
	if region, ok := d.Dwelling(); !ok || region != "a" {
		t.Fatalf("Dwelling() = (%q, %v), want (a, true)", region, ok)
	}

	*now = now.Add(1600 * time.Millisecond)
	d.Tick()

	if _, ok := d.Dwelling(); ok {
		t.Error("still dwelling after completion")
	}
	want := []string{"start:a", "complete:a"}
	if len(rec.events) != 2 || rec.events[0] != want[0] || rec.events[1] != want[1] {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestDetector_ProgressMonotonic(t *testing.T) {
	d, now := testDetector(nil)

	d.Update(50, 50)

	var last float64 = -1
	for i := 0; i < 40; i++ {
		*now = now.Add(50 * time.Millisecond)
		p := d.Progress()
		if _, ok := d.Dwelling(); !ok {
			break
		}
		if p < last {
			t.Fatalf("progress decreased: %v after %v", p, last)
		}
		last = p
		d.Tick()
	}
	if last < 0.9 {
		t.Errorf("final observed progress = %v, want near 1", last)
	}
}

func TestDetector_SwitchTargetCancelsBeforeStart(t *testing.T) {
	rec := &recorder{}
	d, now := testDetector(rec)

	d.Update(50, 50) // dwell on "a"
	*now = now.Add(500 * time.Millisecond)
	d.Update(250, 50) // gaze jumps to "b"

	// Exactly one cancel(a), then start(b), in that order.
	var cancels, starts int
	cancelIdx, startBIdx := -1, -1
	for i, ev := range rec.events {
		switch ev {
		case "cancel:a":
			cancels++
			cancelIdx = i
		case "start:b":
			starts++
			startBIdx = i
		}
	}
	if cancels != 1 {
		t.Errorf("cancel(a) count = %d, want 1", cancels)
	}
	if starts != 1 {
		t.Errorf("start(b) count = %d, want 1", starts)
	}
	if cancelIdx > startBIdx {
		t.Errorf("cancel(a) at %d after start(b) at %d", cancelIdx, startBIdx)
	}

	if region, ok := d.Dwelling(); !ok || region != "b" {
		t.Errorf("Dwelling() = (%q, %v), want (b, true)", region, ok)
	}
}

func TestDetector_GazeLeavingRegionCancels(t *testing.T) {
	rec := &recorder{}
	d, now := testDetector(rec)

	d.Update(50, 50)
	*now = now.Add(500 * time.Millisecond)
	d.Update(150, 50) // between the buttons: no region

	if _, ok := d.Dwelling(); ok {
		t.Error("still dwelling after gaze left the region")
	}
	found := false
	for _, ev := range rec.events {
		if ev == "cancel:a" {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %v, want cancel:a", rec.events)
	}
}

func TestDetector_ResetWithoutSessionEmitsNothing(t *testing.T) {
	rec := &recorder{}
	d, _ := testDetector(rec)

	d.Reset()
	if len(rec.events) != 0 {
		t.Errorf("events = %v, want none", rec.events)
	}
}

func TestDetector_ResetCancelsActiveSession(t *testing.T) {
	rec := &recorder{}
	d, _ := testDetector(rec)

	d.Update(50, 50)
	d.Reset()

	want := []string{"start:a", "cancel:a"}
	if len(rec.events) != 2 || rec.events[1] != want[1] {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestDetector_ThresholdClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = time.Millisecond // absurdly low, clamp to 100ms

	now := time.Unix(1000, 0)
	rec := &recorder{}
	d := New(cfg, twoButtonLayout(), rec)
	d.now = func() time.Time { return now }

	d.Update(50, 50)
	now = now.Add(50 * time.Millisecond)
	d.Tick()
	if _, ok := d.Dwelling(); !ok {
		t.Fatal("session completed before the clamped threshold")
	}

	now = now.Add(60 * time.Millisecond)
	d.Tick()
	if _, ok := d.Dwelling(); ok {
		t.Error("session not completed after the clamped threshold")
	}
}

func TestRegionSet_TopmostWinsOverlap(t *testing.T) {
	s := NewRegionSet(
		Region{ID: "popup", Rect: Rect{X: 40, Y: 40, Width: 20, Height: 20}},
		Region{ID: "background", Rect: Rect{X: 0, Y: 0, Width: 100, Height: 100}},
	)

	if region, ok := s.HitTest(50, 50); !ok || region != "popup" {
		t.Errorf("HitTest(50,50) = (%q, %v), want (popup, true)", region, ok)
	}
	if region, ok := s.HitTest(10, 10); !ok || region != "background" {
		t.Errorf("HitTest(10,10) = (%q, %v), want (background, true)", region, ok)
	}
	if _, ok := s.HitTest(500, 500); ok {
		t.Error("HitTest outside all regions reported a hit")
	}
}
