package calibration

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// trackingPresenter simulates a user whose gaze follows each target.
// It feeds raw frames derived from the active target through a known
// inverse affine map so the fit has an exact answer to recover.
type trackingPresenter struct {
	mu      sync.Mutex
	current Point
	active  bool
	skip    map[int]bool // targets the simulated gaze never reaches
}

func (p *trackingPresenter) ShowTarget(index int, target Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = target
	p.active = !p.skip[index]
}

func (p *trackingPresenter) HideTargets() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
}

// feed produces raw frames at ~200Hz until ctx is done.
// raw = (screen - offset) / scale, so Fit must recover scale/offset.
func (p *trackingPresenter) feed(ctx context.Context, frames chan<- Point, scaleX, scaleY, offsetX, offsetY float64) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			target, active := p.current, p.active
			p.mu.Unlock()
			if !active {
				continue
			}
			raw := Point{
				X: (target.X - offsetX) / scaleX,
				Y: (target.Y - offsetY) / scaleY,
			}
			select {
			case frames <- raw:
			case <-ctx.Done():
				return
			}
		}
	}
}

func fastCaptureConfig() CaptureConfig {
	cfg := DefaultCaptureConfig(1311, 603)
	cfg.SettleDelay = 5 * time.Millisecond
	cfg.SampleWindow = 40 * time.Millisecond
	return cfg
}

func TestTargets_NinePointLayout(t *testing.T) {
	cfg := DefaultCaptureConfig(1000, 500)
	targets := cfg.Targets()

	if len(targets) != 9 {
		t.Fatalf("len(Targets()) = %d, want 9", len(targets))
	}
	if targets[0].X != 0 || targets[0].Y != 0 {
		t.Errorf("first target = %+v, want screen centre", targets[0])
	}

	// 10% inset per side: corners at (±400, ±200).
	wantCorner := Point{X: 400, Y: 200}
	found := false
	for _, pt := range targets {
		if pt.X == wantCorner.X && pt.Y == wantCorner.Y {
			found = true
		}
		if math.Abs(pt.X) > 400 || math.Abs(pt.Y) > 200 {
			t.Errorf("target %+v outside the inset bounds", pt)
		}
	}
	if !found {
		t.Errorf("no corner target at %+v", wantCorner)
	}
}

func TestCapture_FitsAndPersists(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "calibration.json")
	store := NewStore(path)
	presenter := &trackingPresenter{}
	frames := make(chan Point, 16)

	const scaleX, scaleY, offsetX, offsetY = 1.2, 0.9, 12, -8
	go presenter.feed(ctx, frames, scaleX, scaleY, offsetX, offsetY)

	capture := NewCapture(fastCaptureConfig(), presenter, store)
	model, err := capture.Run(ctx, frames)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if math.Abs(model.ScaleX-scaleX) > 1e-6 || math.Abs(model.ScaleY-scaleY) > 1e-6 {
		t.Errorf("scales = (%v, %v), want (%v, %v)", model.ScaleX, model.ScaleY, scaleX, scaleY)
	}
	if math.Abs(model.OffsetX-offsetX) > 1e-6 || math.Abs(model.OffsetY-offsetY) > 1e-6 {
		t.Errorf("offsets = (%v, %v), want (%v, %v)", model.OffsetX, model.OffsetY, offsetX, offsetY)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded.Fitted {
		t.Error("persisted model not fitted")
	}
}

func TestCapture_SkipsSilentTargets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	presenter := &trackingPresenter{skip: map[int]bool{3: true, 7: true}}
	frames := make(chan Point, 16)
	go presenter.feed(ctx, frames, 1, 1, 0, 0)

	capture := NewCapture(fastCaptureConfig(), presenter, nil)
	model, err := capture.Run(ctx, frames)
	if err != nil {
		t.Fatalf("Run() error = %v, want skipped targets tolerated", err)
	}
	if !model.Fitted {
		t.Error("model not fitted from the remaining targets")
	}
}

func TestCapture_AbortLeavesStoreUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	store := NewStore(path)

	// A model from a previous successful run.
	prior := Model{ScaleX: 2, ScaleY: 2, Fitted: true, FittedAt: time.Now()}
	if err := store.Save(prior); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	presenter := &trackingPresenter{}
	frames := make(chan Point)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	capture := NewCapture(fastCaptureConfig(), presenter, store)
	if _, err := capture.Run(ctx, frames); err == nil {
		t.Fatal("Run() error = nil after abort, want context error")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() after abort error = %v", err)
	}
	if string(before) != string(after) {
		t.Error("aborted capture modified the persisted model")
	}
}
