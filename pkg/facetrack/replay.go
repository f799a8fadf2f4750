package facetrack

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// sampleRecord is the JSONL on-disk form of a recorded frame.
type sampleRecord struct {
	Timestamp  float64     `json:"ts"`
	LeftEye    [16]float64 `json:"leftEye"`
	RightEye   [16]float64 `json:"rightEye"`
	LookAt     [3]float64  `json:"lookAt"`
	Face       [16]float64 `json:"face"`
	BlinkLeft  float64     `json:"blinkL"`
	BlinkRight float64     `json:"blinkR"`
	Lost       bool        `json:"lost,omitempty"`
}

// ReplaySource plays back a JSONL recording of face samples.
// It preserves the recording's own frame pacing unless a fixed
// rate is requested.
type ReplaySource struct {
	samples chan FaceSample
	events  chan TrackingEvent
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewReplaySource opens path and starts playback. If fps > 0 the recording
// is replayed at that fixed rate instead of its recorded timestamps.
func NewReplaySource(ctx context.Context, path string, fps float64) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &ReplaySource{
		samples: make(chan FaceSample, 1),
		events:  make(chan TrackingEvent, 4),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.run(ctx, f, fps)
	return s, nil
}

// Samples implements Source.
func (s *ReplaySource) Samples() <-chan FaceSample { return s.samples }

// Events implements Source.
func (s *ReplaySource) Events() <-chan TrackingEvent { return s.events }

// Close implements Source.
func (s *ReplaySource) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *ReplaySource) run(ctx context.Context, f *os.File, fps float64) {
	defer close(s.done)
	defer close(s.samples)
	defer close(s.events)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lastTS float64
	first := true

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec sampleRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			// Corrupt recording lines are skipped, playback continues.
			continue
		}

		if rec.Lost {
			select {
			case s.events <- TrackingEvent{Kind: TrackingLost, Timestamp: rec.Timestamp}:
			case <-ctx.Done():
				return
			}
			first = true
			continue
		}

		// Pace playback.
		var wait time.Duration
		switch {
		case first:
			select {
			case s.events <- TrackingEvent{Kind: TrackingAcquired, Timestamp: rec.Timestamp}:
			case <-ctx.Done():
				return
			}
			first = false
		case fps > 0:
			wait = time.Duration(float64(time.Second) / fps)
		case rec.Timestamp > lastTS:
			wait = time.Duration((rec.Timestamp - lastTS) * float64(time.Second))
		}
		lastTS = rec.Timestamp

		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}

		select {
		case s.samples <- rec.sample():
		case <-ctx.Done():
			return
		}
	}
}

func (r sampleRecord) sample() FaceSample {
	return FaceSample{
		Timestamp:  r.Timestamp,
		LeftEye:    mgl64.Mat4(r.LeftEye),
		RightEye:   mgl64.Mat4(r.RightEye),
		LookAt:     mgl64.Vec3(r.LookAt),
		Face:       mgl64.Mat4(r.Face),
		BlinkLeft:  r.BlinkLeft,
		BlinkRight: r.BlinkRight,
	}
}
