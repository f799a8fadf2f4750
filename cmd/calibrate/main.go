package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gazelink/go-gazelink/internal/config"
	"github.com/gazelink/go-gazelink/internal/log"
	"github.com/gazelink/go-gazelink/pkg/calibration"
	"github.com/gazelink/go-gazelink/pkg/facetrack"
	"github.com/gazelink/go-gazelink/pkg/pipeline"
	"github.com/gazelink/go-gazelink/pkg/protocol"
)

// consolePresenter prints each calibration target so the user knows
// where to look while the capture window is open.
type consolePresenter struct {
	total int
}

func (p *consolePresenter) ShowTarget(index int, target calibration.Point) {
	fmt.Printf("🎯 Target %d/%d: look at (%.0f, %.0f)\n", index+1, p.total, target.X, target.Y)
}

func (p *consolePresenter) HideTargets() {
	fmt.Println("   ...done")
}

// discardSink drops wire messages; calibration only needs the raw tap.
type discardSink struct{}

func (discardSink) Send(*protocol.GazeMessage) error { return nil }

func main() {
	// Command line flags
	replayPath := flag.String("replay", "", "Path to a JSONL face-tracking recording (required)")
	fps := flag.Float64("fps", 60, "Replay rate in frames per second")
	width := flag.Float64("width", 1311, "Sender screen width in points")
	height := flag.Float64("height", 603, "Sender screen height in points")
	storePath := flag.String("store", config.CalibrationPath(), "Calibration store path")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	if *replayPath == "" {
		stdlog.Fatal("no face-tracking source: -replay is required")
	}

	fmt.Println("🎯 Gazelink Calibration")
	fmt.Printf("   Source: %s\n", *replayPath)
	fmt.Printf("   Store:  %s\n", *storePath)
	fmt.Println()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Aborting...")
		cancel()
	}()

	source, err := facetrack.NewReplaySource(ctx, *replayPath, *fps)
	if err != nil {
		stdlog.Fatalf("Failed to open recording: %v", err)
	}
	defer source.Close()

	// Run the estimation pipeline with an identity model and tap the
	// raw (uncalibrated) points for capture.
	frames := make(chan calibration.Point, 64)
	pipe := pipeline.New(pipeline.DefaultConfig(), discardSink{})
	pipe.RawTap = frames
	go pipe.Run(ctx, source)

	captureConfig := calibration.DefaultCaptureConfig(*width, *height)
	presenter := &consolePresenter{total: len(captureConfig.Targets())}
	store := calibration.NewStore(*storePath)

	capture := calibration.NewCapture(captureConfig, presenter, store)
	model, err := capture.Run(ctx, frames)
	if err != nil {
		stdlog.Fatalf("Calibration failed: %v", err)
	}

	fmt.Println()
	fmt.Printf("✅ Calibration saved to %s\n", *storePath)
	fmt.Printf("   scale  = (%.4f, %.4f)\n", model.ScaleX, model.ScaleY)
	fmt.Printf("   offset = (%.4f, %.4f)\n", model.OffsetX, model.OffsetY)
}
