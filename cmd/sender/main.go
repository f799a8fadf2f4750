package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gazelink/go-gazelink/internal/config"
	"github.com/gazelink/go-gazelink/internal/log"
	"github.com/gazelink/go-gazelink/pkg/calibration"
	"github.com/gazelink/go-gazelink/pkg/facetrack"
	"github.com/gazelink/go-gazelink/pkg/pipeline"
	"github.com/gazelink/go-gazelink/pkg/transport"
)

func main() {
	// Command line flags
	replayPath := flag.String("replay", "", "Path to a JSONL face-tracking recording (required)")
	fps := flag.Float64("fps", 0, "Replay rate in frames per second (0 = recorded timing)")
	peer := flag.String("peer", config.PeerAddr(""), "Receiver address host:port (empty = discover via mDNS)")
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

	fmt.Println("👁  Gazelink Sender")
	fmt.Printf("   Source: %s\n", *replayPath)
	fmt.Println()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Shutting down...")
		cancel()
	}()

	// Find the receiver
	addr := *peer
	if addr == "" {
		fmt.Println("🔎 Browsing for receivers...")
		peers, err := transport.Browse(ctx, config.DefaultServiceType, config.DefaultDomain, 5*time.Second)
		if err != nil {
			stdlog.Fatalf("Discovery failed: %v", err)
		}
		addr = peers[0].Addr
		fmt.Printf("   Found %s at %s\n", peers[0].Name, addr)
	}

	// Connect to the receiver
	sender := transport.NewSender(transport.DefaultSenderConfig())
	if err := sender.Connect(addr); err != nil {
		stdlog.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	defer sender.Close()
	fmt.Printf("✅ Connected to %s\n", addr)

	go func() {
		for ev := range sender.Events() {
			if ev.Kind == transport.EventError {
				log.Error("transport failed", "error", ev.Err)
				cancel()
			}
		}
	}()

	// Load the calibration model and watch for external updates
	store := calibration.NewStore(config.CalibrationPath())
	model, err := store.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load calibration: %v", err)
	}
	if model.Fitted {
		fmt.Printf("🎯 Calibration loaded (fitted %s)\n", model.FittedAt.Format(time.RFC3339))
	} else {
		fmt.Println("🎯 No calibration on disk - using identity mapping")
	}

	pipe := pipeline.New(pipeline.DefaultConfig(), sender)
	pipe.SetModel(model)

	watcher, err := calibration.NewWatcher(ctx, store)
	if err != nil {
		log.Warn("calibration hot-reload disabled", "error", err)
	} else {
		defer watcher.Close()
		go func() {
			for m := range watcher.Models() {
				pipe.SetModel(m)
				fmt.Println("🎯 Calibration reloaded")
			}
		}()
	}

	// Open the face-tracking source and run the pipeline
	source, err := facetrack.NewReplaySource(ctx, *replayPath, *fps)
	if err != nil {
		stdlog.Fatalf("Failed to open recording: %v", err)
	}
	defer source.Close()

	if err := pipe.Run(ctx, source); err != nil {
		stdlog.Printf("Pipeline ended: %v", err)
	}

	fmt.Println("👋 Goodbye!")
}
