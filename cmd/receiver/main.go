package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gazelink/go-gazelink/internal/config"
	"github.com/gazelink/go-gazelink/internal/log"
	"github.com/gazelink/go-gazelink/pkg/cursor"
	"github.com/gazelink/go-gazelink/pkg/dwell"
	"github.com/gazelink/go-gazelink/pkg/remote"
	"github.com/gazelink/go-gazelink/pkg/transport"
	"github.com/gazelink/go-gazelink/pkg/web"
)

// regionFile is the on-disk shape of -regions: a JSON array ordered
// topmost first.
type regionFile []struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func loadRegions(path string) (*dwell.RegionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf regionFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse regions file: %w", err)
	}
	regions := make([]dwell.Region, 0, len(rf))
	for _, r := range rf {
		regions = append(regions, dwell.Region{
			ID:   r.ID,
			Rect: dwell.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
		})
	}
	return dwell.NewRegionSet(regions...), nil
}

// logObserver prints dwell transitions to the console.
type logObserver struct{}

func (logObserver) DwellStarted(region string) { fmt.Printf("⏳ Dwell started: %s\n", region) }
func (logObserver) DwellProgress(region string, progress float64) {}
func (logObserver) DwellCompleted(region string) { fmt.Printf("✅ Selected: %s\n", region) }
func (logObserver) DwellCancelled(region string) { fmt.Printf("✗  Dwell cancelled: %s\n", region) }

// fanoutObserver forwards dwell events to every observer.
type fanoutObserver []dwell.Observer

func (f fanoutObserver) DwellStarted(region string) {
	for _, o := range f {
		o.DwellStarted(region)
	}
}

func (f fanoutObserver) DwellProgress(region string, progress float64) {
	for _, o := range f {
		o.DwellProgress(region, progress)
	}
}

func (f fanoutObserver) DwellCompleted(region string) {
	for _, o := range f {
		o.DwellCompleted(region)
	}
}

func (f fanoutObserver) DwellCancelled(region string) {
	for _, o := range f {
		o.DwellCancelled(region)
	}
}

func main() {
	// Command line flags
	port := flag.Int("port", config.GazePort(), "TCP port to listen on")
	advertise := flag.Bool("advertise", true, "Advertise the receiver via mDNS")
	name := flag.String("name", "", "mDNS instance name (default hostname)")
	webPort := flag.String("web", "", "Dashboard HTTP port (empty = disabled)")
	regionsPath := flag.String("regions", "", "Path to a JSON file of selectable regions")
	dwellThreshold := flag.Duration("dwell", 1500*time.Millisecond, "Dwell time required to select")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	screen := remote.ScreenRect()

	fmt.Println("🖥  Gazelink Receiver")
	fmt.Printf("   Port: %d (advertise: %v)\n", *port, *advertise)
	fmt.Printf("   Screen: %.0fx%.0f\n", screen.Width, screen.Height)
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

	// Selectable regions
	regions := dwell.NewRegionSet()
	if *regionsPath != "" {
		var err error
		regions, err = loadRegions(*regionsPath)
		if err != nil {
			stdlog.Fatalf("Failed to load regions: %v", err)
		}
	}

	// Dashboard
	var dashboard *web.Server
	observers := fanoutObserver{logObserver{}}
	if *webPort != "" {
		dashboard = web.NewServer(*webPort)
		observers = append(observers, dashboard)
		go func() {
			if err := dashboard.Start(); err != nil {
				log.Error("dashboard server failed", "error", err)
			}
		}()
		defer dashboard.Shutdown()
		fmt.Printf("🌐 Dashboard: http://localhost:%s\n", *webPort)
	}

	// Cursor controller
	cursorConfig := cursor.DefaultConfig(screen)
	cursorConfig.Dwell.Threshold = *dwellThreshold
	controller := cursor.New(cursorConfig, remote.NewSystemWarper(), regions, observers)
	if dashboard != nil {
		controller.SetStateUpdater(dashboard)
	}

	// Listen for senders
	receiverConfig := transport.DefaultReceiverConfig()
	receiverConfig.Port = *port
	receiverConfig.Advertise = *advertise
	if *name != "" {
		receiverConfig.ServiceName = *name
	}
	receiver := transport.NewReceiver(receiverConfig)
	if err := receiver.Start(ctx); err != nil {
		stdlog.Fatalf("Failed to listen on port %d: %v", *port, err)
	}
	defer receiver.Close()
	fmt.Printf("✅ Listening on %s\n", receiver.Addr())

	controller.Run(ctx, receiver)

	fmt.Println("👋 Goodbye!")
}
