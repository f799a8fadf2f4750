// Package config provides configuration helpers for go-gazelink commands.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default transport configuration.
const (
	DefaultGazePort    = 8080
	DefaultServiceType = "_gazelink._tcp"
	DefaultDomain      = "local."
)

// PeerAddr returns the receiver address from PEER_ADDR env var.
// Falls back to the provided default if not set.
func PeerAddr(defaultAddr string) string {
	if addr := os.Getenv("PEER_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}

// GazePort returns the TCP port from GAZE_PORT env var.
// Falls back to DefaultGazePort if not set or unparseable.
func GazePort() int {
	if p := os.Getenv("GAZE_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			return port
		}
	}
	return DefaultGazePort
}

// CalibrationPath returns the calibration store path from CALIBRATION_PATH
// env var. Falls back to ~/.gazelink/calibration.json.
func CalibrationPath() string {
	if path := os.Getenv("CALIBRATION_PATH"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "calibration.json"
	}
	return fmt.Sprintf("%s/.gazelink/calibration.json", home)
}

// LogLevel returns the log level from LOG_LEVEL env var or "info".
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}
