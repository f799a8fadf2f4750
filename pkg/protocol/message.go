// Package protocol defines the newline-delimited JSON wire format for
// sender-receiver gaze streaming. This package is shared between the
// sender pipeline and the receiver.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Vector3 is a 3D gaze direction in tracking space.
type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Transform is a 4x4 matrix flattened column-major.
type Transform struct {
	Flat [16]float32 `json:"flat"`
}

// ScreenPoint is a calibrated sender-relative screen position in points,
// origin at screen centre.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScreenSize is the sender screen size in points.
type ScreenSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GazeMessage is the unit of network transfer: one tracked frame.
// ScreenPosition and PhoneScreenSize are optional for backward
// compatibility with the legacy mode that ships only the gaze vector.
type GazeMessage struct {
	Timestamp     float64   `json:"timestamp"`
	GazeVector    Vector3   `json:"gazeVector"`
	FaceTransform Transform `json:"faceTransform"`
	EyeBlinkLeft  float32   `json:"eyeBlinkLeft"`
	EyeBlinkRight float32   `json:"eyeBlinkRight"`
	EyesOpen      bool      `json:"eyesOpen"`

	ScreenPosition  *ScreenPoint `json:"screenPosition,omitempty"`
	PhoneScreenSize *ScreenSize  `json:"phoneScreenSize,omitempty"`
}

// EncodeLine serializes a message to one compact JSON line terminated by
// a single newline. The receiver's framing depends on the payload never
// containing an embedded newline; EncodeLine rejects such payloads
// rather than corrupt the stream.
func EncodeLine(m *GazeMessage) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode gaze message: %w", err)
	}
	if bytes.ContainsRune(data, '\n') {
		return nil, fmt.Errorf("encode gaze message: payload contains newline")
	}
	return append(data, '\n'), nil
}

// DecodeLine parses one complete line into a GazeMessage.
func DecodeLine(line []byte) (*GazeMessage, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("decode gaze message: empty line")
	}

	var m GazeMessage
	if err := json.Unmarshal(line, &m); err != nil {
		return nil, fmt.Errorf("decode gaze message: %w", err)
	}
	return &m, nil
}
