package protocol

import (
	"bytes"
	"math"
	"testing"
)

func sampleMessage() *GazeMessage {
	var flat [16]float32
	for i := range flat {
		flat[i] = float32(i) * 0.125
	}
	flat[0] = float32(math.Pi)

	return &GazeMessage{
		Timestamp:     1234.5678901234,
		GazeVector:    Vector3{X: 0.123456, Y: -0.654321, Z: -0.987654},
		FaceTransform: Transform{Flat: flat},
		EyeBlinkLeft:  0.05,
		EyeBlinkRight: 0.07,
		EyesOpen:      true,
		ScreenPosition: &ScreenPoint{
			X: 115.0, Y: -50.5,
		},
		PhoneScreenSize: &ScreenSize{
			Width: 1311, Height: 603,
		},
	}
}

func TestEncodeDecodeLine_BitForBitRoundTrip(t *testing.T) {
	original := sampleMessage()

	line, err := EncodeLine(original)
	if err != nil {
		t.Fatalf("EncodeLine() error = %v", err)
	}
	if line[len(line)-1] != '\n' {
		t.Fatal("encoded line missing newline terminator")
	}
	if bytes.Count(line, []byte{'\n'}) != 1 {
		t.Fatal("encoded line contains embedded newline")
	}

	parsed, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine() error = %v", err)
	}

	if parsed.Timestamp != original.Timestamp {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, original.Timestamp)
	}
	if parsed.GazeVector != original.GazeVector {
		t.Errorf("GazeVector = %v, want %v", parsed.GazeVector, original.GazeVector)
	}
	if parsed.FaceTransform != original.FaceTransform {
		t.Errorf("FaceTransform = %v, want %v", parsed.FaceTransform, original.FaceTransform)
	}
	if parsed.EyeBlinkLeft != original.EyeBlinkLeft || parsed.EyeBlinkRight != original.EyeBlinkRight {
		t.Errorf("blink = (%v, %v), want (%v, %v)",
			parsed.EyeBlinkLeft, parsed.EyeBlinkRight,
			original.EyeBlinkLeft, original.EyeBlinkRight)
	}
	if !parsed.EyesOpen {
		t.Error("EyesOpen = false, want true")
	}
	if parsed.ScreenPosition == nil || *parsed.ScreenPosition != *original.ScreenPosition {
		t.Errorf("ScreenPosition = %v, want %v", parsed.ScreenPosition, original.ScreenPosition)
	}
	if parsed.PhoneScreenSize == nil || *parsed.PhoneScreenSize != *original.PhoneScreenSize {
		t.Errorf("PhoneScreenSize = %v, want %v", parsed.PhoneScreenSize, original.PhoneScreenSize)
	}
}

func TestEncodeLine_LegacyMessageOmitsOptionalFields(t *testing.T) {
	m := &GazeMessage{
		Timestamp:  42,
		GazeVector: Vector3{X: 0, Y: 0, Z: -1},
		EyesOpen:   true,
	}

	line, err := EncodeLine(m)
	if err != nil {
		t.Fatalf("EncodeLine() error = %v", err)
	}
	if bytes.Contains(line, []byte("screenPosition")) {
		t.Error("legacy message includes screenPosition")
	}
	if bytes.Contains(line, []byte("phoneScreenSize")) {
		t.Error("legacy message includes phoneScreenSize")
	}

	parsed, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine() error = %v", err)
	}
	if parsed.ScreenPosition != nil {
		t.Error("parsed legacy message has non-nil ScreenPosition")
	}
}

func TestDecodeLine_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"whitespace", "   \t "},
		{"truncated", `{"timestamp": 1.0, "gazeVec`},
		{"not json", "hello world"},
		{"wrong type", `{"timestamp": "not a number"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeLine([]byte(tt.line)); err == nil {
				t.Errorf("DecodeLine(%q) error = nil, want error", tt.line)
			}
		})
	}
}
