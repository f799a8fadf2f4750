package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gazelink/go-gazelink/pkg/protocol"
)

// testReceiver starts a receiver on an ephemeral port without mDNS.
func testReceiver(t *testing.T) *Receiver {
	t.Helper()
	cfg := DefaultReceiverConfig()
	cfg.Port = 0
	cfg.Advertise = false
	cfg.ReadIdleTimeout = 5 * time.Second

	r := NewReceiver(cfg)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func waitEvent(t *testing.T, ch <-chan Event, want EventKind) Event {
	t.Helper()
	select {
	case ev := <-ch:
		if ev.Kind != want {
			t.Fatalf("event = %v, want %v", ev.Kind, want)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %v event", want)
		return Event{}
	}
}

func TestSenderReceiver_Loopback(t *testing.T) {
	r := testReceiver(t)

	s := NewSender(DefaultSenderConfig())
	if err := s.Connect(r.Addr().String()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer s.Close()

	waitEvent(t, s.Events(), EventConnected)
	waitEvent(t, r.Events(), EventConnected)

	if s.State() != StateConnected {
		t.Errorf("sender state = %v, want connected", s.State())
	}

	for i := 0; i < 5; i++ {
		msg := &protocol.GazeMessage{
			Timestamp: float64(i),
			EyesOpen:  true,
			ScreenPosition: &protocol.ScreenPoint{
				X: float64(i) * 10, Y: float64(i) * -5,
			},
		}
		if err := s.Send(msg); err != nil {
			t.Fatalf("Send() #%d error = %v", i, err)
		}
	}

	for i := 0; i < 5; i++ {
		select {
		case in := <-r.Messages():
			if in.Msg.Timestamp != float64(i) {
				t.Errorf("message %d timestamp = %v, want %v", i, in.Msg.Timestamp, float64(i))
			}
			if in.PeerID == "" {
				t.Error("message missing peer ID")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestReceiver_SenderCloseEmitsOneDisconnect(t *testing.T) {
	r := testReceiver(t)

	s := NewSender(DefaultSenderConfig())
	if err := s.Connect(r.Addr().String()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	waitEvent(t, r.Events(), EventConnected)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	waitEvent(t, s.Events(), EventConnected)
	waitEvent(t, s.Events(), EventDisconnected)
	waitEvent(t, r.Events(), EventDisconnected)

	// Exactly one terminal event: nothing further may arrive.
	select {
	case ev := <-r.Events():
		t.Fatalf("unexpected second terminal event: %v", ev.Kind)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReceiver_MalformedLinesDropped(t *testing.T) {
	r := testReceiver(t)

	conn, err := net.Dial("tcp", r.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	payload := "{\"timestamp\":1,\"eyesOpen\":true}\n" +
		"this is not json\n" +
		"{\"timestamp\":2,\"eyesOpen\":true}\n"
	if _, err := conn.Write([]byte(payload)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got []float64
	for len(got) < 2 {
		select {
		case in := <-r.Messages():
			got = append(got, in.Msg.Timestamp)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out; got %v", got)
		}
	}

	if got[0] != 1 || got[1] != 2 {
		t.Errorf("timestamps = %v, want [1 2]", got)
	}
	if n := r.DroppedLines(); n != 1 {
		t.Errorf("DroppedLines() = %d, want 1", n)
	}
}

func TestReceiver_PartialLineCarriedAcrossWrites(t *testing.T) {
	r := testReceiver(t)

	conn, err := net.Dial("tcp", r.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// A message split across two writes must still decode.
	if _, err := conn.Write([]byte("{\"timestamp\":7,\"eyes")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := conn.Write([]byte("Open\":true}\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	select {
	case in := <-r.Messages():
		if in.Msg.Timestamp != 7 {
			t.Errorf("timestamp = %v, want 7", in.Msg.Timestamp)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reassembled message")
	}
}

func TestReceiver_MultipleSenders(t *testing.T) {
	r := testReceiver(t)

	s1 := NewSender(DefaultSenderConfig())
	s2 := NewSender(DefaultSenderConfig())
	if err := s1.Connect(r.Addr().String()); err != nil {
		t.Fatalf("s1 Connect() error = %v", err)
	}
	defer s1.Close()
	if err := s2.Connect(r.Addr().String()); err != nil {
		t.Fatalf("s2 Connect() error = %v", err)
	}
	defer s2.Close()

	s1.Send(&protocol.GazeMessage{Timestamp: 100, EyesOpen: true})
	s2.Send(&protocol.GazeMessage{Timestamp: 200, EyesOpen: true})

	peers := make(map[string]bool)
	for i := 0; i < 2; i++ {
		select {
		case in := <-r.Messages():
			peers[in.PeerID] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for messages")
		}
	}
	if len(peers) != 2 {
		t.Errorf("distinct peer IDs = %d, want 2 independent senders", len(peers))
	}
}

func TestSender_SendWithoutConnect(t *testing.T) {
	s := NewSender(DefaultSenderConfig())
	if err := s.Send(&protocol.GazeMessage{}); err != ErrNotConnected {
		t.Errorf("Send() error = %v, want ErrNotConnected", err)
	}
}

func TestSender_ConnectRefused(t *testing.T) {
	s := NewSender(DefaultSenderConfig())

	// Bind and immediately close a port so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if err := s.Connect(addr); err == nil {
		t.Fatal("Connect() error = nil, want refused")
	}
	if s.State() != StateFailed {
		t.Errorf("state = %v, want failed", s.State())
	}
}
