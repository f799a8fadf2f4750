// Package web provides the receiver's real-time debug dashboard. It
// shows the remapped cursor, connection state, and dwell progress so a
// sender can be aimed and calibrated without watching the live pointer.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/gazelink/go-gazelink/pkg/dwell"
	"github.com/gazelink/go-gazelink/pkg/hub"
)

// Ensure Server can observe the dwell detector directly
var _ dwell.Observer = (*Server)(nil)

// State is the dashboard's view of the receiver.
type State struct {
	Connected      bool    `json:"connected"`
	Peers          int     `json:"peers"`
	CursorX        float64 `json:"cursor_x"`
	CursorY        float64 `json:"cursor_y"`
	DwellRegion    string  `json:"dwell_region"`
	DwellProgress  float64 `json:"dwell_progress"`
	FramesReceived uint64  `json:"frames_received"`
}

// Selection records one completed dwell selection.
type Selection struct {
	Time   string `json:"time"`
	Region string `json:"region"`
}

// Server is the dashboard server.
type Server struct {
	app  *fiber.App
	port string

	// State
	state   State
	stateMu sync.RWMutex

	// Selection history (last 100 entries)
	selections   []Selection
	selectionsMu sync.RWMutex

	// Hub for websocket broadcast (thread-safe!)
	stateHub *hub.Hub
}

// NewServer creates a new dashboard server.
func NewServer(port string) *Server {
	s := &Server{
		port:       port,
		selections: make([]Selection, 0, 100),
		stateHub:   hub.New("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gazelink Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	// API routes
	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/selections", s.handleSelections)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// Start starts the web server and blocks.
func (s *Server) Start() error {
	go s.stateHub.Run()
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// updateState mutates the state under lock and broadcasts the result.
func (s *Server) updateState(update func(*State)) {
	s.stateMu.Lock()
	update(&s.state)
	state := s.state // Copy for broadcast
	s.stateMu.Unlock()

	s.stateHub.BroadcastJSON(state)
}

// ============================================================
// cursor.StateUpdater
// ============================================================

// UpdateCursor records the latest remapped cursor position.
func (s *Server) UpdateCursor(x, y float64) {
	s.updateState(func(st *State) {
		st.CursorX = x
		st.CursorY = y
		st.FramesReceived++
	})
}

// UpdateConnection records the transport connection state.
func (s *Server) UpdateConnection(state string, peers int) {
	s.updateState(func(st *State) {
		st.Connected = state == "connected"
		st.Peers = peers
	})
}

// ============================================================
// dwell.Observer
// ============================================================

// DwellStarted marks a new dwell session on the dashboard.
func (s *Server) DwellStarted(region string) {
	s.updateState(func(st *State) {
		st.DwellRegion = region
		st.DwellProgress = 0
	})
}

// DwellProgress updates the dwell progress bar.
func (s *Server) DwellProgress(region string, progress float64) {
	s.updateState(func(st *State) {
		st.DwellRegion = region
		st.DwellProgress = progress
	})
}

// DwellCompleted records the selection and clears the session.
func (s *Server) DwellCompleted(region string) {
	s.selectionsMu.Lock()
	s.selections = append(s.selections, Selection{
		Time:   time.Now().Format("15:04:05"),
		Region: region,
	})
	if len(s.selections) > 100 {
		s.selections = s.selections[1:]
	}
	s.selectionsMu.Unlock()

	s.updateState(func(st *State) {
		st.DwellRegion = ""
		st.DwellProgress = 0
	})
}

// DwellCancelled clears the dwell session.
func (s *Server) DwellCancelled(region string) {
	s.updateState(func(st *State) {
		st.DwellRegion = ""
		st.DwellProgress = 0
	})
}
