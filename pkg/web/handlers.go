package web

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/gazelink/go-gazelink/pkg/hub"
)

// indexPage is the self-contained dashboard page. It draws the cursor
// on a scaled-down screen outline and mirrors the dwell progress bar.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<title>Gazelink</title>
<style>
body { font-family: monospace; background: #111; color: #eee; margin: 2em; }
#screen { position: relative; width: 640px; height: 360px; border: 1px solid #555; }
#cursor { position: absolute; width: 10px; height: 10px; margin: -5px;
          border-radius: 50%; background: #4af; }
#bar { width: 640px; height: 8px; background: #333; margin-top: 1em; }
#fill { height: 100%; width: 0; background: #fa4; }
</style>
</head>
<body>
<div id="status">waiting…</div>
<div id="screen"><div id="cursor"></div></div>
<div id="bar"><div id="fill"></div></div>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws/state");
ws.onmessage = (ev) => {
  const s = JSON.parse(ev.data);
  document.getElementById("status").textContent =
    (s.connected ? "connected (" + s.peers + ")" : "listening") +
    " | frames: " + s.frames_received +
    (s.dwell_region ? " | dwell: " + s.dwell_region : "");
  const el = document.getElementById("cursor");
  el.style.left = (s.cursor_x / window.screen.width * 640) + "px";
  el.style.top = (s.cursor_y / window.screen.height * 360) + "px";
  document.getElementById("fill").style.width = (s.dwell_progress * 640) + "px";
};
</script>
</body>
</html>`

// handleIndex serves the dashboard page
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexPage)
}

// handleState returns the current receiver state
func (s *Server) handleState(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handleSelections returns recent dwell selections
func (s *Server) handleSelections(c *fiber.Ctx) error {
	s.selectionsMu.RLock()
	defer s.selectionsMu.RUnlock()
	return c.JSON(s.selections)
}

// handleStateWS streams state updates over a websocket
func (s *Server) handleStateWS(c *websocket.Conn) {
	// Send the current state before joining the broadcast stream
	s.stateMu.RLock()
	c.WriteJSON(s.state)
	s.stateMu.RUnlock()

	client := hub.NewClient(s.stateHub, c)
	client.Run() // Blocks until the connection closes
}
