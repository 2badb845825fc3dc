package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/session"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ResultsHandler pushes every frame result to websocket clients. Clients may
// send {"command": "..."} messages to apply session commands.
type ResultsHandler struct {
	app    *app.App
	logger zerolog.Logger
}

// NewResultsHandler creates a new ResultsHandler for a.
func NewResultsHandler(a *app.App, logger zerolog.Logger) *ResultsHandler {
	return &ResultsHandler{app: a, logger: logger}
}

type wsMessage struct {
	Type     string               `json:"type"`
	Result   *session.FrameResult `json:"result,omitempty"`
	Snapshot *session.Snapshot    `json:"snapshot,omitempty"`
	Error    string               `json:"error,omitempty"`
}

type wsCommand struct {
	Command string `json:"command"`
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	gauge := h.app.Metrics().WSClients
	gauge.Inc()
	defer gauge.Dec()

	results, cancel := h.app.Subscribe()
	defer cancel()

	// All writes happen on this goroutine; the reader hands replies over.
	replies := make(chan wsMessage, 8)
	closed := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go h.read(conn, replies, closed, stop)

	snap := h.app.Engine().Snapshot()
	if err := h.write(conn, wsMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case res, ok := <-results:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			if err := h.write(conn, wsMessage{Type: "result", Result: &res}); err != nil {
				return
			}
		case msg := <-replies:
			if err := h.write(conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *ResultsHandler) write(conn *websocket.Conn, msg wsMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// read applies client commands until the connection fails, then closes done.
func (h *ResultsHandler) read(conn *websocket.Conn, replies chan<- wsMessage, done chan<- struct{}, stop <-chan struct{}) {
	defer close(done)

	reply := func(m wsMessage) bool {
		select {
		case replies <- m:
			return true
		case <-stop:
			return false
		}
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if !reply(h.handle(data)) {
			return
		}
	}
}

func (h *ResultsHandler) handle(data []byte) wsMessage {
	var c wsCommand
	if err := json.Unmarshal(data, &c); err != nil {
		return wsMessage{Type: "error", Error: "invalid JSON"}
	}
	cmd, err := session.ParseCommand(c.Command)
	if err != nil {
		return wsMessage{Type: "error", Error: err.Error()}
	}
	snap, err := h.app.Apply(cmd, time.Now())
	if err != nil {
		return wsMessage{Type: "error", Error: err.Error()}
	}
	return wsMessage{Type: "snapshot", Snapshot: &snap}
}
