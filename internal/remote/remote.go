// Package remote serves the session status feed over websockets and
// accepts acknowledge/reset commands from remote clients.
package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dozeapp/doze/session"
)

const (
	writeTimeout = 2 * time.Second

	// sendBufSize is the per-client outbound queue size. A client whose
	// queue fills is dropped rather than allowed to stall the session
	// loop.
	sendBufSize = 32
)

// Controller is the subset of the session controller exposed to remote
// clients.
type Controller interface {
	Acknowledge()
	Reset()
	Snapshot() session.Snapshot
}

// event is one broadcast message.
type event struct {
	Event    string            `json:"event"`
	Stage    string            `json:"stage,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
}

// command is one inbound client message.
type command struct {
	Action string `json:"action"`
}

// client is one connected websocket peer. All writes to the connection
// happen on its writePump goroutine; the rest of the hub only enqueues
// frames onto send.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans session events out to connected websocket clients. It
// implements session.Listener; broadcasts only enqueue onto each client's
// buffered send channel, so the session loop never waits on a peer's
// socket.
type Hub struct {
	ctrl     Controller
	upgrader websocket.Upgrader
	srv      *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(ctrl Controller) *Hub {
	return &Hub{
		ctrl:    ctrl,
		clients: make(map[*client]struct{}),
	}
}

// Listen starts the websocket server on addr. Non-blocking.
func (h *Hub) Listen(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)

	h.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := h.srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.Error("status feed server failed", slog.Any("error", err))
		}
	}()

	slog.Info("status feed listening", slog.String("addr", addr))
}

// Shutdown closes all client connections and stops the server.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))

	for c := range h.clients {
		clients = append(clients, c)
	}

	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		if c.conn != nil {
			_ = c.conn.Close()
		}

		close(c.send)
	}

	if h.srv != nil {
		_ = h.srv.Shutdown(ctx)
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}

	// Queue the initial snapshot before registering so it is the first
	// frame the pump writes, ahead of any broadcast.
	snap := h.ctrl.Snapshot()

	b, err := json.Marshal(event{Event: "state", Snapshot: &snap})
	if err == nil {
		c.send <- b
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readCommands(c)
}

// writePump drains the client's send queue onto the socket. It is the only
// goroutine that writes to the connection.
func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			h.drop(c)
			return
		}
	}

	// send closed: the hub is disconnecting us.
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) readCommands(c *client) {
	defer h.drop(c)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd command

		err = json.Unmarshal(msg, &cmd)
		if err != nil {
			slog.Warn("malformed remote command", slog.Any("error", err))
			continue
		}

		switch cmd.Action {
		case "acknowledge":
			h.ctrl.Acknowledge()
		case "reset":
			h.ctrl.Reset()
		default:
			slog.Warn("unknown remote command", slog.String("action", cmd.Action))
		}
	}
}

// drop removes the client and closes its send channel. Only the caller that
// actually removed the client closes the channel, so concurrent drops are
// safe.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	if c.conn != nil {
		_ = c.conn.Close()
	}

	close(c.send)
}

// broadcast enqueues the event to every connected client without blocking.
// Clients whose send queue is full are dropped: the session loop must never
// wait on a slow peer's socket.
func (h *Hub) broadcast(ev event) {
	b, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encoding status event failed", slog.Any("error", err))
		return
	}

	var slow []*client

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		slog.Warn("dropping slow status feed client")
		h.drop(c)
	}
}

// StateChanged implements session.Listener.
func (h *Hub) StateChanged(snap session.Snapshot) {
	h.broadcast(event{Event: "state", Snapshot: &snap})
}

// StageCompleted implements session.Listener.
func (h *Hub) StageCompleted(stage session.Stage) {
	h.broadcast(event{Event: "stage_completed", Stage: stage.String()})
}

// AlarmStarted implements session.Listener.
func (h *Hub) AlarmStarted(cause session.Stage) {
	h.broadcast(event{Event: "alarm_started", Stage: cause.String()})
}

// AlarmStopped implements session.Listener.
func (h *Hub) AlarmStopped() {
	h.broadcast(event{Event: "alarm_stopped"})
}
