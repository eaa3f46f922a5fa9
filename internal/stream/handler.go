package stream

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Config configures the websocket feed.
type Config struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval: 15 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

type handler struct {
	hub      *Hub
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Handler serves the plan feed. Each connection receives every plan
// published after it connected, one JSON text message per plan.
func Handler(hub *Hub, cfg Config, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	return &handler{
		hub:    hub,
		cfg:    cfg,
		logger: logger.With("component", "stream_handler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, err := h.hub.Subscribe()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer h.hub.Unsubscribe(sub)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Debug("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	start := time.Now()
	h.logger.Debug("subscriber connected", "subscriber", sub.ID, "remote", r.RemoteAddr)

	// Replaces any deadline inherited from the http.Server. Pongs keep it
	// moving, so a peer that stops answering pings is dropped.
	pongWait := 2 * h.cfg.PingInterval
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The read loop only drains control frames and notices the peer leaving
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case plan, ok := <-sub.C:
			if !ok {
				h.closeConn(conn)
				<-readDone
				return
			}
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteJSON(plan); err != nil {
				h.logger.Debug("write failed", "subscriber", sub.ID, "error", err)
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				h.logger.Debug("failed to send ping", "subscriber", sub.ID, "error", err)
				return
			}

		case <-readDone:
			h.logger.Debug("subscriber disconnected",
				"subscriber", sub.ID,
				"dropped", sub.Dropped(),
				"duration", time.Since(start),
			)
			return
		}
	}
}

// closeConn sends a normal close frame and waits briefly for the peer to
// answer before the deferred Close tears the socket down.
func (h *handler) closeConn(conn *websocket.Conn) {
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "hub closed"),
		time.Now().Add(time.Second),
	)
	conn.SetReadDeadline(time.Now().Add(time.Second))
}
