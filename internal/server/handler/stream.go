package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sevigo/git-sentinel/internal/core"
)

// writeTimeout bounds a single frame write so one stuck observer connection
// is torn down instead of holding its relay goroutine forever.
const writeTimeout = 10 * time.Second

// StreamHandler bridges the event bus to WebSocket observers. Every
// connection gets its own subscription, so a slow or blocked observer
// cannot stall others. There is no buffering across reconnects: a newly
// connected observer sees only events published after it subscribed.
type StreamHandler struct {
	bus     core.EventBus
	channel string
	logger  *slog.Logger

	upgrader websocket.Upgrader
}

// NewStreamHandler creates a live stream handler relaying the given bus channel.
func NewStreamHandler(bus core.EventBus, channel string, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		bus:     bus,
		channel: channel,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The webhook endpoint is the only authenticated surface;
			// the stream is an open firehose of progress messages.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handle upgrades the connection and relays progress events, one JSON text
// frame per event, until either side disconnects. The observer is not
// expected to send anything; inbound frames are read only to detect
// disconnection.
func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	sub, err := h.bus.Subscribe(r.Context(), h.channel)
	if err != nil {
		h.logger.Error("failed to subscribe to event bus", "channel", h.channel, "error", err)
		return
	}
	defer sub.Close()

	h.logger.Info("live stream observer connected", "remote", r.RemoteAddr)

	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				h.logger.Warn("event subscription closed, dropping observer", "remote", r.RemoteAddr)
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to encode progress event", "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Info("live stream observer write failed, closing", "remote", r.RemoteAddr, "error", err)
				return
			}
		case <-disconnected:
			h.logger.Info("live stream observer disconnected", "remote", r.RemoteAddr)
			return
		}
	}
}
