package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/git-sentinel/internal/core"
	"github.com/sevigo/git-sentinel/internal/queue"
)

func dialStream(t *testing.T, broker *queue.MemoryBroker) *websocket.Conn {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewStreamHandler(broker, "sentinel_events", logger)

	srv := httptest.NewServer(http.HandlerFunc(h.Handle))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamRelaysProgressEvents(t *testing.T) {
	broker := queue.NewMemoryBroker()
	conn := dialStream(t, broker)

	want := core.ProgressEvent{
		Type:    core.EventSuccess,
		Message: "Review completed for org/repo#7",
		Repo:    "org/repo",
		PR:      7,
		Review:  "LGTM!",
	}

	// The handler subscribes after the HTTP handshake completes, so keep
	// publishing until the relay delivers a frame.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = broker.Publish(context.Background(), "sentinel_events", &want)
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)

	var got core.ProgressEvent
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, want, got)
}

func TestStreamIgnoresOtherChannels(t *testing.T) {
	broker := queue.NewMemoryBroker()
	conn := dialStream(t, broker)

	// Give the handler time to subscribe, then publish off-channel.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, broker.Publish(context.Background(), "other_channel", &core.ProgressEvent{
		Type:    core.EventLog,
		Message: "should not arrive",
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "no frame should arrive for events on other channels")
}
