package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/core"
	"github.com/sevigo/git-sentinel/internal/server/handler"
)

// NewRouter creates and configures the gateway's HTTP router with middleware
// and API routes.
func NewRouter(cfg *config.Config, queue core.JobQueue, bus core.EventBus, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack. The live stream route is mounted outside
	// the timeout middleware; its connections are deliberately long-lived.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "Welcome to the Git Sentinel API Gateway!"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})

	webhookHandler := handler.NewWebhookHandler(cfg, queue, logger)
	streamHandler := handler.NewStreamHandler(bus, cfg.EventsChannel, logger)

	r.Route("/webhook", func(r chi.Router) {
		r.With(middleware.Timeout(30 * time.Second)).Post("/github", webhookHandler.HandleGitHub)
		r.With(middleware.Timeout(30 * time.Second)).Post("/manual", webhookHandler.HandleManual)
		r.Get("/ws", streamHandler.Handle)
	})

	return r
}
