package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/core"
)

// maxWebhookBody caps what we are willing to read from a webhook request.
const maxWebhookBody = 5 << 20

// WebhookHandler admits review jobs: it verifies GitHub webhook deliveries,
// filters them down to reviewable pull request actions, and enqueues a
// normalized job. The endpoint only waits for the job to be durably
// enqueued, never for it to be processed.
type WebhookHandler struct {
	cfg    *config.Config
	queue  core.JobQueue
	logger *slog.Logger
}

// NewWebhookHandler creates a webhook handler with the given configuration and queue.
func NewWebhookHandler(cfg *config.Config, queue core.JobQueue, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, queue: queue, logger: logger}
}

// HandleGitHub processes GitHub webhook deliveries. Request state machine:
// received → verified → filtered-out or enqueued.
func (h *WebhookHandler) HandleGitHub(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		writeDetail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	defer r.Body.Close()

	secret := h.cfg.WebhookSecret
	if !h.cfg.WebhookVerify {
		secret = ""
	}
	skipped, err := VerifySignature(secret, body, r.Header.Get("X-Hub-Signature-256"))
	switch {
	case errors.Is(err, ErrMissingSignature):
		h.logger.Warn("webhook rejected, signature header missing")
		writeDetail(w, http.StatusForbidden, "Missing X-Hub-Signature-256 header")
		return
	case errors.Is(err, ErrInvalidSignature):
		h.logger.Warn("webhook rejected, signature mismatch")
		writeDetail(w, http.StatusForbidden, "Invalid signature")
		return
	case skipped:
		h.logger.Warn("webhook signature verification is disabled, accepting unverified delivery")
	}

	// Only opened or synchronized (updated) pull requests are reviewed.
	if r.Header.Get("X-GitHub-Event") != "pull_request" {
		writeStatus(w, "ignored", "")
		return
	}

	var event github.PullRequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("could not parse pull_request payload", "error", err)
		writeDetail(w, http.StatusBadRequest, "Could not parse webhook payload")
		return
	}

	action := event.GetAction()
	if action != "opened" && action != "synchronize" {
		h.logger.Debug("ignoring pull_request action", "action", action)
		writeStatus(w, "ignored", "")
		return
	}

	job := &core.Job{
		Source:         core.SourceGitHub,
		RepoName:       event.GetRepo().GetFullName(),
		PRNumber:       event.GetNumber(),
		InstallationID: event.GetInstallation().GetID(),
	}
	if err := job.Validate(); err != nil {
		h.logger.Error("pull_request payload is missing required fields", "error", err)
		writeDetail(w, http.StatusBadRequest, "Incomplete pull_request payload")
		return
	}

	if err := h.queue.Push(r.Context(), job); err != nil {
		h.logger.Error("failed to enqueue review job", "repo", job.RepoName, "pr", job.PRNumber, "error", err)
		writeDetail(w, http.StatusServiceUnavailable, "Failed to queue review job")
		return
	}

	h.logger.Info("queued review job", "repo", job.RepoName, "pr", job.PRNumber, "action", action)
	writeStatus(w, "queued", "")
}

// manualRequest is the body of a manual submission: raw code text reviewed
// without any GitHub round-trip.
type manualRequest struct {
	RepoName string `json:"repo_name,omitempty"`
	Code     string `json:"code"`
}

// HandleManual accepts a raw code payload and enqueues a manual review job.
// Manual submissions bypass signature verification and event filtering.
func (h *WebhookHandler) HandleManual(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not parse request body")
		return
	}
	defer r.Body.Close()

	if req.Code == "" {
		writeDetail(w, http.StatusBadRequest, "code is required")
		return
	}

	job := &core.Job{
		Source:   core.SourceManual,
		RepoName: req.RepoName,
		Code:     req.Code,
	}
	if err := h.queue.Push(r.Context(), job); err != nil {
		h.logger.Error("failed to enqueue manual review job", "error", err)
		writeDetail(w, http.StatusServiceUnavailable, "Failed to queue review job")
		return
	}

	h.logger.Info("queued manual review job", "repo", req.RepoName)
	writeStatus(w, "queued", "Manual review started")
}

func writeStatus(w http.ResponseWriter, status, message string) {
	resp := map[string]string{"status": status}
	if message != "" {
		resp["message"] = message
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
