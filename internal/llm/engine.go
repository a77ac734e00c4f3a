// Package llm implements the review engine capability on top of a
// configurable Large Language Model provider.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/core"
)

const reviewPrompt = `You are a Senior Backend Engineer doing a code review.
Analyze the provided git diff.
Rules:
1. Ignore formatting and whitespace changes.
2. Focus on logic bugs, security risks (SQL injection, XSS, leaked secrets), and performance issues.
3. Be concise and provide code snippets for fixes.
4. If the code looks good, reply with "LGTM!".

Here is the diff:

`

type engine struct {
	model  llms.Model
	logger *slog.Logger
}

// NewEngine creates the review engine for the configured LLM provider. The
// provider is selected once at startup; there is no runtime registry.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.ReviewEngine, error) {
	model, err := createModel(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &engine{model: model, logger: logger}, nil
}

// Review asks the model for a review of the diff text.
func (e *engine) Review(ctx context.Context, diff string) (string, error) {
	answer, err := e.model.Call(ctx, reviewPrompt+diff)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// createModel creates the appropriate LLM client based on the configured provider.
func createModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	switch cfg.LLMProvider {
	case "gemini":
		logger.Info("using Gemini LLM provider", "model", cfg.GeneratorModelName)
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set for the gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.GeneratorModelName),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)

	case "ollama":
		logger.Info("using Ollama LLM provider", "model", cfg.GeneratorModelName, "host", cfg.OllamaHost)
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithModel(cfg.GeneratorModelName),
			ollama.WithHTTPClient(newLLMHTTPClient()),
			ollama.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// newLLMHTTPClient creates an HTTP client with generous timeouts; local
// models can take minutes on a large diff.
func newLLMHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
