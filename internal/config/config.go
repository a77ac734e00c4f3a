// Package config loads the application's configuration from environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Queue backend selectors. The backend is chosen once at startup; there is
// no runtime registry.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application's configuration values, shared by the
// gateway, the worker, and the CLI.
type Config struct {
	ServerPort string
	LogLevel   slog.Level
	LogFormat  string

	QueueBackend  string
	RedisAddr     string
	RedisDB       int
	QueueName     string
	EventsChannel string

	WebhookSecret string
	WebhookVerify bool

	GitHubToken          string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKeyPath string

	LLMProvider        string
	OllamaHost         string
	GeneratorModelName string
	GeminiAPIKey       string

	MaxWorkers   int
	PopTimeout   time.Duration
	ErrorBackoff time.Duration
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("QUEUE_BACKEND", BackendRedis)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("QUEUE_NAME", "review_jobs")
	viper.SetDefault("EVENTS_CHANNEL", "sentinel_events")
	viper.SetDefault("WEBHOOK_VERIFY", true)
	viper.SetDefault("LLM_PROVIDER", "ollama")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("GENERATOR_MODEL_NAME", "gemma3:latest")
	viper.SetDefault("MAX_WORKERS", 1)
	viper.SetDefault("POP_TIMEOUT", "2s")
	viper.SetDefault("ERROR_BACKOFF", "1s")
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/git-sentinel-app.private-key.pem")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", "error", err)
		}
	}

	backend := strings.ToLower(viper.GetString("QUEUE_BACKEND"))
	if backend != BackendRedis && backend != BackendMemory {
		return nil, fmt.Errorf("unsupported queue backend %q (want %q or %q)", backend, BackendRedis, BackendMemory)
	}

	if viper.GetString("GITHUB_WEBHOOK_SECRET") == "" {
		slog.Warn("GITHUB_WEBHOOK_SECRET is not set, webhook signature verification is disabled")
	}

	// Special handling for Gemini generator model name.
	generatorModel := viper.GetString("GENERATOR_MODEL_NAME")
	if viper.GetString("LLM_PROVIDER") == "gemini" {
		geminiModel := viper.GetString("GEMINI_GENERATOR_MODEL_NAME")
		if geminiModel != "" {
			generatorModel = geminiModel
		} else {
			generatorModel = "gemini-2.5-flash"
		}
	}

	// Parse the log level string into a slog.Level type.
	var logLevel slog.Level
	logLevelStr := strings.ToLower(viper.GetString("LOG_LEVEL"))
	switch logLevelStr {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	case "info":
		logLevel = slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", logLevelStr)
		logLevel = slog.LevelInfo
	}

	cfg := &Config{
		ServerPort:           viper.GetString("SERVER_PORT"),
		LogLevel:             logLevel,
		LogFormat:            viper.GetString("LOG_FORMAT"),
		QueueBackend:         backend,
		RedisAddr:            viper.GetString("REDIS_ADDR"),
		RedisDB:              viper.GetInt("REDIS_DB"),
		QueueName:            viper.GetString("QUEUE_NAME"),
		EventsChannel:        viper.GetString("EVENTS_CHANNEL"),
		WebhookSecret:        viper.GetString("GITHUB_WEBHOOK_SECRET"),
		WebhookVerify:        viper.GetBool("WEBHOOK_VERIFY"),
		GitHubToken:          viper.GetString("GITHUB_API_TOKEN"),
		GitHubAppID:          viper.GetInt64("GITHUB_APP_ID"),
		GitHubInstallationID: viper.GetInt64("GITHUB_INSTALLATION_ID"),
		GitHubPrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		LLMProvider:          viper.GetString("LLM_PROVIDER"),
		OllamaHost:           viper.GetString("OLLAMA_HOST"),
		GeneratorModelName:   generatorModel,
		GeminiAPIKey:         viper.GetString("GEMINI_API_KEY"),
		MaxWorkers:           viper.GetInt("MAX_WORKERS"),
		PopTimeout:           viper.GetDuration("POP_TIMEOUT"),
		ErrorBackoff:         viper.GetDuration("ERROR_BACKOFF"),
	}

	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 2 * time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}

	return cfg, nil
}
