package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/core"
)

// NewCodeHost builds the code host client from configuration. A Personal
// Access Token takes precedence; otherwise GitHub App credentials with a
// fixed installation are used. The installation transport refreshes its
// access token automatically.
func NewCodeHost(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.CodeHost, error) {
	if cfg.GitHubToken != "" {
		logger.Info("authenticating to GitHub with a personal access token")
		return NewPATHost(ctx, cfg.GitHubToken, logger), nil
	}

	if cfg.GitHubAppID == 0 || cfg.GitHubInstallationID == 0 {
		return nil, fmt.Errorf("github auth requires GITHUB_API_TOKEN or GITHUB_APP_ID with GITHUB_INSTALLATION_ID")
	}

	logger.Info("authenticating to GitHub as an app installation",
		"app_id", cfg.GitHubAppID,
		"installation_id", cfg.GitHubInstallationID)

	itr, err := ghinstallation.NewKeyFromFile(
		http.DefaultTransport,
		cfg.GitHubAppID,
		cfg.GitHubInstallationID,
		cfg.GitHubPrivateKeyPath,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport from %s: %w", cfg.GitHubPrivateKeyPath, err)
	}

	client := github.NewClient(&http.Client{Transport: itr})
	return NewHost(client, logger), nil
}
