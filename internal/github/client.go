// Package github implements the code host capability on top of the GitHub
// API: fetching pull request diffs and posting review comments.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/git-sentinel/internal/core"
)

// reviewableExtensions limits the diff to source files the review engine can
// meaningfully analyze. Removed files and unknown file types are skipped to
// keep the prompt focused on real changes.
var reviewableExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {},
	".java": {}, ".kt": {}, ".rb": {}, ".rs": {}, ".c": {}, ".h": {},
	".cc": {}, ".cpp": {}, ".hpp": {}, ".cs": {}, ".php": {}, ".swift": {},
	".scala": {}, ".sql": {},
}

type hostClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewHost wraps the official go-github client to provide the focused
// core.CodeHost operations the review pipeline needs.
func NewHost(client *github.Client, logger *slog.Logger) core.CodeHost {
	return &hostClient{client: client, logger: logger}
}

// NewPATHost creates a code host client authenticated with a Personal Access
// Token. This is the default for single-user deployments and local runs.
func NewPATHost(ctx context.Context, token string, logger *slog.Logger) core.CodeHost {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &hostClient{client: github.NewClient(tc), logger: logger}
}

// GetDiff fetches the changed files of a pull request and assembles a single
// diff document, one patch per reviewable file. It handles pagination to
// cover pull requests with more than 100 files. An empty result with a nil
// error means the PR touched no reviewable files.
func (h *hostClient) GetDiff(ctx context.Context, repo string, prNumber int) (string, error) {
	owner, name, err := splitRepoName(repo)
	if err != nil {
		return "", err
	}

	var diff strings.Builder
	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := h.client.PullRequests.ListFiles(ctx, owner, name, prNumber, opts)
		if err != nil {
			h.logger.Error("failed to list pull request files", "repo", repo, "pr", prNumber, "error", err)
			return "", fmt.Errorf("failed to fetch diff for %s#%d: %w", repo, prNumber, err)
		}
		for _, file := range files {
			if file.GetStatus() == "removed" || !isReviewable(file.GetFilename()) {
				continue
			}
			if file.GetPatch() == "" {
				continue
			}
			fmt.Fprintf(&diff, "\n--- File: %s ---\n%s", file.GetFilename(), file.GetPatch())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return diff.String(), nil
}

// PostComment publishes the review as an issue comment on the pull request.
func (h *hostClient) PostComment(ctx context.Context, repo string, prNumber int, body string) error {
	owner, name, err := splitRepoName(repo)
	if err != nil {
		return err
	}

	comment := &github.IssueComment{Body: github.Ptr(body)}
	if _, _, err := h.client.Issues.CreateComment(ctx, owner, name, prNumber, comment); err != nil {
		h.logger.Error("failed to post review comment", "repo", repo, "pr", prNumber, "error", err)
		return fmt.Errorf("failed to post comment on %s#%d: %w", repo, prNumber, err)
	}
	return nil
}

func isReviewable(filename string) bool {
	_, ok := reviewableExtensions[strings.ToLower(path.Ext(filename))]
	return ok
}

// splitRepoName splits an "owner/name" repository identifier.
func splitRepoName(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository name %q, want owner/name", repo)
	}
	return owner, name, nil
}
