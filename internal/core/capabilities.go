package core

import "context"

// CodeHost is the external collaborator boundary for the hosting platform:
// fetching pull request diffs and posting review comments.
//
//go:generate mockgen -destination=../../mocks/mock_capabilities.go -package=mocks . CodeHost,ReviewEngine
type CodeHost interface {
	// GetDiff returns the textual diff of a pull request. An empty string
	// with a nil error means no reviewable changes exist.
	GetDiff(ctx context.Context, repo string, prNumber int) (string, error)
	// PostComment publishes a review comment on a pull request.
	PostComment(ctx context.Context, repo string, prNumber int, body string) error
}

// ReviewEngine is the external collaborator boundary for review generation:
// diff text in, review text out.
type ReviewEngine interface {
	Review(ctx context.Context, diff string) (string, error)
}
