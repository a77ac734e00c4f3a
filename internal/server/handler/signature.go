// Package handler provides the HTTP handlers of the API gateway.
package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Signature verification errors. They are admission errors: rejected
// synchronously at the boundary, never enqueued, never retried.
var (
	ErrMissingSignature = errors.New("missing X-Hub-Signature-256 header")
	ErrInvalidSignature = errors.New("invalid signature")
)

// VerifySignature checks that body was signed with secret, comparing the
// expected "sha256=<hex hmac>" digest against provided in constant time.
//
// An empty secret is an explicit development-mode bypass: verification is
// skipped entirely and reported as such via the skipped return so callers
// can surface the distinction instead of treating the request as verified.
// The check is a pure pre-admission gate with no side effects; it must run
// before any body parsing.
func VerifySignature(secret string, body []byte, provided string) (skipped bool, err error) {
	if secret == "" {
		return true, nil
	}
	if provided == "" {
		return false, ErrMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return false, ErrInvalidSignature
	}
	return false, nil
}
