package utils

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/rafflehq/raffle-backend/internal/models"
)

// WithRetry runs fn, retrying exactly once if it fails with a transient
// transport error. Validation-class failures are surfaced immediately.
func WithRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !models.IsTransient(err) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	return fn()
}

// GenerateRandomString generates a URL-safe random string of the specified length
func GenerateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:length], nil
}
