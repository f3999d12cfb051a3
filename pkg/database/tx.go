package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

const baseBackoff = 50 * time.Millisecond

// WithRetry runs fn inside a transaction and restarts it on deadlocks,
// serialization failures, lock timeouts and errors wrapped by MarkRetryable.
// Any other error rolls back and is returned unchanged.
func WithRetry(ctx context.Context, db *gorm.DB, maxRetries int, fn func(tx *gorm.DB) error) error {
	backoff := baseBackoff

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}
