// Package rpc wraps the go-ethereum client with retry and instrumentation.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/pkg/config"
)

// calculateBackoff returns the wait before the given retry attempt, growing
// exponentially and jittered by up to 20% to avoid thundering herds.
func calculateBackoff(attempt int, cfg *config.RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff.Duration) * math.Pow(cfg.BackoffMultiplier, float64(attempt))
	if backoff > float64(cfg.MaxBackoff.Duration) {
		backoff = float64(cfg.MaxBackoff.Duration)
	}

	jitter := backoff * 0.2 * rand.Float64() //nolint:gosec

	return time.Duration(backoff + jitter)
}

// retryWithBackoff runs fn up to cfg.MaxAttempts times. Context cancellation
// stops the retries immediately.
func retryWithBackoff(ctx context.Context, cfg *config.RetryConfig, log *logger.Logger, op string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := calculateBackoff(attempt-1, cfg)
			log.Debugf("%s failed, retrying in %s (attempt %d/%d): %v", op, wait, attempt+1, cfg.MaxAttempts, lastErr)

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, cfg.MaxAttempts, lastErr)
}
