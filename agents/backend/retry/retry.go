/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config configures retry behavior for model requests that hit rate limits
// or transient server errors.
type Config struct {
	// MaxRetries is the maximum number of retry attempts (default: 5).
	// 0 disables retries.
	MaxRetries int
	// BaseBackoff is the initial backoff duration (default: 1s)
	BaseBackoff time.Duration
	// MaxBackoff is the maximum backoff duration (default: 60s)
	MaxBackoff time.Duration
	// MaxJitter is the maximum random jitter added to backoff (default: 500ms)
	MaxJitter time.Duration
}

// Validate checks that the retry configuration has valid values.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 {
		return errors.New("base backoff cannot be negative")
	}
	if c.MaxBackoff < 0 {
		return errors.New("max backoff cannot be negative")
	}
	if c.MaxJitter < 0 {
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// DefaultConfig returns a configuration suited to quota and rate limit
// errors, which take longer to clear than typical transient failures.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  60 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// Attempt is handed to each call of a retried operation.
type Attempt struct {
	// Number counts attempts from zero.
	Number    int
	delivered bool
}

// Deliver records that the attempt has produced output the caller cannot
// take back, such as a streamed text fragment. A delivered attempt is
// never retried, whatever its error.
func (a *Attempt) Deliver() { a.delivered = true }

// ExhaustedError is returned when every allowed attempt failed with a
// retryable error.
type ExhaustedError struct {
	Operation string
	Retries   int
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d retries: %v", e.Operation, e.Retries, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do executes fn with exponential backoff, retrying only errors that
// isRetryable accepts from attempts that delivered nothing.
func Do[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func(*Attempt) (T, error)) (T, error) {
	var result T
	var lastErr error
	log := clog.FromContext(ctx).With("operation", operation)

	for n := 0; n <= cfg.MaxRetries; n++ {
		a := &Attempt{Number: n}
		result, lastErr = fn(a)
		if lastErr == nil || !isRetryable(lastErr) {
			return result, lastErr
		}
		if a.delivered {
			log.With("attempt", n+1).With("error", lastErr.Error()).
				Warn("Transient model error after output was delivered, not retrying")
			return result, lastErr
		}
		if n >= cfg.MaxRetries {
			break
		}

		wait := cfg.backoff(n)
		log.With("attempt", n+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", wait).
			With("error", lastErr.Error()).
			Warn("Transient model error, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}

	return result, &ExhaustedError{Operation: operation, Retries: cfg.MaxRetries, Err: lastErr}
}

// backoff returns BaseBackoff * 2^attempt capped at MaxBackoff, plus jitter.
func (c Config) backoff(attempt int) time.Duration {
	d := min(c.BaseBackoff<<attempt, c.MaxBackoff)
	if c.MaxJitter > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter))); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}
