// Package retry runs fallible operations with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrExhausted wraps the last failure once every attempt has been used
var ErrExhausted = errors.New("retries exhausted")

// Policy describes how many times an operation runs and how long to wait
// between attempts. The wait before attempt n+1 is Delay * 2^(n-1).
type Policy struct {
	Name     string
	Attempts int
	Delay    time.Duration
}

// sleep waits for d or until ctx is done. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the wait after the given failed attempt (1-based)
func (p Policy) Backoff(attempt int) time.Duration {
	return p.Delay * time.Duration(1<<(attempt-1))
}

// Do runs op until it succeeds or the policy's attempts are used up. The
// final error wraps both ErrExhausted and the last failure.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.Printf("✓ %s succeeded on attempt %d", p.Name, attempt)
			}
			return result, nil
		}
		lastErr = err
		log.Printf("✗ %s failed (attempt %d/%d): %v", p.Name, attempt, attempts, err)

		if attempt == attempts {
			break
		}
		if err := sleep(ctx, p.Backoff(attempt)); err != nil {
			return zero, fmt.Errorf("%s: %w", p.Name, err)
		}
	}

	return zero, fmt.Errorf("%s: %w after %d attempts: %w", p.Name, ErrExhausted, attempts, lastErr)
}

// DoWithFallback behaves like Do but returns fallback instead of an error
// once the attempts are exhausted.
func DoWithFallback[T any](ctx context.Context, p Policy, fallback T, op func(context.Context) (T, error)) T {
	result, err := Do(ctx, p, op)
	if err != nil {
		log.Printf("↩ Using fallback for %s", p.Name)
		return fallback
	}
	return result
}
