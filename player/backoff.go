package player

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// StatusError is a non-2xx response from an upstream API.
type StatusError struct {
	Code       int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("upstream returned %d", e.Code)
}

// Backoff is an exponential retry policy.
type Backoff struct {
	Initial  time.Duration
	Factor   float64
	Max      time.Duration
	Attempts int

	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultBackoff is used for every Spotify call.
var DefaultBackoff = Backoff{
	Initial:  500 * time.Millisecond,
	Factor:   2,
	Max:      8 * time.Second,
	Attempts: 4,
}

// Delay returns the wait before retry n (0-based).
func (b Backoff) Delay(n int) time.Duration {
	d := float64(b.Initial)
	for i := 0; i < n; i++ {
		d *= b.Factor
		if time.Duration(d) >= b.Max {
			return b.Max
		}
	}
	return time.Duration(d)
}

// Retryable reports whether err is worth another attempt: network failures,
// 429 and 5xx. Context errors and other statuses are final.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrSpotifyNotConfigured) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}

// Do runs fn until it succeeds, returns a final error or attempts run out.
func (b Backoff) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := b.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil || !Retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		wait := b.Delay(i)
		var se *StatusError
		if errors.As(err, &se) && se.RetryAfter > wait && se.RetryAfter <= b.Max {
			wait = se.RetryAfter
		}
		if serr := sleep(ctx, wait); serr != nil {
			return serr
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
