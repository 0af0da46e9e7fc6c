package rate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const loginWindow = time.Minute

var ErrRateLimited = errors.New("rate limited")

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter throttles login attempts per username with a fixed redis window.
// A nil store disables limiting (degraded mode without redis).
type Limiter struct {
	store     WindowStore
	perMinute int
}

func NewLimiter(store WindowStore, perMinute int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
	}
}

// AllowLogin returns ErrRateLimited with a retry-after hint once the window
// is exhausted. Store failures fail open: a broken redis must not lock
// everyone out.
func (l *Limiter) AllowLogin(ctx context.Context, username string) (time.Duration, error) {
	if username == "" {
		return 0, fmt.Errorf("username is required")
	}
	if l.store == nil || l.perMinute <= 0 {
		return 0, nil
	}

	count, ttl, err := l.store.IncrementWindow(ctx, loginKey(username), loginWindow)
	if err != nil {
		return 0, nil
	}
	if count > int64(l.perMinute) {
		return ttl, ErrRateLimited
	}

	return 0, nil
}

func loginKey(username string) string {
	return "rate:login:" + username
}
