package rate

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeWindowStore struct {
	counts map[string]int64
	ttl    time.Duration
	err    error
}

func (s *fakeWindowStore) IncrementWindow(_ context.Context, key string, _ time.Duration) (int64, time.Duration, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	s.counts[key]++
	return s.counts[key], s.ttl, nil
}

func TestAllowLoginWithinLimit(t *testing.T) {
	ctx := context.Background()
	limiter := NewLimiter(&fakeWindowStore{ttl: 30 * time.Second}, 3)

	for i := 0; i < 3; i++ {
		if _, err := limiter.AllowLogin(ctx, "alice"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
}

func TestAllowLoginBlocksOverLimit(t *testing.T) {
	ctx := context.Background()
	limiter := NewLimiter(&fakeWindowStore{ttl: 30 * time.Second}, 2)

	for i := 0; i < 2; i++ {
		if _, err := limiter.AllowLogin(ctx, "alice"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}

	retryAfter, err := limiter.AllowLogin(ctx, "alice")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if retryAfter != 30*time.Second {
		t.Fatalf("retry after = %v, want 30s", retryAfter)
	}
}

func TestAllowLoginCountsPerUsername(t *testing.T) {
	ctx := context.Background()
	limiter := NewLimiter(&fakeWindowStore{}, 1)

	if _, err := limiter.AllowLogin(ctx, "alice"); err != nil {
		t.Fatalf("alice first: %v", err)
	}
	// A different username has its own window.
	if _, err := limiter.AllowLogin(ctx, "bob"); err != nil {
		t.Fatalf("bob first: %v", err)
	}
	if _, err := limiter.AllowLogin(ctx, "alice"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("alice second: err = %v, want ErrRateLimited", err)
	}
}

func TestAllowLoginFailsOpenOnStoreError(t *testing.T) {
	ctx := context.Background()
	limiter := NewLimiter(&fakeWindowStore{err: errors.New("redis down")}, 1)

	for i := 0; i < 5; i++ {
		if _, err := limiter.AllowLogin(ctx, "alice"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
}

func TestAllowLoginDisabled(t *testing.T) {
	ctx := context.Background()

	// Nil store or zero limit disables limiting entirely.
	for _, limiter := range []*Limiter{NewLimiter(nil, 10), NewLimiter(&fakeWindowStore{}, 0)} {
		for i := 0; i < 20; i++ {
			if _, err := limiter.AllowLogin(ctx, "alice"); err != nil {
				t.Fatalf("attempt %d: %v", i+1, err)
			}
		}
	}
}

func TestAllowLoginRequiresUsername(t *testing.T) {
	limiter := NewLimiter(&fakeWindowStore{}, 1)
	if _, err := limiter.AllowLogin(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty username")
	}
}
