package ratelimit

import (
	"context"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *time.Time) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	l := New(ctx, limit, window)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllow(t *testing.T) {
	l, now := newTestLimiter(t, 3, time.Minute)

	for i := range 3 {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected within limit", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("fourth request allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other key should have its own bucket")
	}

	*now = now.Add(21 * time.Second)
	if !l.Allow("10.0.0.1") {
		t.Error("token not refilled after a third of the window")
	}
	if l.Allow("10.0.0.1") {
		t.Error("only one token should have been refilled")
	}
}

func TestResetAndEvict(t *testing.T) {
	l, now := newTestLimiter(t, 1, time.Minute)
	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("bucket should be empty")
	}
	l.Reset("a")
	if !l.Allow("a") {
		t.Error("Reset did not clear the bucket")
	}

	*now = now.Add(3 * time.Minute)
	l.evictIdle()
	if len(l.entries) != 0 {
		t.Errorf("idle entries not evicted: %d left", len(l.entries))
	}
}

func TestRetryAfter(t *testing.T) {
	l, _ := newTestLimiter(t, 60, time.Minute)
	if got := l.RetryAfter(); got != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", got)
	}
}
