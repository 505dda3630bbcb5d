package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryLimiter_AllowsWithinQuota(t *testing.T) {
	limiter, err := NewMemoryFixedWindowLimiter(2, time.Minute)
	if err != nil {
		t.Fatalf("new memory limiter: %v", err)
	}
	if !limiter.Allow("user-1") {
		t.Fatal("first request should pass")
	}
	if !limiter.Allow("user-1") {
		t.Fatal("second request should pass")
	}
	if limiter.Allow("user-1") {
		t.Fatal("third request should be blocked")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter, err := NewMemoryFixedWindowLimiter(1, time.Minute)
	if err != nil {
		t.Fatalf("new memory limiter: %v", err)
	}
	if !limiter.Allow("user-1") {
		t.Fatal("user-1 first request should pass")
	}
	if !limiter.Allow("user-2") {
		t.Fatal("user-2 must have their own quota")
	}
	if limiter.Allow("user-1") {
		t.Fatal("user-1 second request should be blocked")
	}
}

func TestMemoryLimiter_NewWindowResets(t *testing.T) {
	limiter, err := NewMemoryFixedWindowLimiter(1, time.Minute)
	if err != nil {
		t.Fatalf("new memory limiter: %v", err)
	}

	// Inject a fake clock so the test doesn't sleep a whole window.
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	if !limiter.Allow("user-1") {
		t.Fatal("first request should pass")
	}
	if limiter.Allow("user-1") {
		t.Fatal("second request in the same window should be blocked")
	}

	current = current.Add(time.Minute)
	if !limiter.Allow("user-1") {
		t.Fatal("request in the next window should pass again")
	}
}

func TestMemoryLimiter_SweepsStaleKeys(t *testing.T) {
	limiter, err := NewMemoryFixedWindowLimiter(5, time.Minute)
	if err != nil {
		t.Fatalf("new memory limiter: %v", err)
	}

	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	// One-shot callers (address-keyed anonymous requests) that never
	// return must not pin their counters forever.
	limiter.Allow("1.2.3.4:1000")
	limiter.Allow("1.2.3.5:1000")
	limiter.Allow("user-1")

	current = current.Add(time.Minute)
	limiter.Allow("user-1")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.counts) != 1 {
		t.Errorf("counts holds %d entries after a new window, want 1 (only the returning key)", len(limiter.counts))
	}
	if _, ok := limiter.counts["user-1"]; !ok {
		t.Error("the returning key should still be tracked")
	}
}

func TestMemoryLimiter_RequiresPositiveSettings(t *testing.T) {
	if _, err := NewMemoryFixedWindowLimiter(0, time.Minute); err == nil {
		t.Fatal("expected constructor error for zero limit")
	}
	if _, err := NewMemoryFixedWindowLimiter(1, 0); err == nil {
		t.Fatal("expected constructor error for zero window")
	}
}

func TestRedisLimiter(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(srv.Addr(), "", "test:ratelimit", 2, time.Second)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	if !limiter.Allow("ip-1") {
		t.Fatal("first request should pass")
	}
	if !limiter.Allow("ip-1") {
		t.Fatal("second request should pass")
	}
	if limiter.Allow("ip-1") {
		t.Fatal("third request should be blocked")
	}
}

func TestRedisLimiter_FailsClosed(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(srv.Addr(), "", "test:ratelimit", 1, time.Second)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	srv.Close()
	if limiter.Allow("ip-1") {
		t.Fatal("limiter should fail closed on redis errors")
	}
}

func TestRedisLimiter_RequiresAddr(t *testing.T) {
	limiter, err := NewRedisFixedWindowLimiter("", "", "test:ratelimit", 1, time.Second)
	if err == nil || limiter != nil {
		t.Fatal("expected constructor error for empty redis addr")
	}
}

func TestNilLimiter_Denies(t *testing.T) {
	var limiter *FixedWindowLimiter
	if limiter.Allow("anyone") {
		t.Fatal("a nil limiter must deny, not allow")
	}
}
