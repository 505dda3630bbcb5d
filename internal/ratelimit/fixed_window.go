// Package ratelimit provides fixed-window admission control for the
// explain endpoint.
//
// FIXED WINDOW:
// Time is cut into equal windows (e.g. one minute). Each key gets a
// counter per window; once the counter passes the limit, further requests
// are rejected until the next window starts. Simple, predictable, and
// plenty for capping LLM spend per user.
//
// Two modes behind one type:
//   - in-memory (default): a mutex-guarded map. Correct for a single
//     server process, which is how this app deploys.
//   - Redis (when an address is configured): the counter lives in Redis,
//     so multiple replicas share one quota. Fails closed on Redis errors —
//     an unreachable limiter must not become an unlimited one.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// FixedWindowLimiter limits requests per key in a fixed time window.
type FixedWindowLimiter struct {
	limit  int
	window time.Duration

	// in-memory mode
	mu        sync.Mutex
	counts    map[string]*windowCount
	sweptSlot int64            // last window slot stale entries were swept for
	now       func() time.Time // injectable clock for tests

	// redis mode (nil when in-memory)
	redisClient *redis.Client
	redisPrefix string
}

type windowCount struct {
	slot  int64
	count int
}

// NewMemoryFixedWindowLimiter creates a process-local limiter.
func NewMemoryFixedWindowLimiter(limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		counts: make(map[string]*windowCount),
		now:    time.Now,
	}, nil
}

// NewRedisFixedWindowLimiter creates a Redis-backed distributed limiter.
func NewRedisFixedWindowLimiter(addr, password, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "codeinsight:ratelimit"
	}
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		redisClient: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		redisPrefix: prefix,
	}, nil
}

// Allow returns true when the key is within quota for the current window.
func (l *FixedWindowLimiter) Allow(key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	if l.redisClient != nil {
		return l.allowRedis(key)
	}
	return l.allowMemory(key)
}

func (l *FixedWindowLimiter) allowMemory(key string) bool {
	slot := l.now().UTC().UnixMilli() / l.window.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Keys that never return (address-keyed anonymous callers) would
	// otherwise pin their counters forever, so each new window sweeps
	// every stale entry while the lock is held.
	if slot != l.sweptSlot {
		for k, wc := range l.counts {
			if wc.slot != slot {
				delete(l.counts, k)
			}
		}
		l.sweptSlot = slot
	}

	wc, ok := l.counts[key]
	if !ok || wc.slot != slot {
		// New key or new window: old counters for this key are stale.
		l.counts[key] = &windowCount{slot: slot, count: 1}
		return l.limit >= 1
	}
	wc.count++
	return wc.count <= l.limit
}

// allowRedis runs INCR+PEXPIRE atomically via a Lua script.
// On Redis failures it fails closed and returns false.
func (l *FixedWindowLimiter) allowRedis(key string) bool {
	windowMs := l.window.Milliseconds()
	windowSlot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.redisPrefix, key, windowSlot)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := fixedWindowScript.Run(ctx, l.redisClient, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false
	}
	return res <= int64(l.limit)
}
