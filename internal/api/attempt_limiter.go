package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	resetAttemptLimit  = 3
	resetAttemptWindow = 15 * time.Minute
)

// attemptLimiter is a sliding-window counter kept in process memory.
type attemptLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	attempts  map[string][]time.Time
	lastSweep time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:    limit,
		window:   window,
		attempts: make(map[string][]time.Time),
	}
}

// allow records an attempt for key unless the window is already full. When
// refused it returns how long until the oldest attempt leaves the window.
func (limiter *attemptLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.sweepLocked(now)
	pruned := limiter.pruneLocked(key, now)
	if len(pruned) >= limiter.limit {
		return false, pruned[0].Add(limiter.window).Sub(now)
	}
	limiter.attempts[key] = append(pruned, now)
	return true, 0
}

// sweepLocked drops expired keys at most once per window, so keys that never
// come back do not accumulate.
func (limiter *attemptLimiter) sweepLocked(now time.Time) {
	if now.Sub(limiter.lastSweep) < limiter.window {
		return
	}
	limiter.lastSweep = now
	for key := range limiter.attempts {
		limiter.pruneLocked(key, now)
	}
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time) []time.Time {
	values := limiter.attempts[key]
	if len(values) == 0 {
		return nil
	}

	threshold := now.Add(-limiter.window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(limiter.attempts, key)
		return nil
	}
	limiter.attempts[key] = pruned
	return pruned
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
