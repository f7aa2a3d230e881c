package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rentguard/rentguard/internal/services"
)

// attemptLimiter throttles failed sign-ins. Failures are counted per client
// address and per account, so neither rotating emails from one address nor
// spreading guesses for one account across addresses escapes the window.
type attemptLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	failures map[string][]time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:    limit,
		window:   window,
		failures: make(map[string][]time.Time),
	}
}

// blocked reports whether any key is over the limit and, if so, how long
// until the oldest counted failure of the worst key expires.
func (limiter *attemptLimiter) blocked(keys []string, now time.Time) (bool, time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	var wait time.Duration
	for _, key := range keys {
		recent := limiter.recentLocked(key, now)
		if len(recent) < limiter.limit {
			continue
		}
		wait = max(wait, recent[len(recent)-limiter.limit].Add(limiter.window).Sub(now), time.Second)
	}
	return wait > 0, wait
}

func (limiter *attemptLimiter) recordFailure(keys []string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for _, key := range keys {
		limiter.failures[key] = append(limiter.recentLocked(key, now), now)
	}
}

func (limiter *attemptLimiter) reset(keys []string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for _, key := range keys {
		delete(limiter.failures, key)
	}
}

func (limiter *attemptLimiter) recentLocked(key string, now time.Time) []time.Time {
	threshold := now.Add(-limiter.window)
	kept := limiter.failures[key][:0]
	for _, failedAt := range limiter.failures[key] {
		if failedAt.After(threshold) {
			kept = append(kept, failedAt)
		}
	}
	if len(kept) == 0 {
		delete(limiter.failures, key)
		return nil
	}
	limiter.failures[key] = kept
	return kept
}

func loginLimiterKeys(c *fiber.Ctx, email string) []string {
	address := strings.TrimSpace(c.IP())
	if address == "" {
		address = "unknown"
	}
	keys := []string{"ip:" + address}
	if normalized := services.NormalizeAuthEmail(email); normalized != "" {
		keys = append(keys, "email:"+normalized)
	}
	return keys
}
