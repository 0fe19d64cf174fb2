package auth

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter throttles failed logins per client IP and email. Each key
// holds a token bucket of MaxAttempts tokens that refills over
// WindowDuration; a failure spends one token.
type RateLimiter struct {
	mu              sync.Mutex
	limiters        map[string]*attemptBucket
	maxAttempts     int
	windowDuration  time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

type attemptBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Failed attempts allowed in a burst (default: 5)
	WindowDuration  time.Duration // Time to refill the full burst (default: 15m)
	CleanupInterval time.Duration // How often to drop idle keys (default: 5m)
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = defaults.WindowDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}

	rl := &RateLimiter{
		limiters:        make(map[string]*attemptBucket),
		maxAttempts:     cfg.MaxAttempts,
		windowDuration:  cfg.WindowDuration,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func makeKey(ip, email string) string {
	return ip + ":" + strings.ToLower(email)
}

// Allow reports whether another login attempt may proceed, and if not, how
// long until one will.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	bucket, exists := rl.limiters[makeKey(ip, email)]
	rl.mu.Unlock()
	if !exists {
		return true, 0
	}

	if bucket.limiter.TokensAt(now) >= 1 {
		return true, 0
	}
	r := bucket.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

// RecordFailure spends one attempt for the key.
func (rl *RateLimiter) RecordFailure(ip, email string) {
	now := rl.now()
	key := makeKey(ip, email)

	rl.mu.Lock()
	bucket, exists := rl.limiters[key]
	if !exists {
		every := rl.windowDuration / time.Duration(rl.maxAttempts)
		bucket = &attemptBucket{limiter: rate.NewLimiter(rate.Every(every), rl.maxAttempts)}
		rl.limiters[key] = bucket
	}
	bucket.lastSeen = now
	rl.mu.Unlock()

	bucket.limiter.AllowN(now, 1)
}

// RecordSuccess clears the failure record for a successful login.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	delete(rl.limiters, makeKey(ip, email))
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup drops keys idle long enough to have fully refilled.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.windowDuration)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, bucket := range rl.limiters {
		if bucket.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// abortTooManyAttempts writes the 429 response.
func abortTooManyAttempts(c *gin.Context, retryAfter time.Duration) {
	seconds := int(retryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "too many login attempts",
		"code":        "too_many_requests",
		"retry_after": retryAfter.Round(time.Second).String(),
	})
}
