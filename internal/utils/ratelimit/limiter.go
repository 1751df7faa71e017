// Package ratelimit provides token bucket rate limiting for the admin API.
// Webhook deliveries are never rate limited here; Facebook retries on
// failures and dropping deliveries would lose moderation events.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Limiter is a token bucket for a single client identity.
// Tokens are added at a fixed rate and each request consumes one.
type Limiter struct {
	tokens   float64
	lastTime time.Time
	lastSeen time.Time
	rate     float64
	capacity float64
	mu       sync.Mutex

	// now is replaceable in tests
	now func() time.Time
}

// Rate controls how many requests per second are allowed
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// NewLimiter creates a new rate limiter with the specified rate and burst capacity.
func NewLimiter(rate float64, burst int) *Limiter {
	now := time.Now()
	return &Limiter{
		tokens:   float64(burst),
		lastTime: now,
		lastSeen: now,
		rate:     rate,
		capacity: float64(burst),
		now:      time.Now,
	}
}

// refill adds the tokens earned since the last call; the caller holds mu.
func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastTime).Seconds()
	l.lastTime = now
	l.lastSeen = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}

// Allow reports whether a request may proceed, consuming a token if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens < 1 {
		return false
	}

	l.tokens--
	return true
}

// RetryAfter returns how long until the next token is available.
// Zero means a request would be allowed now.
func (l *Limiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens >= 1 || l.rate <= 0 {
		return 0
	}
	missing := 1 - l.tokens
	return time.Duration(math.Ceil(missing/l.rate*1000)) * time.Millisecond
}

// idleSince reports the last time the limiter was used.
func (l *Limiter) idleSince() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeen
}
