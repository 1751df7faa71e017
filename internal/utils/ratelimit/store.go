package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCategory is used when a category has no rate of its own.
const DefaultCategory = "default"

// Store manages rate limiters for multiple clients and categories.
type Store struct {
	limiters map[string]*Limiter
	rates    map[string]Rate
	mu       sync.RWMutex

	// idleExpiry is how long an unused limiter is kept
	idleExpiry time.Duration
}

// NewStore creates a new store for managing rate limiters.
//
// Parameters:
//   - defaultRate: The default rate limit for clients
//   - idleExpiry: How long an unused client limiter is retained
func NewStore(defaultRate Rate, idleExpiry time.Duration) *Store {
	return &Store{
		limiters:   make(map[string]*Limiter),
		rates:      map[string]Rate{DefaultCategory: defaultRate},
		idleExpiry: idleExpiry,
	}
}

// GetLimiter returns the limiter for a client within a category,
// creating it from the category's rate on first use.
func (s *Store) GetLimiter(clientID, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.RLock()
	limiter, exists := s.limiters[key]
	s.mu.RUnlock()
	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have created it while we waited for the lock
	if limiter, exists = s.limiters[key]; exists {
		return limiter
	}

	rate, ok := s.rates[category]
	if !ok {
		rate = s.rates[DefaultCategory]
	}

	limiter = NewLimiter(rate.RequestsPerSecond, rate.Burst)
	s.limiters[key] = limiter
	return limiter
}

// SetRate sets a rate limit for a specific category.
func (s *Store) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

// Len returns the number of tracked limiters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// RunCleanup evicts idle limiters every interval until ctx is cancelled.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(time.Now())
		}
	}
}

// cleanup removes limiters that have not been used since now - idleExpiry.
func (s *Store) cleanup(now time.Time) {
	cutoff := now.Add(-s.idleExpiry)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, limiter := range s.limiters {
		if limiter.idleSince().Before(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}

	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(s.limiters)).Msg("Evicted idle rate limiters")
	}
}
