// Package ratelimit enforces per-client cooldowns on crate actions.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	// Purge kicks in only once the map grows past this many clients, so
	// the common case stays a single map lookup and store.
	purgeThreshold = 10000

	// Entries older than the horizon carry no cooldown information and
	// are dropped during a purge.
	purgeHorizon = time.Hour
)

// ThrottledError reports how long a client must wait before retrying.
type ThrottledError struct {
	RetryAfter int // seconds, rounded up
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled: retry in %ds", e.RetryAfter)
}

// Limiter tracks the last action time per client key for one action class.
// Action classes (submit, like, download) each get their own Limiter; they
// never share state.
type Limiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	lastSeen map[string]time.Time
	now      func() time.Time
}

// New creates a limiter with the given cooldown between actions.
func New(cooldown time.Duration) *Limiter {
	return &Limiter{
		cooldown: cooldown,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow checks whether the client may act now and, if so, records the
// action. The check-then-record sequence is atomic: of two concurrent
// calls for the same key inside the cooldown window, at most one succeeds.
func (l *Limiter) Allow(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.lastSeen[key]; ok {
		if elapsed := now.Sub(last); elapsed < l.cooldown {
			remaining := int(math.Ceil((l.cooldown - elapsed).Seconds()))
			return &ThrottledError{RetryAfter: remaining}
		}
	}
	l.lastSeen[key] = now

	if len(l.lastSeen) > purgeThreshold {
		cutoff := now.Add(-purgeHorizon)
		for k, seen := range l.lastSeen {
			if seen.Before(cutoff) {
				delete(l.lastSeen, k)
			}
		}
	}

	return nil
}
