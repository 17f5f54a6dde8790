// Package ratelimit throttles sensitive actions (login, registration,
// checkout, payment) with a sliding attempt window kept in process memory.
// Restarting the process clears all recorded attempts.
package ratelimit

import (
	"sync"
	"time"
)

type Policy struct {
	Window      time.Duration
	MaxAttempts int
}

type Limiter struct {
	mu       sync.Mutex
	policy   Policy
	attempts map[string][]time.Time
	now      func() time.Time
}

func New(p Policy) *Limiter {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	return &Limiter{
		policy:   p,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow prunes attempts older than the window for key, then records a new
// attempt and returns true only if fewer than MaxAttempts remain. A denied
// call records nothing. The whole read-prune-decide-record sequence runs
// under the lock, so a call can never double-count against itself.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.prune(key, now)
	if len(kept) >= l.policy.MaxAttempts {
		l.attempts[key] = kept
		return false
	}
	l.attempts[key] = append(kept, now)
	return true
}

// Reset forgets every recorded attempt for key. Called after a successful
// login so earlier failures stop counting.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// TimeUntilReset reports how long until the oldest unexpired attempt falls
// out of the window, i.e. until Allow would next return true if no further
// attempts are made. Zero means the action is allowed right now.
func (l *Limiter) TimeUntilReset(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.prune(key, now)
	l.attempts[key] = kept
	if len(kept) < l.policy.MaxAttempts {
		return 0
	}
	return kept[0].Add(l.policy.Window).Sub(now)
}

func (l *Limiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.policy.Window)
	all := l.attempts[key]
	i := 0
	for i < len(all) && !all[i].After(cutoff) {
		i++
	}
	return all[i:]
}
