// Package lookup implements the credit-gated vehicle lookup flow:
// cooldown limiter, remote HTTP client, reply formatting and the
// per-request sequencing that ties them to the account store.
package lookup

import (
	"sync"
	"time"
)

// Limiter enforces the per-user cooldown between lookups. It is an
// explicitly owned object constructed at process start and injected into
// the flow, so tests can drive it deterministically. State is process
// memory only and lost on restart; the cooldown is a soft UX throttle,
// not a security control.
type Limiter struct {
	mu       sync.Mutex
	last     map[int64]time.Time
	cooldown time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewLimiter(cooldown time.Duration) *Limiter {
	l := &Limiter{
		last:     make(map[int64]time.Time),
		cooldown: cooldown,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Close stops the background cleanup goroutine. Call on shutdown.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Check reports whether the user may look up now. When the cooldown has
// not elapsed, retryAfter is the remaining wait. Check never mutates
// state; a successful lookup must call Record separately.
func (l *Limiter) Check(userID int64) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.last[userID]
	if !ok {
		return true, 0
	}
	elapsed := l.now().Sub(last)
	if elapsed >= l.cooldown {
		return true, 0
	}
	return false, l.cooldown - elapsed
}

// Record stores now as the user's last lookup time.
func (l *Limiter) Record(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last[userID] = l.now()
}

// cleanup drops expired entries so the map does not grow without bound.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.mu.Lock()
			cutoff := l.now().Add(-l.cooldown)
			for userID, t := range l.last {
				if t.Before(cutoff) {
					delete(l.last, userID)
				}
			}
			l.mu.Unlock()
		}
	}
}
