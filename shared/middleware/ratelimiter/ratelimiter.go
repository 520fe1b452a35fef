// Package ratelimiter implements per-identity token buckets.
package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/itchan-dev/forum/shared/logger"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter keeps one bucket per identity. Idle buckets are dropped by Sweep.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens per second
	capacity float64
	idle     time.Duration
	now      func() time.Time
}

func New(perMinute float64, burst int, idle time.Duration) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*bucket),
		rate:     perMinute / 60,
		capacity: float64(burst),
		idle:     idle,
		now:      time.Now,
	}
}

// Allow takes a token from identity's bucket.
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[identity]
	if !ok {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[identity] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Sweep removes buckets not touched for longer than the idle period and
// returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for identity, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, identity)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				logger.Log.Debug("rate limiter sweep", "removed", removed)
			}
		}
	}
}
