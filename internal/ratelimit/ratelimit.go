// Package ratelimit provides a wrapper around golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with convenience methods.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a new rate limiter.
// requestsPerMinute specifies how many requests are allowed per minute.
func New(requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0
	burst := max(requestsPerMinute/10, 1)

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// NewEvery creates a limiter that admits one event per interval, so two
// consecutive events are at least interval apart. A non-positive interval
// never throttles.
func NewEvery(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Group hands out one Limiter per key, created on first use.
type Group struct {
	interval time.Duration
	mu       sync.Mutex
	limiters map[string]*Limiter
}

// NewGroup creates a Group whose limiters space events by interval.
func NewGroup(interval time.Duration) *Group {
	return &Group{
		interval: interval,
		limiters: make(map[string]*Limiter),
	}
}

// Get returns the limiter for key.
func (g *Group) Get(key string) *Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.limiters[key]
	if !ok {
		l = NewEvery(g.interval)
		g.limiters[key] = l
	}
	return l
}

// Wait blocks until key may proceed or ctx is done.
func (g *Group) Wait(ctx context.Context, key string) error {
	return g.Get(key).Wait(ctx)
}
