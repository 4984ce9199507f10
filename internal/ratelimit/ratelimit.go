// Package ratelimit implements the per-connection inbound event limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Clock lets tests drive time deterministically.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type window struct {
	start time.Time
	count int
}

// Limiter tracks a fixed window per connection id: the first event in a
// window starts it, events past maxEvents within the window are rejected.
type Limiter struct {
	mu      sync.Mutex
	clock   Clock
	window  time.Duration
	max     int
	entries map[string]*window
}

func New(clock Clock, windowDur time.Duration, maxEvents int) *Limiter {
	if clock == nil {
		clock = RealClock{}
	}
	return &Limiter{
		clock:   clock,
		window:  windowDur,
		max:     maxEvents,
		entries: make(map[string]*window),
	}
}

// Allow records one inbound event for id and reports whether it is
// within the window budget.
func (l *Limiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	w, ok := l.entries[id]
	if !ok || now.Sub(w.start) > l.window {
		l.entries[id] = &window{start: now, count: 1}
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	return true
}

// Forget drops the entry for a disconnected connection.
func (l *Limiter) Forget(id string) {
	l.mu.Lock()
	delete(l.entries, id)
	l.mu.Unlock()
}

// Len reports the number of tracked connections.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
