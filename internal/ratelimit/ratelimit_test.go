package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLimiter_RejectsPastCap(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := New(clk, time.Minute, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("c1") {
			t.Fatalf("event %d should be allowed", i)
		}
	}
	if l.Allow("c1") {
		t.Fatalf("4th event in window should be rejected")
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := New(clk, time.Minute, 2)

	l.Allow("c1")
	l.Allow("c1")
	if l.Allow("c1") {
		t.Fatalf("expected rejection at cap")
	}

	clk.Advance(time.Minute + time.Second)
	if !l.Allow("c1") {
		t.Fatalf("expected fresh window after expiry")
	}
	if !l.Allow("c1") {
		t.Fatalf("fresh window should hold a second event")
	}
	if l.Allow("c1") {
		t.Fatalf("fresh window should reject at cap again")
	}
}

func TestLimiter_ConnectionsAreIndependent(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := New(clk, time.Minute, 1)

	if !l.Allow("c1") {
		t.Fatalf("c1 first event should pass")
	}
	if l.Allow("c1") {
		t.Fatalf("c1 second event should be rejected")
	}
	if !l.Allow("c2") {
		t.Fatalf("c2 must not be affected by c1's window")
	}
}

func TestLimiter_Forget(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := New(clk, time.Minute, 1)

	l.Allow("c1")
	if l.Len() != 1 {
		t.Fatalf("expected one tracked entry, got %d", l.Len())
	}
	l.Forget("c1")
	if l.Len() != 0 {
		t.Fatalf("expected entry purged on disconnect, got %d", l.Len())
	}
	if !l.Allow("c1") {
		t.Fatalf("forgotten connection starts a fresh window")
	}
}
