package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/ratelimit"
)

// fakeConn records every event the manager sends so tests can assert on
// exact content and order.
type fakeConn struct {
	id string

	mu       sync.Mutex
	events   []any
	failSend bool
	closed   bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) TrySend(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("send buffer full")
	}
	c.events = append(c.events, v)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) all() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}

// countOf counts recorded events matching the predicate.
func countOf[T any](c *fakeConn, pred func(T) bool) int {
	n := 0
	for _, e := range c.all() {
		if v, ok := e.(T); ok && pred(v) {
			n++
		}
	}
	return n
}

// firstOf returns the first recorded event of type T.
func firstOf[T any](t *testing.T, c *fakeConn) T {
	t.Helper()
	for _, e := range c.all() {
		if v, ok := e.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no event of type %T recorded on %s", zero, c.id)
	return zero
}

func hasEvent[T any](c *fakeConn, pred func(T) bool) bool {
	return countOf(c, pred) > 0
}

// waitFor polls until cond holds or the deadline passes. Used for the
// assistant path, which completes on its own goroutine.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

type fakeAssistant struct {
	reply string
	err   error
}

func (a *fakeAssistant) Ask(_ context.Context, _ string) (string, error) {
	return a.reply, a.err
}

func testOptions() Options {
	return Options{
		RoomCapacity:  8,
		HistorySize:   100,
		MaxNameLen:    32,
		MaxMessageLen: 500,
	}
}

func newTestManager(opts Options, bot Assistant) *Manager {
	limiter := ratelimit.New(ratelimit.RealClock{}, time.Minute, 100000)
	return NewManager(opts, limiter, bot)
}

// joinPeer registers a fresh connection and joins it to the room.
func joinPeer(t *testing.T, m *Manager, id, room, name string) *fakeConn {
	t.Helper()
	c := newFakeConn(id)
	m.Register(c)
	m.Join(c, room, name)
	return c
}

func lastReject(t *testing.T, c *fakeConn) errorEvent {
	t.Helper()
	evts := c.all()
	for i := len(evts) - 1; i >= 0; i-- {
		if v, ok := evts[i].(errorEvent); ok {
			return v
		}
	}
	t.Fatalf("no error event recorded on %s", c.id)
	return errorEvent{}
}
