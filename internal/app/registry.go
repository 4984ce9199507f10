package app

import (
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
)

// registry maps room codes to live rooms. Creation happens on demand
// during join; deletion happens the moment a room empties (immediate
// reclamation — there is no sweep).
type registry struct {
	mu    sync.Mutex
	rooms map[domain.RoomCode]*room
}

func newRegistry() *registry {
	return &registry{rooms: make(map[domain.RoomCode]*room)}
}

func (g *registry) get(code domain.RoomCode) (*room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[code]
	return r, ok
}

func (g *registry) getOrCreate(code domain.RoomCode, capacity, historySize int) *room {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[code]; ok {
		return r
	}
	r := newRoom(code, capacity, historySize)
	g.rooms[code] = r
	return r
}

// deleteIf removes the mapping only while it still points at r, so a
// freshly re-created room under the same code is never torn down by the
// previous room's reclamation.
func (g *registry) deleteIf(code domain.RoomCode, r *room) {
	g.mu.Lock()
	if cur, ok := g.rooms[code]; ok && cur == r {
		delete(g.rooms, code)
	}
	g.mu.Unlock()
}

func (g *registry) exists(code domain.RoomCode) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.rooms[code]
	return ok
}

// snapshot returns the current rooms for stats aggregation.
func (g *registry) snapshot() []*room {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}
