package app

import (
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
)

type member struct {
	peer *domain.Peer
	conn Conn
}

// room is the per-code session state. mu serializes every mutation and
// every send the mutation causes; methods below assume it is held.
type room struct {
	mu   sync.Mutex
	code domain.RoomCode

	// closed marks a room that emptied and left the registry. A join
	// racing with the final leave sees it and re-creates fresh state
	// instead of resurrecting this one.
	closed bool

	locked   bool
	capacity int
	hostID   domain.PeerID

	members map[domain.PeerID]*member
	order   []domain.PeerID // insertion order, host-succession tie-break

	history     []domain.ChatMessage
	historySize int

	createdAt      time.Time
	lastActivityAt time.Time
}

func newRoom(code domain.RoomCode, capacity, historySize int) *room {
	now := time.Now()
	return &room{
		code:           code,
		capacity:       capacity,
		members:        make(map[domain.PeerID]*member),
		historySize:    historySize,
		createdAt:      now,
		lastActivityAt: now,
	}
}

func (r *room) touch() {
	r.lastActivityAt = time.Now()
}

func (r *room) addMember(m *member) {
	r.members[m.peer.ID] = m
	r.order = append(r.order, m.peer.ID)
	if len(r.members) == 1 {
		r.hostID = m.peer.ID
		m.peer.IsHost = true
	}
	r.touch()
}

// removeMember drops a peer and, when the host left a non-empty room,
// promotes the earliest-joined survivor. Insertion order breaks joinedAt
// ties so succession is deterministic. Returns the removed member and
// the promoted one, if any.
func (r *room) removeMember(id domain.PeerID) (removed, promoted *member) {
	m, ok := r.members[id]
	if !ok {
		return nil, nil
	}
	delete(r.members, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.touch()

	if r.hostID != id || len(r.members) == 0 {
		return m, nil
	}
	next := r.members[r.order[0]]
	for _, pid := range r.order[1:] {
		cand := r.members[pid]
		if cand.peer.JoinedAt.Before(next.peer.JoinedAt) {
			next = cand
		}
	}
	r.hostID = next.peer.ID
	next.peer.IsHost = true
	return m, next
}

// appendMessage pushes onto the recent-message ring, evicting the oldest
// entry past the configured size.
func (r *room) appendMessage(msg domain.ChatMessage) {
	if r.historySize == 0 {
		return
	}
	r.history = append(r.history, msg)
	if len(r.history) > r.historySize {
		r.history = r.history[1:]
	}
	r.touch()
}

// roster copies every member except the excluded id.
func (r *room) roster(exclude domain.PeerID) []domain.Peer {
	out := make([]domain.Peer, 0, len(r.members))
	for _, pid := range r.order {
		if pid == exclude {
			continue
		}
		out = append(out, r.members[pid].peer.Snapshot())
	}
	return out
}

// historyCopy snapshots the buffer for replay to a new joiner.
func (r *room) historyCopy() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(r.history))
	copy(out, r.history)
	return out
}

// broadcast fans an event out to every member except the excluded id.
// Callers hold the room lock, so every member sees the same order. A
// failed send closes that one connection; its read pump turns the close
// into a normal disconnect later.
func (r *room) broadcast(v any, exclude domain.PeerID) {
	for _, pid := range r.order {
		if pid == exclude {
			continue
		}
		m := r.members[pid]
		if err := m.conn.TrySend(v); err != nil {
			m.conn.Close()
		}
	}
}
