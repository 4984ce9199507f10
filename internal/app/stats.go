package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Stats are the global presence counts derived from the registry.
type Stats struct {
	Rooms int `json:"rooms"`
	Peers int `json:"peers"`
}

func (m *Manager) Stats() Stats {
	var s Stats
	for _, r := range m.rooms.snapshot() {
		r.mu.Lock()
		n := len(r.members)
		closed := r.closed
		r.mu.Unlock()
		if closed {
			continue
		}
		s.Rooms++
		s.Peers += n
	}
	return s
}

// BroadcastStats pushes the current counts to every live connection,
// joined or not.
func (m *Manager) BroadcastStats() {
	s := m.Stats()
	evt := statsEvent{Type: evtStats, Rooms: s.Rooms, Peers: s.Peers}

	m.mu.Lock()
	conns := make([]Conn, 0, len(m.conns))
	for _, st := range m.conns {
		conns = append(conns, st.conn)
	}
	m.mu.Unlock()

	for _, c := range conns {
		if err := c.TrySend(evt); err != nil {
			c.Close()
		}
	}
}

// Run emits periodic stats broadcasts until ctx is canceled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.stats").Msg("stats broadcaster stopped")
			return
		case <-t.C:
			m.BroadcastStats()
		}
	}
}
