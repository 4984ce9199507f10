// Package domain contains entities without logic, just meta-data.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type PeerID string

// NewPeerID allocates a server-side identifier for one connection.
// Clients never supply their own id.
func NewPeerID() PeerID {
	return PeerID(uuid.NewString())
}

// Peer is one participant's presence inside a room. Media flags are
// client-reported and only ever echoed back out in presence events;
// the server does not enforce them.
type Peer struct {
	ID              PeerID    `json:"id"`
	Name            string    `json:"name"`
	IsHost          bool      `json:"isHost"`
	IsMuted         bool      `json:"isMuted"`
	IsVideoOff      bool      `json:"isVideoOff"`
	IsScreenSharing bool      `json:"isScreenSharing"`
	HandRaised      bool      `json:"handRaised"`
	Speaking        bool      `json:"speaking"`
	JoinedAt        time.Time `json:"-"`
}

// Snapshot copies the broadcastable view of a peer. Roster events carry
// copies so nothing outside the room lock can see later mutations.
func (p *Peer) Snapshot() Peer {
	c := *p
	return c
}
