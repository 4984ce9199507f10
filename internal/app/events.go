package app

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/domain"
)

// Outbound event catalog. Every event carries a discriminating Type so
// clients can switch on it; field sets are fixed per type.

const (
	evtJoined      = "joined"
	evtHistory     = "chat-history"
	evtPeerJoined  = "peer-joined"
	evtPeerLeft    = "peer-left"
	evtHostChanged = "host-changed"
	evtYouAreHost  = "you-are-host"
	evtChatMessage = "chat-message"
	evtLockChanged = "lock-changed"
	evtForceMute   = "force-mute"
	evtReaction    = "reaction"
	evtStatus      = "status"
	evtMediaState  = "media-state"
	evtStats       = "stats"
	evtError       = "error"
)

type joinedEvent struct {
	Type     string        `json:"type"`
	Room     string        `json:"room"`
	PeerID   domain.PeerID `json:"peerId"`
	IsHost   bool          `json:"isHost"`
	Locked   bool          `json:"locked"`
	Capacity int           `json:"capacity"`
	Peers    []domain.Peer `json:"peers"`
}

type historyEvent struct {
	Type     string               `json:"type"`
	Messages []domain.ChatMessage `json:"messages"`
}

type peerJoinedEvent struct {
	Type string      `json:"type"`
	Peer domain.Peer `json:"peer"`
}

type peerLeftEvent struct {
	Type   string        `json:"type"`
	PeerID domain.PeerID `json:"peerId"`
	Name   string        `json:"name"`
}

type hostChangedEvent struct {
	Type   string        `json:"type"`
	HostID domain.PeerID `json:"hostId"`
	Name   string        `json:"name"`
}

type youAreHostEvent struct {
	Type string `json:"type"`
}

type chatMessageEvent struct {
	Type    string             `json:"type"`
	Message domain.ChatMessage `json:"message"`
}

type lockChangedEvent struct {
	Type   string        `json:"type"`
	Locked bool          `json:"locked"`
	ByID   domain.PeerID `json:"by"`
}

type forceMuteEvent struct {
	Type string        `json:"type"`
	ByID domain.PeerID `json:"by"`
}

type reactionEvent struct {
	Type  string        `json:"type"`
	From  domain.PeerID `json:"from"`
	Name  string        `json:"name"`
	Emoji string        `json:"emoji"`
}

type statusEvent struct {
	Type   string        `json:"type"`
	From   domain.PeerID `json:"from"`
	Action string        `json:"action"`
	Value  bool          `json:"value"`
}

type mediaStateEvent struct {
	Type            string        `json:"type"`
	From            domain.PeerID `json:"from"`
	IsMuted         bool          `json:"isMuted"`
	IsVideoOff      bool          `json:"isVideoOff"`
	IsScreenSharing bool          `json:"isScreenSharing"`
}

// signalEvent forwards an opaque negotiation payload. Type repeats the
// inbound kind: offer, answer or ice-candidate.
type signalEvent struct {
	Type    string          `json:"type"`
	From    domain.PeerID   `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type statsEvent struct {
	Type  string `json:"type"`
	Rooms int    `json:"rooms"`
	Peers int    `json:"peers"`
}

type errorEvent struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Capacity int    `json:"capacity,omitempty"`
}
