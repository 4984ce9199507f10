package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/domain"
)

// Inbound events are decoded exactly once here, into a dedicated struct
// per type, before anything reaches the session manager. Malformed
// input is a protocol violation: dropped with a log line, never an
// error back to the client.

type envelope struct {
	Type string `json:"type"`
}

type joinPayload struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

type signalPayload struct {
	Target  domain.PeerID   `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

type chatPayload struct {
	Text string `json:"text"`
}

type reactionPayload struct {
	Emoji string `json:"emoji"`
}

type statusPayload struct {
	Action string `json:"action"`
	Value  bool   `json:"value"`
}

type lockRoomPayload struct {
	Value bool `json:"value"`
}

type mutePeerPayload struct {
	Target domain.PeerID `json:"target"`
}

type mediaStatePayload struct {
	IsMuted         bool `json:"isMuted"`
	IsVideoOff      bool `json:"isVideoOff"`
	IsScreenSharing bool `json:"isScreenSharing"`
}

type assistantPayload struct {
	Question string `json:"question"`
}

func decode[T any](c *wsConn, data []byte, out *T) bool {
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("peer", c.id).Msg("bad payload, dropped")
		return false
	}
	return true
}

func (ctl *Controller) dispatch(c *wsConn, data []byte) {
	var env envelope
	if !decode(c, data, &env) {
		return
	}

	switch env.Type {
	case "join":
		var p joinPayload
		if decode(c, data, &p) {
			ctl.Mgr.Join(c, p.RoomCode, p.DisplayName)
		}
	case "leave":
		ctl.Mgr.Leave(c.id)
	case "offer", "answer", "ice-candidate":
		var p signalPayload
		if decode(c, data, &p) {
			ctl.Mgr.RelaySignal(c, env.Type, p.Target, p.Payload)
		}
	case "chat":
		var p chatPayload
		if decode(c, data, &p) {
			ctl.Mgr.Chat(c, p.Text)
		}
	case "reaction":
		var p reactionPayload
		if decode(c, data, &p) {
			ctl.Mgr.Reaction(c, p.Emoji)
		}
	case "status":
		var p statusPayload
		if decode(c, data, &p) {
			ctl.Mgr.Status(c, p.Action, p.Value)
		}
	case "lock-room":
		var p lockRoomPayload
		if decode(c, data, &p) {
			ctl.Mgr.SetLock(c, p.Value)
		}
	case "mute-peer":
		var p mutePeerPayload
		if decode(c, data, &p) {
			ctl.Mgr.MutePeer(c, p.Target)
		}
	case "media-state":
		var p mediaStatePayload
		if decode(c, data, &p) {
			ctl.Mgr.MediaState(c, p.IsMuted, p.IsVideoOff, p.IsScreenSharing)
		}
	case "assistant":
		var p assistantPayload
		if decode(c, data, &p) {
			ctl.Mgr.AskAssistant(c, p.Question)
		}
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event type")
	}
}
