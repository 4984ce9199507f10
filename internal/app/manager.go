package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/ratelimit"
	"github.com/dkeye/Huddle/internal/sanitize"
)

// Assistant is the optional text-generation collaborator. Calls happen
// on their own goroutine and never hold any room lock.
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

type Options struct {
	RoomCapacity  int
	HistorySize   int
	MaxNameLen    int
	MaxMessageLen int
}

type connState struct {
	conn   Conn
	peerID domain.PeerID
	room   domain.RoomCode // empty while not joined
}

// Manager is the room session authority: it owns the registry, routes
// every inbound event and produces every outbound one.
type Manager struct {
	opts      Options
	limiter   *ratelimit.Limiter
	assistant Assistant
	rooms     *registry

	mu    sync.Mutex
	conns map[string]*connState
}

func NewManager(opts Options, limiter *ratelimit.Limiter, assistant Assistant) *Manager {
	return &Manager{
		opts:      opts,
		limiter:   limiter,
		assistant: assistant,
		rooms:     newRegistry(),
		conns:     make(map[string]*connState),
	}
}

// Register binds a new connection. The peer id is the server-generated
// connection id: stable for the connection's lifetime, never reused.
func (m *Manager) Register(conn Conn) {
	m.mu.Lock()
	m.conns[conn.ID()] = &connState{conn: conn, peerID: domain.PeerID(conn.ID())}
	m.mu.Unlock()
	log.Info().Str("module", "app.session").Str("peer", conn.ID()).Msg("connection registered")
}

// Disconnect runs the full cleanup for a closed connection. Safe to call
// after an explicit leave already ran; the leave itself is idempotent.
func (m *Manager) Disconnect(connID string) {
	m.Leave(connID)
	m.mu.Lock()
	delete(m.conns, connID)
	m.mu.Unlock()
	m.limiter.Forget(connID)
	log.Info().Str("module", "app.session").Str("peer", connID).Msg("connection gone")
}

func (m *Manager) state(connID string) (*connState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.conns[connID]
	return st, ok
}

// gate applies the per-connection rate limit and surfaces RATE_LIMITED
// to the offender only.
func (m *Manager) gate(conn Conn) bool {
	if m.limiter.Allow(conn.ID()) {
		return true
	}
	m.reject(conn, domain.ErrRateLimited)
	return false
}

func (m *Manager) reject(conn Conn, rej *domain.Reject) {
	_ = conn.TrySend(errorEvent{Type: evtError, Code: rej.Code, Message: rej.Message})
}

// Join admits a connection into the room named by codeRaw, creating the
// room on first use. Side effects are strictly ordered under the room
// lock: private ack with the roster, history replay, peer-joined to the
// others, then the system chat line to everyone.
func (m *Manager) Join(conn Conn, codeRaw, nameRaw string) {
	if !m.gate(conn) {
		return
	}
	st, ok := m.state(conn.ID())
	if !ok {
		return
	}
	if st.room != "" {
		m.reject(conn, domain.ErrAlreadyJoined)
		return
	}

	code := domain.RoomCode(strings.ToUpper(strings.TrimSpace(codeRaw)))
	if !sanitize.ValidRoomCode(string(code)) {
		m.reject(conn, domain.ErrInvalidRoomCode)
		return
	}
	name, err := sanitize.DisplayName(nameRaw, m.opts.MaxNameLen)
	if err != nil {
		var rej *domain.Reject
		if errors.As(err, &rej) {
			m.reject(conn, rej)
		}
		return
	}

	for {
		r := m.rooms.getOrCreate(code, m.opts.RoomCapacity, m.opts.HistorySize)
		r.mu.Lock()
		if r.closed {
			// Lost the race against the last leave; drop the stale
			// mapping and create a fresh room.
			r.mu.Unlock()
			m.rooms.deleteIf(code, r)
			continue
		}
		if r.locked && len(r.members) > 0 {
			r.mu.Unlock()
			m.reject(conn, domain.ErrRoomLocked)
			return
		}
		if len(r.members) >= r.capacity {
			capacity := r.capacity
			r.mu.Unlock()
			_ = conn.TrySend(errorEvent{
				Type:     evtError,
				Code:     domain.ErrRoomFull.Code,
				Message:  domain.ErrRoomFull.Message,
				Capacity: capacity,
			})
			return
		}

		peer := &domain.Peer{ID: st.peerID, Name: name, JoinedAt: time.Now()}
		mem := &member{peer: peer, conn: conn}
		r.addMember(mem)

		m.mu.Lock()
		st.room = code
		m.mu.Unlock()

		ack := joinedEvent{
			Type:     evtJoined,
			Room:     string(code),
			PeerID:   peer.ID,
			IsHost:   peer.IsHost,
			Locked:   r.locked,
			Capacity: r.capacity,
			Peers:    r.roster(peer.ID),
		}
		if err := conn.TrySend(ack); err != nil {
			conn.Close()
		}
		if err := conn.TrySend(historyEvent{Type: evtHistory, Messages: r.historyCopy()}); err != nil {
			conn.Close()
		}
		r.broadcast(peerJoinedEvent{Type: evtPeerJoined, Peer: peer.Snapshot()}, peer.ID)

		sys := domain.NewSystemMessage(name + " joined")
		r.appendMessage(sys)
		r.broadcast(chatMessageEvent{Type: evtChatMessage, Message: sys}, "")
		r.mu.Unlock()

		log.Info().Str("module", "app.session").
			Str("room", string(code)).Str("peer", string(peer.ID)).
			Bool("host", peer.IsHost).Msg("peer joined")
		return
	}
}

// Leave removes the connection from whatever room it is in. It is a
// no-op for connections that are not members, which makes the explicit
// leave / disconnect race harmless.
func (m *Manager) Leave(connID string) {
	m.mu.Lock()
	st, ok := m.conns[connID]
	if !ok || st.room == "" {
		m.mu.Unlock()
		return
	}
	code := st.room
	peerID := st.peerID
	st.room = ""
	m.mu.Unlock()

	r, ok := m.rooms.get(code)
	if !ok {
		return
	}
	r.mu.Lock()
	removed, promoted := r.removeMember(peerID)
	if removed == nil {
		r.mu.Unlock()
		return
	}
	if promoted != nil {
		if err := promoted.conn.TrySend(youAreHostEvent{Type: evtYouAreHost}); err != nil {
			promoted.conn.Close()
		}
		r.broadcast(hostChangedEvent{
			Type:   evtHostChanged,
			HostID: promoted.peer.ID,
			Name:   promoted.peer.Name,
		}, "")
	}
	r.broadcast(peerLeftEvent{Type: evtPeerLeft, PeerID: peerID, Name: removed.peer.Name}, "")
	sys := domain.NewSystemMessage(removed.peer.Name + " left")
	r.appendMessage(sys)
	r.broadcast(chatMessageEvent{Type: evtChatMessage, Message: sys}, "")

	empty := len(r.members) == 0
	if empty {
		r.closed = true
	}
	r.mu.Unlock()

	if empty {
		m.rooms.deleteIf(code, r)
		log.Info().Str("module", "app.session").Str("room", string(code)).Msg("room reclaimed")
	}
	log.Info().Str("module", "app.session").
		Str("room", string(code)).Str("peer", string(peerID)).Msg("peer left")
}

// signalKinds are the relayable negotiation payload types.
var signalKinds = map[string]bool{
	"offer":         true,
	"answer":        true,
	"ice-candidate": true,
}

// RelaySignal forwards an opaque payload to one peer in the sender's
// room. A missing target is an expected race and drops silently.
func (m *Manager) RelaySignal(conn Conn, kind string, target domain.PeerID, payload json.RawMessage) {
	if !m.gate(conn) {
		return
	}
	if !signalKinds[kind] || target == "" || len(payload) == 0 {
		return
	}
	st, ok := m.state(conn.ID())
	if !ok || st.room == "" {
		return
	}
	r, ok := m.rooms.get(st.room)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, stillMember := r.members[st.peerID]; !stillMember {
		return
	}
	t, ok := r.members[target]
	if !ok {
		log.Debug().Str("module", "app.session").
			Str("room", string(st.room)).Str("target", string(target)).
			Msg("signal target already gone, dropped")
		return
	}
	if err := t.conn.TrySend(signalEvent{Type: kind, From: st.peerID, Payload: payload}); err != nil {
		t.conn.Close()
	}
}

// Chat validates a chat line, records it in the room's recent history
// and fans it out to everyone but the sender.
func (m *Manager) Chat(conn Conn, raw string) {
	if !m.gate(conn) {
		return
	}
	st, ok := m.state(conn.ID())
	if !ok {
		return
	}
	if st.room == "" {
		m.reject(conn, domain.ErrRoomNotFound)
		return
	}
	text, err := sanitize.ChatText(raw, m.opts.MaxMessageLen)
	if err != nil {
		var rej *domain.Reject
		if errors.As(err, &rej) {
			m.reject(conn, rej)
		}
		return
	}
	r, ok := m.rooms.get(st.room)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	mem, ok := r.members[st.peerID]
	if !ok {
		return
	}
	msg := domain.ChatMessage{
		ID:         domain.NewMessageID(),
		SenderID:   st.peerID,
		SenderName: mem.peer.Name,
		Text:       text,
		SentAt:     time.Now(),
	}
	r.appendMessage(msg)
	r.broadcast(chatMessageEvent{Type: evtChatMessage, Message: msg}, st.peerID)
}

// SetLock is a host-only control. Non-host requests are ignored without
// an error so host status cannot be probed.
func (m *Manager) SetLock(conn Conn, locked bool) {
	if !m.gate(conn) {
		return
	}
	st, r := m.memberRoom(conn.ID())
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hostID != st.peerID {
		return
	}
	if _, ok := r.members[st.peerID]; !ok {
		return
	}
	r.locked = locked
	r.touch()
	r.broadcast(lockChangedEvent{Type: evtLockChanged, Locked: locked, ByID: st.peerID}, "")
	log.Info().Str("module", "app.session").
		Str("room", string(r.code)).Bool("locked", locked).Msg("lock state changed")
}

// MutePeer delivers a private mute directive to the target. The server
// never flips the target's own muted flag; only the target's next
// media-state report does that.
func (m *Manager) MutePeer(conn Conn, target domain.PeerID) {
	if !m.gate(conn) {
		return
	}
	st, r := m.memberRoom(conn.ID())
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hostID != st.peerID {
		return
	}
	t, ok := r.members[target]
	if !ok {
		return
	}
	if err := t.conn.TrySend(forceMuteEvent{Type: evtForceMute, ByID: st.peerID}); err != nil {
		t.conn.Close()
	}
}

// reactionAllowList bounds reaction payloads to known symbols; anything
// else drops silently.
var reactionAllowList = map[string]bool{
	"👍": true,
	"👎": true,
	"❤️": true,
	"😂": true,
	"😮": true,
	"🎉": true,
	"👏": true,
	"🙋": true,
}

// Reaction broadcasts an ephemeral emoji to everyone but the sender.
func (m *Manager) Reaction(conn Conn, emoji string) {
	if !m.gate(conn) {
		return
	}
	if !reactionAllowList[emoji] {
		return
	}
	st, r := m.memberRoom(conn.ID())
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	mem, ok := r.members[st.peerID]
	if !ok {
		return
	}
	r.touch()
	r.broadcast(reactionEvent{
		Type:  evtReaction,
		From:  st.peerID,
		Name:  mem.peer.Name,
		Emoji: emoji,
	}, st.peerID)
}

// Status updates an ephemeral peer flag (hand raised, speaking) and
// broadcasts it to the rest of the room.
func (m *Manager) Status(conn Conn, action string, value bool) {
	if !m.gate(conn) {
		return
	}
	st, r := m.memberRoom(conn.ID())
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	mem, ok := r.members[st.peerID]
	if !ok {
		return
	}
	switch action {
	case "hand-raised":
		mem.peer.HandRaised = value
	case "speaking":
		mem.peer.Speaking = value
	default:
		return
	}
	r.touch()
	r.broadcast(statusEvent{Type: evtStatus, From: st.peerID, Action: action, Value: value}, st.peerID)
}

// MediaState records the peer's self-reported media flags and broadcasts
// the presence update. These flags are informational only.
func (m *Manager) MediaState(conn Conn, muted, videoOff, screenSharing bool) {
	if !m.gate(conn) {
		return
	}
	st, r := m.memberRoom(conn.ID())
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	mem, ok := r.members[st.peerID]
	if !ok {
		return
	}
	mem.peer.IsMuted = muted
	mem.peer.IsVideoOff = videoOff
	mem.peer.IsScreenSharing = screenSharing
	r.touch()
	r.broadcast(mediaStateEvent{
		Type:            evtMediaState,
		From:            st.peerID,
		IsMuted:         muted,
		IsVideoOff:      videoOff,
		IsScreenSharing: screenSharing,
	}, st.peerID)
}

// AskAssistant fires the text-generation collaborator on its own
// goroutine; the reply (or a single bot error line) comes back later as
// an ordinary broadcast chat message. Room processing never waits on it.
func (m *Manager) AskAssistant(conn Conn, raw string) {
	if !m.gate(conn) {
		return
	}
	st, r := m.memberRoom(conn.ID())
	if r == nil {
		return
	}
	question, err := sanitize.ChatText(raw, m.opts.MaxMessageLen)
	if err != nil {
		var rej *domain.Reject
		if errors.As(err, &rej) {
			m.reject(conn, rej)
		}
		return
	}
	if m.assistant == nil {
		m.botMessage(st.room, "assistant is not available in this deployment")
		return
	}
	code := st.room
	go func() {
		reply, err := m.assistant.Ask(context.Background(), question)
		if err != nil {
			log.Warn().Err(err).Str("module", "app.session").
				Str("room", string(code)).Msg("assistant call failed")
			m.botMessage(code, "assistant is unavailable right now")
			return
		}
		m.botMessage(code, reply)
	}()
}

// botMessage appends and broadcasts a chat line from the assistant bot.
// If the room emptied in the meantime the reply is dropped.
func (m *Manager) botMessage(code domain.RoomCode, text string) {
	r, ok := m.rooms.get(code)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	msg := domain.ChatMessage{
		ID:         domain.NewMessageID(),
		SenderName: "assistant",
		Text:       text,
		SentAt:     time.Now(),
	}
	r.appendMessage(msg)
	r.broadcast(chatMessageEvent{Type: evtChatMessage, Message: msg}, "")
}

// memberRoom resolves a connection to its current room, or nil when the
// connection is not a member anywhere.
func (m *Manager) memberRoom(connID string) (*connState, *room) {
	st, ok := m.state(connID)
	if !ok || st.room == "" {
		return st, nil
	}
	r, ok := m.rooms.get(st.room)
	if !ok {
		return st, nil
	}
	return st, r
}

// RoomExists reports whether a code is currently in use. Used by the
// HTTP surface when minting fresh codes.
func (m *Manager) RoomExists(code domain.RoomCode) bool {
	return m.rooms.exists(code)
}
