package signal

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// wsConn wraps one websocket with a buffered send queue. TrySend never
// blocks: a full queue means the client is too slow and the connection
// is sacrificed rather than stalling its room.
type wsConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newWSConn(id string, ws *websocket.Conn) *wsConn {
	return &wsConn{
		id:   id,
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) TrySend(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal outbound event")
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.ws.Close()
}
