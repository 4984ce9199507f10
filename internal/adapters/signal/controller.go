// Package signal is the websocket endpoint: one connection per client,
// a read pump decoding inbound events for the session manager and a
// write pump draining the buffered send queue.
package signal

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/app"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Controller struct {
	Mgr        *app.Manager
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(mgr *app.Manager, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{Mgr: mgr, ReadLimit: readLimit, PingPeriod: pingPeriod}
}

// HandleWS upgrades the request and runs the connection until it dies.
// The connection id doubles as the peer id; it is minted here and never
// taken from the client.
func (ctl *Controller) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWSConn(uuid.NewString(), ws)
	log.Info().Str("module", "signal").Str("peer", conn.id).Msg("new connection")

	ctl.Mgr.Register(conn)
	go ctl.writePump(conn)
	go ctl.readPump(conn)
}

// pongWait allows two missed ping intervals before the read deadline
// fires and the connection is treated as dead.
func (ctl *Controller) pongWait() time.Duration {
	return 2 * ctl.PingPeriod
}

func (ctl *Controller) readPump(c *wsConn) {
	defer func() {
		c.Close()
		ctl.Mgr.Disconnect(c.id)
	}()

	c.ws.SetReadLimit(ctl.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("peer", c.id).Msg("read error")
			}
			return
		}
		ctl.dispatch(c, data)
	}
}

func (ctl *Controller) writePump(c *wsConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("peer", c.id).Msg("write error")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
