package httpapi

import (
	"crypto/rand"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/domain"
)

const mintAttempts = 64

// mintRoomHandler hands out a room code that is not currently in use.
// The room itself is created only when the first peer joins over the
// websocket, so an unclaimed code costs nothing.
func mintRoomHandler(mgr *app.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		for i := 0; i < mintAttempts; i++ {
			code := randomRoomCode()
			if mgr.RoomExists(code) {
				continue
			}
			c.JSON(http.StatusOK, gin.H{"roomCode": string(code)})
			return
		}
		// Practically unreachable with a 36^6 code space.
		log.Error().Str("module", "httpapi").Msg("room code space exhausted")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no free room code"})
	}
}

func randomRoomCode() domain.RoomCode {
	alphabet := domain.RoomCodeAlphabet
	buf := make([]byte, domain.RoomCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			log.Panic().Err(err).Str("module", "httpapi").Msg("crypto rand failed")
		}
		buf[i] = alphabet[n.Int64()]
	}
	return domain.RoomCode(string(buf))
}
