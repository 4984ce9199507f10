// Package httpapi wires the gin router: static client bundle, health,
// room-code minting and the websocket endpoint.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/config"
)

func SetupRouter(cfg *config.Config, mgr *app.Manager, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	api := r.Group("/api")
	api.GET("/ws", ctl.HandleWS)
	api.GET("/health", healthHandler(mgr))
	api.POST("/rooms", mintRoomHandler(mgr))

	log.Info().Str("module", "httpapi").Str("static", cfg.StaticPath).Msg("router ready")
	return r
}

func healthHandler(mgr *app.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := mgr.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"rooms":  s.Rooms,
			"peers":  s.Peers,
		})
	}
}
