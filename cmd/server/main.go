package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	wssignal "github.com/dkeye/Huddle/internal/adapters/signal"

	"github.com/dkeye/Huddle/internal/adapters/httpapi"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/assistant"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/ratelimit"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		if cfg == nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		log.Warn().Err(err).Msg("config file not read, continuing with defaults")
	}
	if cfg.Mode != "release" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	limiter := ratelimit.New(ratelimit.RealClock{}, cfg.RateWindow, cfg.RateMaxEvents)

	var bot app.Assistant
	if cfg.AssistantURL != "" {
		bot = assistant.New(cfg.AssistantURL, cfg.AssistantTimeout)
	}

	mgr := app.NewManager(app.Options{
		RoomCapacity:  cfg.RoomCapacity,
		HistorySize:   cfg.HistorySize,
		MaxNameLen:    cfg.MaxNameLen,
		MaxMessageLen: cfg.MaxMessageLen,
	}, limiter, bot)
	go mgr.Run(ctx, cfg.StatsInterval)

	ctl := wssignal.NewController(mgr, cfg.ReadLimit, cfg.PingPeriod)
	r := httpapi.SetupRouter(cfg, mgr, ctl)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Huddle server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
