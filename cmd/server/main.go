package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/api"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/config"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/pubsub"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/repository"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/repository/memory"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/repository/postgres"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/service"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/websocket"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// League store: postgres when configured, in-memory otherwise.
	var repos *repository.Repositories
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewConnection(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		repos = postgres.NewRepositories(db)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory league store")
		repos = memory.NewRepositories()
	}

	// Optional cross-instance event relay.
	var relay pubsub.Relay = pubsub.NoopRelay{}
	if cfg.NATSURL != "" {
		natsRelay, err := pubsub.NewNATSRelay(cfg.NATSURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer natsRelay.Close()
		relay = natsRelay
	}

	services := service.NewServices(repos, cfg)

	hub := websocket.NewHub(services.League, relay, clockwork.NewRealClock(), websocket.HubConfig{
		SessionIdleTimeout: cfg.SessionIdleTimeout,
		LockTimeout:        cfg.PickLockTimeout,
		SeatGrace:          cfg.SeatReleaseGrace,
	}, logger)
	go hub.Run()

	router := api.NewRouter(services, hub, logger)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	// Persist any resident sessions before exiting.
	hub.Stop()

	logger.Info().Msg("server stopped")
}
