package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/courtclock/go/internal/config"
	"github.com/mcdev12/courtclock/go/internal/events"
	"github.com/mcdev12/courtclock/go/internal/gateway"
	"github.com/mcdev12/courtclock/go/internal/session"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("courtclock exited")
	}
	log.Info().Msg("courtclock stopped")
}

func run(ctx context.Context, cfg config.Env) error {
	defaults, err := config.LoadFile(cfg.ConfigPath)
	if err != nil {
		return err
	}

	store, err := setupStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := setupPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	relay := events.NewRelay(publisher, events.DefaultRelayConfig())
	connections := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), nil)

	board, err := session.New(ctx, session.Config{
		Store:            store,
		TickInterval:     cfg.TickInterval,
		Observers:        []session.Observer{connections, relay},
		DefaultSettings:  defaults.Settings,
		DefaultHomeTeam:  defaults.HomeTeam,
		DefaultGuestTeam: defaults.GuestTeam,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	srv := setupServer(cfg.Port, gateway.NewRouter(
		gateway.NewControlHandler(board),
		gateway.NewWebSocketHandler(connections),
	))

	log.Info().
		Str("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Bool("nats", cfg.NATSURL != "").
		Msg("starting courtclock")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return board.Run(gctx)
	})
	g.Go(func() error {
		relay.Run(gctx)
		return nil
	})
	g.Go(func() error {
		connections.Start(gctx)
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupPublisher(ctx context.Context, cfg config.Env) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		log.Info().Msg("NATS_URL not set, logging events instead of publishing")
		return events.NewLogPublisher(), nil
	}

	jsCfg := events.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATSURL
	jsCfg.StreamName = cfg.NATSStream
	jsCfg.SubjectPrefix = cfg.NATSSubjectPrefix

	publisher, err := events.NewJetStreamPublisher(ctx, jsCfg)
	if err != nil {
		return nil, fmt.Errorf("setup event publisher: %w", err)
	}
	log.Info().
		Str("nats_url", cfg.NATSURL).
		Str("stream", jsCfg.StreamName).
		Msg("publishing events to JetStream")
	return publisher, nil
}
