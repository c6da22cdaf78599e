package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/quizrunner/go/internal/config"
	"github.com/mcdev12/quizrunner/go/internal/game/gateway"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("quizrunner failed")
	}
	log.Info().Msg("quizrunner shutdown complete")
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	zerolog.SetGlobalLevel(cfg.Level())
}

func run(ctx context.Context, cfg *config.Config) error {
	services, err := setupServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	cm := gateway.NewConnectionManager(services.Listeners, services.Coordinator, gateway.DefaultConnectionConfig())
	server := setupServer(cfg, services, cm)

	g, gctx := errgroup.WithContext(ctx)

	// The writer outlives the coordinator so the last snapshot is flushed.
	writerCtx, stopWriter := context.WithCancel(context.WithoutCancel(ctx))
	g.Go(func() error {
		defer stopWriter()
		return services.Coordinator.Run(gctx)
	})
	g.Go(func() error {
		return services.Storage.Writer.Run(writerCtx)
	})

	if services.Forwarder != nil {
		g.Go(func() error {
			return services.Forwarder.Run(gctx)
		})
	}

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cm.CloseAll()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
		}
		return nil
	})

	return g.Wait()
}
