package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/clients"
	"github.com/mcdev12/quizrunner/go/internal/config"
	"github.com/mcdev12/quizrunner/go/internal/game/bus"
	"github.com/mcdev12/quizrunner/go/internal/game/coordinator"
	"github.com/mcdev12/quizrunner/go/internal/game/listeners"
)

const busListenerID = "nats-bus"

type Services struct {
	Storage     *Storage
	Listeners   *listeners.Registry
	Coordinator *coordinator.Coordinator
	Bus         *bus.JetStreamPublisher
	Forwarder   *bus.Forwarder
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// Storage → Listeners → Coordinator (schedulers ask participants over HTTP)

	storage, err := setupStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := listeners.NewRegistry()
	svc := &Services{Storage: storage, Listeners: registry}

	if cfg.NATSURL != "" {
		jsCfg := bus.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		jsCfg.StreamName = cfg.NATSStream
		publisher, err := bus.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			storage.Close()
			return nil, fmt.Errorf("failed to connect event bus: %w", err)
		}
		svc.Bus = publisher
		svc.Forwarder = bus.NewForwarder(publisher, bus.DefaultQueueSize)
		registry.Subscribe(busListenerID, svc.Forwarder.Listener())
	}

	clock := clockwork.NewRealClock()
	participants := clients.NewParticipantClient(cfg.ParticipantTimeout)
	svc.Coordinator = coordinator.New(storage.State, registry, storage.Writer, coordinator.Options{
		Pacing:    cfg.Pacing,
		Clock:     clock,
		NewRunner: coordinator.SchedulerFactory(participants, clock),
	})

	log.Info().
		Bool("bus", svc.Bus != nil).
		Int("default_interval_ms", cfg.Pacing.Default).
		Msg("services ready")

	return svc, nil
}

func (s *Services) Close() {
	if s.Bus != nil {
		if err := s.Bus.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close event bus")
		}
	}
	s.Storage.Close()
}
