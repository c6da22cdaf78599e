package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/internal/config"
	"github.com/mcdev12/quizrunner/go/internal/game/persistence"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

// Storage is the state file plus the optional Redis mirror.
type Storage struct {
	Store  *persistence.FileStore
	Redis  *persistence.RedisMirror
	Writer *persistence.Writer
	State  models.GameState
}

func setupStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	store := persistence.NewFileStore(cfg.StateFile)
	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	s := &Storage{Store: store, State: state}

	var mirror persistence.Mirror
	if cfg.RedisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		redisMirror, err := persistence.Dial(dialCtx, cfg.RedisAddr, cfg.RedisKey)
		if err != nil {
			// The file is the source of truth; run without the mirror.
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis mirror unavailable")
		} else {
			s.Redis = redisMirror
			mirror = redisMirror
		}
	}
	s.Writer = persistence.NewWriter(store, mirror)

	log.Info().
		Str("path", store.Path()).
		Str("status", string(state.Status)).
		Int("round", state.Round).
		Int("players", len(state.Players)).
		Bool("redis", s.Redis != nil).
		Msg("state loaded")

	return s, nil
}

func (s *Storage) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}
