package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/internal/challenge"
	"github.com/mcdev12/quizrunner/go/internal/game/events"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

// Snapshot returns a deep copy of the current state.
func (c *Coordinator) Snapshot(ctx context.Context) (models.GameState, error) {
	var out models.GameState
	err := c.do(ctx, func() error {
		out = c.state.Clone()
		return nil
	})
	return out, err
}

// Player returns a copy of a single player.
func (c *Coordinator) Player(ctx context.Context, id uuid.UUID) (models.Player, error) {
	var out models.Player
	err := c.do(ctx, func() error {
		p, _ := c.state.FindPlayer(id)
		if p == nil {
			return fmt.Errorf("%s: %w", id, ErrPlayerNotFound)
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

// AddPlayer registers a participant. Nick and endpoint must both be unused.
func (c *Coordinator) AddPlayer(ctx context.Context, nick, endpoint string) (uuid.UUID, error) {
	nick = strings.TrimSpace(nick)
	endpoint = strings.TrimSpace(endpoint)

	var id uuid.UUID
	err := c.do(ctx, func() error {
		if nick == "" || endpoint == "" {
			return fmt.Errorf("%w: nick and url are required", ErrInvalidParticipant)
		}
		if err := c.checkDuplicate(uuid.Nil, nick, endpoint); err != nil {
			return err
		}

		now := c.clock.Now()
		c.state.Players = append(c.state.Players, models.Player{
			ID:             uuid.New(),
			Nick:           nick,
			Endpoint:       endpoint,
			Playing:        true,
			PacingInterval: c.pacing.Default,
			JoinedAt:       now,
			Log:            []models.AttemptLog{},
		})
		p := &c.state.Players[len(c.state.Players)-1]
		id = p.ID

		if c.state.Status == models.GameStatusPlaying {
			c.spawnRunner(p).Start()
		}

		log.Info().Str("player_id", id.String()).Str("nick", nick).Msg("player joined")
		c.publish(events.TypePlayerJoined, id, events.PlayerJoinedPayload{
			PlayerID: id.String(),
			Nick:     nick,
			Endpoint: endpoint,
			JoinedAt: now,
		})
		c.persist()
		return nil
	})
	return id, err
}

// checkDuplicate compares against every player except skip.
func (c *Coordinator) checkDuplicate(skip uuid.UUID, nick, endpoint string) error {
	dup := &DuplicateParticipantError{}
	for _, p := range c.state.Players {
		if p.ID == skip {
			continue
		}
		if nick != "" && strings.EqualFold(p.Nick, nick) {
			dup.Nick = nick
		}
		if endpoint != "" && p.Endpoint == endpoint {
			dup.Endpoint = endpoint
		}
	}
	if dup.Nick != "" || dup.Endpoint != "" {
		return dup
	}
	return nil
}

// RemovePlayer tears down the player's scheduler and deletes the player.
func (c *Coordinator) RemovePlayer(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, func() error {
		p, idx := c.state.FindPlayer(id)
		if p == nil {
			return fmt.Errorf("%s: %w", id, ErrPlayerNotFound)
		}
		nick := p.Nick
		c.stopRunner(id)
		c.state.Players = append(c.state.Players[:idx:idx], c.state.Players[idx+1:]...)

		log.Info().Str("player_id", id.String()).Str("nick", nick).Msg("player removed")
		c.publish(events.TypePlayerRemoved, id, events.PlayerStatusPayload{PlayerID: id.String(), Nick: nick})
		c.persist()
		return nil
	})
}

// PlayerSurrender stops asking the player questions but keeps their record.
func (c *Coordinator) PlayerSurrender(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, func() error {
		p, _ := c.state.FindPlayer(id)
		if p == nil {
			return fmt.Errorf("%s: %w", id, ErrPlayerNotFound)
		}
		if !p.Playing {
			return nil
		}
		p.Playing = false
		c.stopRunner(id)

		log.Info().Str("player_id", id.String()).Str("nick", p.Nick).Msg("player surrendered")
		c.publish(events.TypePlayerLeft, id, events.PlayerStatusPayload{PlayerID: id.String(), Nick: p.Nick})
		c.persist()
		return nil
	})
}

// RejoinPlayer puts a surrendered player back in the game.
func (c *Coordinator) RejoinPlayer(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, func() error {
		p, _ := c.state.FindPlayer(id)
		if p == nil {
			return fmt.Errorf("%s: %w", id, ErrPlayerNotFound)
		}
		if p.Playing {
			return nil
		}
		p.Playing = true
		if c.state.Status == models.GameStatusPlaying {
			c.spawnRunner(p).Start()
		}

		log.Info().Str("player_id", id.String()).Str("nick", p.Nick).Msg("player rejoined")
		c.publish(events.TypePlayerRejoined, id, events.PlayerStatusPayload{PlayerID: id.String(), Nick: p.Nick, Playing: true})
		c.persist()
		return nil
	})
}

// ChangeEndpoint points a player at a new answer server. A live scheduler
// uses it from the next question on.
func (c *Coordinator) ChangeEndpoint(ctx context.Context, id uuid.UUID, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	return c.do(ctx, func() error {
		if endpoint == "" {
			return fmt.Errorf("%w: url is required", ErrInvalidParticipant)
		}
		p, _ := c.state.FindPlayer(id)
		if p == nil {
			return fmt.Errorf("%s: %w", id, ErrPlayerNotFound)
		}
		if err := c.checkDuplicate(id, "", endpoint); err != nil {
			return err
		}
		if p.Endpoint == endpoint {
			return nil
		}
		old := p.Endpoint
		p.Endpoint = endpoint
		if r, ok := c.runners[id]; ok {
			r.SetEndpoint(endpoint)
		}

		log.Info().Str("player_id", id.String()).Str("nick", p.Nick).Str("url", endpoint).Msg("player endpoint changed")
		c.publish(events.TypePlayerEndpointChanged, id, events.PlayerEndpointChangedPayload{
			PlayerID:    id.String(),
			Nick:        p.Nick,
			OldEndpoint: old,
			Endpoint:    endpoint,
		})
		c.persist()
		return nil
	})
}

// StartGame begins a new game at round 1 with a fresh scheduler for every
// playing player.
func (c *Coordinator) StartGame(ctx context.Context, mode string) error {
	m, err := models.ParseGameMode(mode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMode, err)
	}
	return c.do(ctx, func() error {
		c.stopAllRunners()

		now := c.clock.Now()
		c.state.Status = models.GameStatusPlaying
		c.state.Mode = m
		c.state.Round = 1
		c.state.GameStartedAt = &now
		roundStart := now
		c.state.RoundStartedAt = &roundStart

		for i := range c.state.Players {
			if p := &c.state.Players[i]; p.Playing {
				c.spawnRunner(p).Start()
			}
		}

		log.Info().Str("mode", string(m)).Int("players", len(c.runners)).Msg("game started")
		c.publish(events.TypeGameStarted, uuid.Nil, c.statusPayload())
		c.persist()
		return nil
	})
}

// StopGame ends the game and tears down every scheduler.
func (c *Coordinator) StopGame(ctx context.Context) error {
	return c.do(ctx, func() error {
		c.stopAllRunners()
		c.state.Status = models.GameStatusStopped
		c.state.Round = 0
		c.state.GameStartedAt = nil
		c.state.RoundStartedAt = nil

		log.Info().Msg("game stopped")
		c.publish(events.TypeGameStopped, uuid.Nil, c.statusPayload())
		c.persist()
		return nil
	})
}

// PauseGame cancels pending questions. Player logs are untouched.
func (c *Coordinator) PauseGame(ctx context.Context) error {
	return c.do(ctx, func() error {
		if c.state.Status != models.GameStatusPlaying {
			return nil
		}
		c.state.Status = models.GameStatusPaused
		for _, r := range c.runners {
			r.Pause()
		}

		log.Info().Int("round", c.state.Round).Msg("game paused")
		c.publish(events.TypeGamePaused, uuid.Nil, c.statusPayload())
		c.persist()
		return nil
	})
}

// ContinueGame resumes a paused game. Players without a live scheduler,
// for instance after a restart, get a new one.
func (c *Coordinator) ContinueGame(ctx context.Context) error {
	return c.do(ctx, func() error {
		if c.state.Status != models.GameStatusPaused {
			return nil
		}
		c.state.Status = models.GameStatusPlaying
		for i := range c.state.Players {
			p := &c.state.Players[i]
			if !p.Playing {
				continue
			}
			if r, ok := c.runners[p.ID]; ok {
				r.SetRound(c.state.Round)
				r.Continue()
				continue
			}
			c.spawnRunner(p).Continue()
		}

		log.Info().Int("round", c.state.Round).Msg("game continued")
		c.publish(events.TypeGameContinued, uuid.Nil, c.statusPayload())
		c.persist()
		return nil
	})
}

// ResetGame stops the game and wipes every player's score and log.
func (c *Coordinator) ResetGame(ctx context.Context) error {
	return c.do(ctx, func() error {
		c.stopAllRunners()
		c.state.Status = models.GameStatusStopped
		c.state.Round = 0
		c.state.GameStartedAt = nil
		c.state.RoundStartedAt = nil
		for i := range c.state.Players {
			p := &c.state.Players[i]
			p.Playing = true
			p.Score = 0
			p.PacingInterval = c.pacing.Default
			p.Log = []models.AttemptLog{}
		}

		log.Info().Int("players", len(c.state.Players)).Msg("game reset")
		c.publish(events.TypeGameReset, uuid.Nil, c.statusPayload())
		c.persist()
		return nil
	})
}

// NextRound advances the round. It does nothing at the last round.
func (c *Coordinator) NextRound(ctx context.Context) error {
	return c.do(ctx, func() error {
		if c.state.Round >= challenge.MaxRounds() {
			return nil
		}
		c.changeRound(c.state.Round + 1)
		return nil
	})
}

// PreviousRound goes back one round. It does nothing at round 1.
func (c *Coordinator) PreviousRound(ctx context.Context) error {
	return c.do(ctx, func() error {
		if c.state.Round <= 1 {
			return nil
		}
		c.changeRound(c.state.Round - 1)
		return nil
	})
}

func (c *Coordinator) changeRound(round int) {
	previous := c.state.Round
	now := c.clock.Now()
	c.state.Round = round
	c.state.RoundStartedAt = &now
	for _, r := range c.runners {
		r.SetRound(round)
	}

	log.Info().Int("round", round).Int("previous_round", previous).Msg("round changed")
	c.publish(events.TypeRoundChanged, uuid.Nil, events.RoundChangedPayload{
		PreviousRound: previous,
		Round:         round,
		MaxRounds:     challenge.MaxRounds(),
		StartedAt:     now,
	})
	c.persist()
}

func (c *Coordinator) statusPayload() events.GameStatusPayload {
	var started *time.Time
	if c.state.GameStartedAt != nil {
		t := *c.state.GameStartedAt
		started = &t
	}
	return events.GameStatusPayload{
		Status:    c.state.Status,
		Mode:      c.state.Mode,
		Round:     c.state.Round,
		StartedAt: started,
	}
}
