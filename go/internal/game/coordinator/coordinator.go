// Package coordinator owns the canonical game state.
//
// The Coordinator is an actor: one goroutine started by Run applies every
// operation and every scheduler answer in turn, so GameState needs no lock.
// Public methods send a closure to that goroutine and wait for its result.
package coordinator

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/internal/challenge"
	"github.com/mcdev12/quizrunner/go/internal/game/events"
	"github.com/mcdev12/quizrunner/go/internal/game/pacing"
	"github.com/mcdev12/quizrunner/go/internal/game/scheduler"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

const answerBuffer = 64

// Runner is a live per-player scheduler.
type Runner interface {
	Start()
	Pause()
	Continue()
	Stop()
	SetRound(round int)
	SetEndpoint(endpoint string)
	Generation() uint64
}

// RunnerFactory creates a stopped Runner that sends its answers on out.
type RunnerFactory func(ctx context.Context, cfg scheduler.Config, out chan<- scheduler.Answer) Runner

// SchedulerFactory returns a RunnerFactory backed by scheduler.Scheduler.
func SchedulerFactory(asker scheduler.Asker, clock clockwork.Clock) RunnerFactory {
	return func(ctx context.Context, cfg scheduler.Config, out chan<- scheduler.Answer) Runner {
		return scheduler.New(ctx, cfg, asker, clock, out)
	}
}

// Publisher receives every event the coordinator applies.
type Publisher interface {
	Publish(ev events.Event)
}

// Snapshotter receives a private copy of the state after every mutation.
type Snapshotter interface {
	Enqueue(state models.GameState)
}

// Options configures a Coordinator. NewRunner is required.
type Options struct {
	Pacing    pacing.Config
	Clock     clockwork.Clock
	NewRunner RunnerFactory
}

type command struct {
	fn     func() error
	result chan error
}

type Coordinator struct {
	publisher Publisher
	snapshots Snapshotter
	newRunner RunnerFactory
	pacing    pacing.Config
	clock     clockwork.Clock

	cmds    chan command
	answers chan scheduler.Answer
	done    chan struct{}

	// Owned by the Run goroutine.
	ctx        context.Context
	state      models.GameState
	runners    map[uuid.UUID]Runner
	generation uint64
	demoted    bool
}

// New creates a coordinator over a previously persisted state. A state that
// was saved while playing is demoted to paused: schedulers are only brought
// back by ContinueGame.
func New(state models.GameState, publisher Publisher, snapshots Snapshotter, opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Pacing == (pacing.Config{}) {
		opts.Pacing = pacing.DefaultConfig()
	}
	return &Coordinator{
		publisher: publisher,
		snapshots: snapshots,
		newRunner: opts.NewRunner,
		pacing:    opts.Pacing,
		clock:     opts.Clock,
		cmds:      make(chan command),
		answers:   make(chan scheduler.Answer, answerBuffer),
		done:      make(chan struct{}),
		ctx:       context.Background(),
		state:     Restore(state, opts.Pacing),
		runners:   make(map[uuid.UUID]Runner),
		demoted:   state.Status == models.GameStatusPlaying,
	}
}

// Restore normalizes a loaded state.
func Restore(state models.GameState, pc pacing.Config) models.GameState {
	state = state.Clone()
	if state.Status == "" {
		state.Status = models.GameStatusStopped
	}
	if state.Status == models.GameStatusPlaying {
		state.Status = models.GameStatusPaused
	}
	state.Round = min(max(state.Round, 0), challenge.MaxRounds())
	for i := range state.Players {
		p := &state.Players[i]
		if p.PacingInterval == 0 {
			p.PacingInterval = pc.Default
		}
		p.PacingInterval = pc.Clamp(p.PacingInterval)
	}
	return state
}

// Run processes operations and answers until ctx is done. All schedulers are
// stopped before Run returns.
func (c *Coordinator) Run(ctx context.Context) error {
	c.ctx = ctx
	defer close(c.done)
	defer c.stopAllRunners()

	if c.demoted {
		log.Info().Msg("game was playing when saved, now paused")
		c.persist()
	}
	log.Info().
		Str("status", string(c.state.Status)).
		Int("round", c.state.Round).
		Int("players", len(c.state.Players)).
		Msg("coordinator started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("coordinator stopped")
			return nil
		case cmd := <-c.cmds:
			cmd.result <- cmd.fn()
		case answer := <-c.answers:
			c.applyAnswer(answer)
		}
	}
}

// do runs fn on the coordinator goroutine.
func (c *Coordinator) do(ctx context.Context, fn func() error) error {
	cmd := command{fn: fn, result: make(chan error, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) persist() {
	if c.snapshots != nil {
		c.snapshots.Enqueue(c.state.Clone())
	}
}

func (c *Coordinator) publish(t events.Type, playerID uuid.UUID, payload any) {
	ev, err := events.New(t, playerID, c.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(t)).Msg("failed to build event")
		return
	}
	if c.publisher != nil {
		c.publisher.Publish(ev)
	}
}

func (c *Coordinator) spawnRunner(p *models.Player) Runner {
	if old, ok := c.runners[p.ID]; ok {
		old.Stop()
	}
	c.generation++
	cfg := scheduler.ConfigFor(*p, c.state.Mode, c.state.Round, c.pacing)
	cfg.Generation = c.generation
	r := c.newRunner(c.ctx, cfg, c.answers)
	c.runners[p.ID] = r
	return r
}

func (c *Coordinator) stopRunner(id uuid.UUID) {
	if r, ok := c.runners[id]; ok {
		r.Stop()
		delete(c.runners, id)
	}
}

func (c *Coordinator) stopAllRunners() {
	for id, r := range c.runners {
		r.Stop()
		delete(c.runners, id)
	}
}

// applyAnswer appends a scored attempt to its player. Answers from a
// scheduler that has since been replaced or torn down, or for a player that
// no longer exists, are dropped.
func (c *Coordinator) applyAnswer(a scheduler.Answer) {
	r, ok := c.runners[a.PlayerID]
	if !ok || r.Generation() != a.Generation {
		log.Debug().Str("player_id", a.PlayerID.String()).Msg("dropping answer from retired scheduler")
		return
	}
	p, _ := c.state.FindPlayer(a.PlayerID)
	if p == nil {
		log.Debug().Str("player_id", a.PlayerID.String()).Msg("dropping answer for unknown player")
		return
	}

	entry := a.Entry
	p.Score += entry.Points
	entry.ScoreAfter = p.Score
	p.PacingInterval = a.PacingInterval
	p.Log = append([]models.AttemptLog{entry}, p.Log...)

	log.Info().
		Str("player_id", p.ID.String()).
		Str("nick", p.Nick).
		Str("challenge", entry.ChallengeName).
		Int("points", entry.Points).
		Int("score", p.Score).
		Int("interval_ms", p.PacingInterval).
		Msg("answer applied")

	c.publish(events.TypePlayerAnswer, p.ID, events.PlayerAnswerPayload{
		PlayerID:       p.ID.String(),
		Nick:           p.Nick,
		Score:          p.Score,
		PacingInterval: p.PacingInterval,
		Entry:          entry,
	})
	c.persist()
}
