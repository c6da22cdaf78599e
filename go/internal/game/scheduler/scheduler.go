// Package scheduler runs the polling loop of a single player.
//
// A Scheduler wakes up every pacing interval, picks a challenge from the
// round window, asks the player's answer server, scores the reply and emits
// an Answer to the coordinator. Each player gets their own Scheduler so a
// slow server only delays its own next question.
package scheduler

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/clients"
	"github.com/mcdev12/quizrunner/go/internal/challenge"
	"github.com/mcdev12/quizrunner/go/internal/game/pacing"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

// Penalties for failed attempts.
const (
	ServerErrorPoints = -10
	TransportPoints   = -15
)

// State is the lifecycle state of a Scheduler.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Asker sends a challenge to a participant server.
type Asker interface {
	Ask(ctx context.Context, endpoint, text string) (clients.Reply, error)
}

// Answer is emitted once per scored attempt.
type Answer struct {
	PlayerID   uuid.UUID
	Generation uint64
	Entry      models.AttemptLog
	// PacingInterval is the interval the scheduler will use from now on.
	PacingInterval int
}

// Config seeds a Scheduler from a player's persisted record.
type Config struct {
	PlayerID   uuid.UUID
	Nick       string
	Generation uint64
	Endpoint   string
	Mode       models.GameMode
	Round      int
	Pacing     pacing.Config

	Interval int
	Sequence int64
	Attempts int
	Correct  int
	Score    int

	// Rand is optional. It is only used while holding the scheduler lock.
	Rand *rand.Rand
}

// ConfigFor builds a Config that continues where the player's log left off.
func ConfigFor(p models.Player, mode models.GameMode, round int, pc pacing.Config) Config {
	interval := p.PacingInterval
	if interval == 0 {
		interval = pc.Default
	}
	return Config{
		PlayerID: p.ID,
		Nick:     p.Nick,
		Endpoint: p.Endpoint,
		Mode:     mode,
		Round:    round,
		Pacing:   pc,
		Interval: pc.Clamp(interval),
		Sequence: p.LastSequence(),
		Attempts: len(p.Log),
		Correct:  p.CorrectCount(),
		Score:    p.Score,
	}
}

type request struct {
	epoch     uint64
	at        time.Time
	endpoint  string
	interval  int
	challenge challenge.Challenge
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	playerID   uuid.UUID
	nick       string
	generation uint64
	pacing     pacing.Config

	clock clockwork.Clock
	asker Asker
	out   chan<- Answer

	// reqCtx outlives Stop so in-flight requests are never aborted.
	ctx    context.Context
	cancel context.CancelFunc
	reqCtx context.Context

	mu          sync.Mutex
	rand        *rand.Rand
	state       State
	epoch       uint64
	timer       clockwork.Timer
	inFlight    bool
	pendingWake bool
	endpoint    string
	mode        models.GameMode
	round       int
	interval    int
	sequence    int64
	attempts    int
	correct     int
	score       int
}

// New creates a stopped Scheduler. Answers are sent on out until the
// scheduler is stopped or ctx is done.
func New(ctx context.Context, cfg Config, asker Asker, clock clockwork.Clock, out chan<- Answer) *Scheduler {
	r := cfg.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Interval == 0 {
		cfg.Interval = cfg.Pacing.Default
	}
	sctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		playerID:   cfg.PlayerID,
		nick:       cfg.Nick,
		generation: cfg.Generation,
		pacing:     cfg.Pacing,
		clock:      clock,
		asker:      asker,
		out:        out,
		ctx:        sctx,
		cancel:     cancel,
		reqCtx:     context.WithoutCancel(ctx),
		rand:       r,
		state:      StateStopped,
		endpoint:   cfg.Endpoint,
		mode:       cfg.Mode,
		round:      cfg.Round,
		interval:   cfg.Interval,
		sequence:   cfg.Sequence,
		attempts:   cfg.Attempts,
		correct:    cfg.Correct,
		score:      cfg.Score,
	}
}

// Start begins the loop. The first question is asked right away.
func (s *Scheduler) Start() {
	s.resume(0)
}

// Continue resumes a paused loop. The next question is asked after one
// interval.
func (s *Scheduler) Continue() {
	s.mu.Lock()
	delay := pacing.Duration(s.interval)
	s.mu.Unlock()
	s.resume(delay)
}

func (s *Scheduler) resume(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePlaying || s.ctx.Err() != nil {
		return
	}
	s.state = StatePlaying
	s.epoch++
	s.armLocked(delay)

	log.Debug().
		Str("player_id", s.playerID.String()).
		Str("nick", s.nick).
		Int("interval_ms", s.interval).
		Msg("scheduler playing")
}

// Pause cancels the pending wake-up. A request already in flight is left to
// finish but its reply is discarded.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return
	}
	s.state = StatePaused
	s.epoch++
	s.cancelTimerLocked()
	s.pendingWake = false

	log.Debug().Str("player_id", s.playerID.String()).Msg("scheduler paused")
}

// Stop tears the scheduler down. It cannot be restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.state = StateStopped
	s.epoch++
	s.cancelTimerLocked()
	s.pendingWake = false
	s.mu.Unlock()

	s.cancel()
	log.Debug().Str("player_id", s.playerID.String()).Msg("scheduler stopped")
}

// SetRound changes the round used for the next challenge.
func (s *Scheduler) SetRound(round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = round
}

// SetEndpoint changes where the next challenge is sent.
func (s *Scheduler) SetEndpoint(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoint = endpoint
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Interval returns the current pacing interval in milliseconds.
func (s *Scheduler) Interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Generation identifies this scheduler among all schedulers ever created
// for the same player.
func (s *Scheduler) Generation() uint64 {
	return s.generation
}

func (s *Scheduler) armLocked(delay time.Duration) {
	s.cancelTimerLocked()
	epoch := s.epoch
	s.timer = s.clock.AfterFunc(delay, func() { s.wake(epoch) })
}

func (s *Scheduler) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// wake runs on every timer expiry. It re-arms the timer before doing any
// work so the cadence does not depend on how long the participant takes.
func (s *Scheduler) wake(epoch uint64) {
	s.mu.Lock()
	if s.state != StatePlaying || epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.armLocked(pacing.Duration(s.interval))

	if s.inFlight {
		s.pendingWake = true
		s.mu.Unlock()
		log.Debug().Str("player_id", s.playerID.String()).Msg("previous question still in flight, deferring")
		return
	}
	req, ok := s.prepareLocked()
	s.mu.Unlock()

	if ok {
		go s.run(req)
	}
}

// prepareLocked picks the next challenge and marks a request in flight.
func (s *Scheduler) prepareLocked() (request, bool) {
	def, err := challenge.ForMode(s.mode).Select(s.round, s.rand)
	if err != nil {
		log.Warn().Err(err).
			Str("player_id", s.playerID.String()).
			Int("round", s.round).
			Msg("no challenge to ask")
		return request{}, false
	}
	s.inFlight = true
	return request{
		epoch:     s.epoch,
		at:        s.clock.Now(),
		endpoint:  s.endpoint,
		interval:  s.interval,
		challenge: def.Ask(s.rand),
	}, true
}

// run asks, scores and emits, then serves a wake-up deferred while the
// request was outstanding.
func (s *Scheduler) run(req request) {
	for {
		entry := s.ask(req)

		s.mu.Lock()
		answer, ok := s.acceptLocked(req, entry)
		s.mu.Unlock()

		if ok {
			s.emit(answer)
		}

		s.mu.Lock()
		s.inFlight = false
		if !s.pendingWake || s.state != StatePlaying {
			s.pendingWake = false
			s.mu.Unlock()
			return
		}
		s.pendingWake = false
		req, ok = s.prepareLocked()
		s.mu.Unlock()
		if !ok {
			return
		}
	}
}

// ask performs the outbound request and scores the outcome.
func (s *Scheduler) ask(req request) models.AttemptLog {
	ch := req.challenge
	entry := models.AttemptLog{
		Timestamp:          req.at,
		ChallengeName:      ch.Name,
		ChallengeText:      ch.Text,
		PacingIntervalUsed: req.interval,
	}

	reply, err := s.asker.Ask(s.reqCtx, req.endpoint, ch.Text)
	switch {
	case err != nil:
		entry.Points = TransportPoints
		entry.ErrorMessage = err.Error()
		log.Info().Err(err).
			Str("player_id", s.playerID.String()).
			Str("nick", s.nick).
			Msg("participant unreachable")
	case !reply.OK():
		entry.Points = ServerErrorPoints
		entry.HTTPStatus = reply.StatusCode
		entry.ErrorMessage = reply.Status
	default:
		entry.HTTPStatus = reply.StatusCode
		entry.AnswerText = reply.Body
		if reply.Truncated {
			entry.ErrorMessage = fmt.Sprintf("answer longer than %d bytes was cut off", clients.MaxAnswerBytes)
		}
		if !reply.Truncated && ch.Verify(reply.Body) {
			entry.Points = ch.Points
		} else {
			entry.Points = WrongAnswerPoints(ch.Points)
			entry.Hint = ch.Hint
		}
	}
	return entry
}

// acceptLocked applies a scored attempt to the scheduler's own counters. A
// reply that belongs to an earlier epoch is dropped.
func (s *Scheduler) acceptLocked(req request, entry models.AttemptLog) (Answer, bool) {
	if req.epoch != s.epoch || s.state != StatePlaying {
		log.Debug().
			Str("player_id", s.playerID.String()).
			Str("challenge", req.challenge.Name).
			Msg("discarding stale reply")
		return Answer{}, false
	}

	s.sequence++
	s.attempts++
	if entry.Points > 0 {
		s.correct++
	}
	s.score += entry.Points
	s.interval = s.pacing.Next(s.interval, entry.Points)

	entry.SequenceID = s.sequence
	entry.ScoreAfter = s.score
	entry.AccuracyRatio = float64(s.correct) / float64(s.attempts)

	log.Debug().
		Str("player_id", s.playerID.String()).
		Str("nick", s.nick).
		Str("challenge", entry.ChallengeName).
		Int("points", entry.Points).
		Int("interval_ms", s.interval).
		Msg("attempt scored")

	return Answer{
		PlayerID:       s.playerID,
		Generation:     s.generation,
		Entry:          entry,
		PacingInterval: s.interval,
	}, true
}

func (s *Scheduler) emit(a Answer) {
	select {
	case s.out <- a:
	case <-s.ctx.Done():
	}
}

// WrongAnswerPoints is the penalty for a wrong answer to a challenge worth
// points.
func WrongAnswerPoints(points int) int {
	return -int(math.Ceil(float64(points) / 3))
}
