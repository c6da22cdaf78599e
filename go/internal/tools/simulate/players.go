package main

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/mcdev12/quizrunner/go/internal/challenge"
)

// Kind selects how a simulated participant behaves.
type Kind string

const (
	// KindExpert knows every challenge but thinks for a while the first time
	// it sees a challenge text.
	KindExpert Kind = "expert"
	// KindPartial behaves like the expert for a random subset of the catalog
	// and gives up on the rest.
	KindPartial Kind = "not-all-answers"
	// KindFlaky answers a text after seeing it a few times and drops offline
	// now and then.
	KindFlaky Kind = "intermittent-offline"
)

var Kinds = []Kind{KindExpert, KindPartial, KindFlaky}

const (
	thinkingReply = "I need more time to think..."
	unknownReply  = "I don't know the answer to this question"

	maxOffline = 2 * time.Second
	maxOnline  = 30 * time.Second
)

// ThinkTime bounds how long an expert waits before answering a new text.
type ThinkTime struct {
	Min time.Duration
	Max time.Duration
}

// Player is a simulated participant answer server.
type Player struct {
	Nick string
	Kind Kind

	known challenge.Catalog
	think ThinkTime
	clock clockwork.Clock

	mu         sync.Mutex
	rand       *rand.Rand
	readyAt    map[string]time.Time
	sightings  map[string][2]int // seen, needed
	offline    bool
	nextToggle time.Time
}

func NewPlayer(nick string, kind Kind, think ThinkTime, clock clockwork.Clock, r *rand.Rand) *Player {
	p := &Player{
		Nick:      nick,
		Kind:      kind,
		known:     challenge.Full,
		think:     think,
		clock:     clock,
		rand:      r,
		readyAt:   make(map[string]time.Time),
		sightings: make(map[string][2]int),
	}
	if kind == KindPartial {
		var known challenge.Catalog
		for _, def := range challenge.Full {
			if r.Float64() < 0.75 {
				known = append(known, def)
			}
		}
		p.known = known
	}
	if kind == KindFlaky {
		p.offline = true
		p.nextToggle = clock.Now().Add(p.jitter(maxOffline))
	}
	return p
}

// Answer returns the reply body and HTTP status for a challenge text.
func (p *Player) Answer(text string) (string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	if p.Kind == KindFlaky {
		for !now.Before(p.nextToggle) {
			p.offline = !p.offline
			limit := maxOnline
			if p.offline {
				limit = maxOffline
			}
			p.nextToggle = p.nextToggle.Add(p.jitter(limit))
		}
		if p.offline {
			return "Server is offline", http.StatusServiceUnavailable
		}
	}

	def, err := p.known.Identify(text)
	if err != nil {
		return unknownReply, http.StatusOK
	}

	if !p.ready(text, now) {
		return thinkingReply, http.StatusOK
	}

	answer, err := def.Solve(text)
	if err != nil {
		return fmt.Sprintf("could not solve: %v", err), http.StatusOK
	}
	return answer, http.StatusOK
}

// ready reports whether the player has thought about text long enough.
func (p *Player) ready(text string, now time.Time) bool {
	if p.Kind == KindFlaky {
		s, ok := p.sightings[text]
		if !ok {
			s = [2]int{0, p.rand.IntN(3) + 2}
		}
		s[0]++
		p.sightings[text] = s
		return s[0] > s[1]
	}

	until, ok := p.readyAt[text]
	if !ok {
		until = now.Add(p.think.Min + p.jitter(p.think.Max-p.think.Min))
		p.readyAt[text] = until
	}
	return !now.Before(until)
}

func (p *Player) jitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(p.rand.Int64N(int64(limit)))
}

// Handle serves GET /?q=<text>.
func (p *Player) Handle(ctx *fasthttp.RequestCtx) {
	text := string(ctx.QueryArgs().Peek("q"))
	body, status := p.Answer(text)

	log.Debug().
		Str("nick", p.Nick).
		Str("kind", string(p.Kind)).
		Int("status", status).
		Str("challenge", text).
		Str("answer", body).
		Msg("answered")

	ctx.Response.Header.Set("Server", "quiz-simulate")
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(body)
}
