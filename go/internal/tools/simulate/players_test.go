package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/valyala/fasthttp"

	"github.com/mcdev12/quizrunner/go/clients"
	"github.com/mcdev12/quizrunner/go/internal/challenge"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func askText(t *testing.T) string {
	t.Helper()
	return challenge.Uppercase.Ask(newRand()).Text
}

func TestExpertThinksBeforeAnswering(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	p := NewPlayer("expert", KindExpert, ThinkTime{Min: time.Minute, Max: 2 * time.Minute}, clock, newRand())
	text := askText(t)

	body, status := p.Answer(text)
	if status != http.StatusOK || body != thinkingReply {
		t.Fatalf("first answer = %d %q, want thinking", status, body)
	}

	clock.Advance(2 * time.Minute)
	body, status = p.Answer(text)
	want, err := challenge.Full.Solve(text)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusOK || body != want {
		t.Fatalf("answer = %d %q, want %q", status, body, want)
	}
}

func TestExpertUnknownText(t *testing.T) {
	p := NewPlayer("expert", KindExpert, ThinkTime{}, clockwork.NewFakeClock(), newRand())
	body, status := p.Answer("what is the meaning of life")
	if status != http.StatusOK || body != unknownReply {
		t.Errorf("answer = %d %q", status, body)
	}
}

func TestPartialKnowsSubset(t *testing.T) {
	p := NewPlayer("partial", KindPartial, ThinkTime{}, clockwork.NewFakeClock(), newRand())
	if len(p.known) == 0 || len(p.known) > len(challenge.Full) {
		t.Fatalf("known = %d definitions", len(p.known))
	}
	for _, def := range p.known {
		if _, err := challenge.Full.Identify(def.Ask(newRand()).Text); err != nil {
			t.Errorf("%s not in catalog: %v", def.Name(), err)
		}
	}
}

func TestFlakyGoesOnlineAndAnswersAfterSightings(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	p := NewPlayer("flaky", KindFlaky, ThinkTime{}, clock, newRand())
	text := askText(t)
	want, err := challenge.Full.Solve(text)
	if err != nil {
		t.Fatal(err)
	}

	body, status := p.Answer(text)
	if status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 while starting offline", status)
	}
	for i := 0; status == http.StatusServiceUnavailable && i < 100; i++ {
		clock.Advance(100 * time.Millisecond)
		body, status = p.Answer(text)
	}
	if status != http.StatusOK {
		t.Fatalf("still offline after 10s, status = %d", status)
	}
	if body != thinkingReply {
		t.Fatalf("first sighting = %q, want thinking", body)
	}

	// The clock is frozen, so the player stays online.
	for range 4 {
		if body == want {
			break
		}
		body, status = p.Answer(text)
	}
	if status != http.StatusOK || body != want {
		t.Fatalf("answer = %d %q, want %q", status, body, want)
	}
}

func TestHandle(t *testing.T) {
	p := NewPlayer("expert", KindExpert, ThinkTime{}, clockwork.NewFakeClock(), newRand())
	text := askText(t)

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/?" + url.Values{"q": {text}}.Encode())
	p.Handle(&ctx)

	want, err := challenge.Full.Solve(text)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Errorf("status = %d", ctx.Response.StatusCode())
	}
	if got := string(ctx.Response.Body()); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestSignup(t *testing.T) {
	var got map[string]string
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &got); err != nil {
			t.Errorf("bad body %s", data)
		}
		if calls > 1 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"nick":"Nickname already taken"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"7a1e2a0e-3c1b-4a38-9a2c-111111111111"}`))
	}))
	defer srv.Close()

	api := clients.NewBaseClient(srv.URL)
	if err := signup(context.Background(), api, "alice", "http://localhost:3001"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if got["nick"] != "alice" || got["url"] != "http://localhost:3001" {
		t.Errorf("request = %v", got)
	}
	if err := signup(context.Background(), api, "alice", "http://localhost:3001"); err != nil {
		t.Errorf("duplicate signup should be tolerated: %v", err)
	}
}

func TestSignupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := signup(context.Background(), clients.NewBaseClient(srv.URL), "alice", "http://x")
	var statusErr *clients.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v, want a 500 status error", err)
	}
}
