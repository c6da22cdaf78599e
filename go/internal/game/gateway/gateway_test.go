package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcdev12/quizrunner/go/internal/game/coordinator"
	"github.com/mcdev12/quizrunner/go/internal/game/events"
	"github.com/mcdev12/quizrunner/go/internal/game/listeners"
	"github.com/mcdev12/quizrunner/go/internal/game/scheduler"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

type idleRunner struct{ gen uint64 }

func (r *idleRunner) Start() {}
func (r *idleRunner) Pause() {}
func (r *idleRunner) Continue() {}
func (r *idleRunner) Stop() {}
func (r *idleRunner) SetRound(int) {}
func (r *idleRunner) SetEndpoint(string) {}
func (r *idleRunner) Generation() uint64 { return r.gen }

type discardSnapshots struct{}

func (discardSnapshots) Enqueue(models.GameState) {}

type testEnv struct {
	registry *listeners.Registry
	game     *coordinator.Coordinator
	server   *httptest.Server
	manager  *ConnectionManager
}

func newTestEnv(t *testing.T, passwordHash string) *testEnv {
	t.Helper()

	registry := listeners.NewRegistry()
	game := coordinator.New(models.NewGameState(), registry, discardSnapshots{}, coordinator.Options{
		NewRunner: func(_ context.Context, cfg scheduler.Config, _ chan<- scheduler.Answer) coordinator.Runner {
			return &idleRunner{gen: cfg.Generation}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		game.Run(ctx)
	}()

	manager := NewConnectionManager(registry, game, DefaultConnectionConfig())
	mux := http.NewServeMux()
	NewAPIHandler(game, NewAdminAuth(passwordHash)).RegisterRoutes(mux)
	NewWebSocketHandler(manager).RegisterRoutes(mux)
	mux.HandleFunc("GET /health", HandleHealth(game, nil))
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		manager.CloseAll()
		server.Close()
		cancel()
		<-done
	})

	return &testEnv{registry: registry, game: game, server: server, manager: manager}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	return e.doAuth(t, method, path, body, "", "")
}

func (e *testEnv) doAuth(t *testing.T, method, path string, body any, user, password string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if user != "" {
		req.SetBasicAuth(user, password)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) signup(t *testing.T, nick, url string) uuid.UUID {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/players", map[string]string{"nick": nick, "url": url})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var out signupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	id, err := uuid.Parse(out.ID)
	if err != nil {
		t.Fatalf("signup returned bad id %q: %v", out.ID, err)
	}
	return id
}

func TestSignupAndState(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.signup(t, "alice", "http://alice.test")

	resp := env.do(t, http.MethodGet, "/api/state", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state status = %d", resp.StatusCode)
	}
	var state PublicState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if len(state.Players) != 1 || state.Players[0].Nick != "alice" {
		t.Fatalf("players = %+v, want alice", state.Players)
	}

	resp = env.do(t, http.MethodGet, "/api/game/state", nil)
	var full models.GameState
	if err := json.NewDecoder(resp.Body).Decode(&full); err != nil {
		t.Fatal(err)
	}
	if len(full.Players) != 1 || full.Players[0].ID != id {
		t.Fatalf("full state players = %+v, want alice", full.Players)
	}

	resp = env.do(t, http.MethodGet, "/api/players/"+id.String(), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("player status = %d", resp.StatusCode)
	}
	var p models.Player
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Nick != "alice" || p.Endpoint != "http://alice.test" {
		t.Errorf("player = %+v", p)
	}
}

func TestSignupDuplicate(t *testing.T) {
	env := newTestEnv(t, "")
	env.signup(t, "alice", "http://alice.test")

	resp := env.do(t, http.MethodPost, "/api/players", map[string]string{"nick": "ALICE", "url": "http://alice.test"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var fields map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		t.Fatal(err)
	}
	if fields["nick"] != "Nickname already taken" {
		t.Errorf("nick message = %q", fields["nick"])
	}
	if fields["url"] != "Player with URL already exists" {
		t.Errorf("url message = %q", fields["url"])
	}
}

func TestErrorStatuses(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing nick", http.MethodPost, "/api/players", map[string]string{"url": "http://x.test"}, http.StatusBadRequest},
		{"bad body", http.MethodPost, "/api/players", "not an object", http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/players/nope", nil, http.StatusBadRequest},
		{"unknown player", http.MethodGet, "/api/players/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown surrender", http.MethodPost, "/api/players/" + uuid.NewString() + "/surrender", nil, http.StatusNotFound},
		{"invalid mode", http.MethodPost, "/api/game/start", map[string]string{"mode": "hard"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestGameLifecycle(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.signup(t, "alice", "http://alice.test")

	steps := []struct {
		path   string
		body   any
		status models.GameStatus
		round  int
	}{
		{"/api/game/start", map[string]string{"mode": "full"}, models.GameStatusPlaying, 1},
		{"/api/game/next-round", nil, models.GameStatusPlaying, 2},
		{"/api/game/pause", nil, models.GameStatusPaused, 2},
		{"/api/game/continue", nil, models.GameStatusPlaying, 2},
		{"/api/game/previous-round", nil, models.GameStatusPlaying, 1},
		{"/api/game/stop", nil, models.GameStatusStopped, 0},
		{"/api/game/reset", nil, models.GameStatusStopped, 0},
	}
	for _, step := range steps {
		resp := env.do(t, http.MethodPost, step.path, step.body)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("%s status = %d", step.path, resp.StatusCode)
		}
		state, err := env.game.Snapshot(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if state.Status != step.status || state.Round != step.round {
			t.Fatalf("after %s: status=%s round=%d, want %s %d", step.path, state.Status, state.Round, step.status, step.round)
		}
	}

	resp := env.do(t, http.MethodPut, "/api/players/"+id.String()+"/url", map[string]string{"url": "http://alice2.test"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("change url status = %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodDelete, "/api/players/"+id.String(), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if _, err := env.game.Player(context.Background(), id); err == nil {
		t.Fatal("player still present after delete")
	}
}

func TestAdminAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, string(hash))

	resp := env.do(t, http.MethodPost, "/api/game/start", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no credentials: status = %d, want 401", resp.StatusCode)
	}
	resp = env.doAuth(t, http.MethodPost, "/api/game/start", nil, AdminUser, "wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", resp.StatusCode)
	}
	resp = env.doAuth(t, http.MethodPost, "/api/game/start", nil, AdminUser, "secret")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("admin: status = %d, want 204", resp.StatusCode)
	}

	// Player routes stay open.
	env.signup(t, "bob", "http://bob.test")
}

func TestPublicViewsHidePlayerIdentity(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, string(hash))
	alice := env.signup(t, "alice", "http://alice.test")
	private := []string{alice.String(), "http://alice.test"}

	assertHidden := func(t *testing.T, where string, body []byte, secrets ...string) {
		t.Helper()
		for _, secret := range secrets {
			if bytes.Contains(body, []byte(secret)) {
				t.Errorf("%s exposes %q: %s", where, secret, body)
			}
		}
	}

	resp := env.do(t, http.MethodGet, "/api/state", nil)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(body, []byte(`"alice"`)) {
		t.Fatalf("public state lacks nick: %s", body)
	}
	assertHidden(t, "/api/state", body, private...)

	resp = env.do(t, http.MethodGet, "/api/game/state", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous full state: status = %d, want 401", resp.StatusCode)
	}
	resp = env.doAuth(t, http.MethodGet, "/api/game/state", nil, AdminUser, "secret")
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(body, []byte(alice.String())) {
		t.Errorf("admin state lacks player id: %s", body)
	}

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, snapshot, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	assertHidden(t, "websocket snapshot", snapshot, private...)

	bob := env.signup(t, "bob", "http://bob.test")
	_, joined, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(joined, []byte(`"bob"`)) {
		t.Fatalf("joined event lacks nick: %s", joined)
	}
	assertHidden(t, "websocket event", joined, bob.String(), "http://bob.test", "player_id")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")
	resp := env.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	failing := HandleHealth(env.game, map[string]HealthCheck{
		"redis": func(context.Context) error { return context.DeadlineExceeded },
	})
	rec := httptest.NewRecorder()
	failing(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("failing check status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":{"status":"error"}`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

func TestWebSocketStream(t *testing.T) {
	env := newTestEnv(t, "")
	env.signup(t, "alice", "http://alice.test")

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msg := readMessage(t, conn)
	if msg.Type != MessageSnapshot || msg.State == nil {
		t.Fatalf("first message = %+v, want snapshot", msg)
	}
	if len(msg.State.Players) != 1 {
		t.Fatalf("snapshot players = %d, want 1", len(msg.State.Players))
	}

	env.signup(t, "bob", "http://bob.test")
	msg = readMessage(t, conn)
	if msg.Type != MessageEvent || msg.Event == nil || msg.Event.Type != events.TypePlayerJoined {
		t.Fatalf("message = %+v, want player-joined event", msg)
	}

	resp := env.do(t, http.MethodGet, "/ws/stats", nil)
	var stats map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats["total_connections"] != 1 || stats["listeners"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

func TestWebSocketCloseUnsubscribes(t *testing.T) {
	env := newTestEnv(t, "")

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	readMessage(t, conn)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.registry.Len() != 0 || env.manager.ConnectionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("listeners=%d connections=%d after close", env.registry.Len(), env.manager.ConnectionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
