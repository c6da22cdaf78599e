package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/quizrunner/go/internal/models"
)

func sampleState() models.GameState {
	started := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	round := started.Add(3 * time.Minute)
	return models.GameState{
		Status:         models.GameStatusPlaying,
		Mode:           models.GameModeFull,
		Round:          3,
		GameStartedAt:  &started,
		RoundStartedAt: &round,
		Players: []models.Player{
			{
				ID:             uuid.New(),
				Nick:           "ada",
				Endpoint:       "http://ada.local:8080",
				Playing:        true,
				Score:          -11,
				PacingInterval: 5100,
				JoinedAt:       started,
				Log: []models.AttemptLog{
					{SequenceID: 2, Timestamp: round, ChallengeName: "vowels", ChallengeText: "Count the vowels: gopher", AnswerText: "2", Points: 4, ScoreAfter: -11, HTTPStatus: 200, PacingIntervalUsed: 5200, AccuracyRatio: 0.5},
					{SequenceID: 1, Timestamp: started, ChallengeText: "Uppercase the word: go", Points: -15, ScoreAfter: -15, ErrorMessage: "connection refused", PacingIntervalUsed: 5000},
				},
			},
			{
				ID:             uuid.New(),
				Nick:           "linus",
				Endpoint:       "http://linus.local:8080",
				PacingInterval: 5000,
				JoinedAt:       started,
				Log:            []models.AttemptLog{},
			},
		},
	}
}

func waitWritten(t *testing.T, w *Writer) {
	t.Helper()
	select {
	case <-w.Written():
	case <-time.After(5 * time.Second):
		t.Fatal("snapshot was not written")
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	state, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(models.NewGameState(), state); diff != "" {
		t.Errorf("default state mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"status":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	want := sampleState()

	data, err := Encode(want)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write(data); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"))
	for i := 0; i < 3; i++ {
		if err := store.Write([]byte(`{}`)); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected directory contents %v", names)
	}
}

func TestEnqueueKeepsLatest(t *testing.T) {
	w := NewWriter(NewFileStore(filepath.Join(t.TempDir(), "state.json")), nil)
	for round := 1; round <= 3; round++ {
		s := models.NewGameState()
		s.Round = round
		w.Enqueue(s)
	}

	select {
	case s := <-w.mailbox:
		if s.Round != 3 {
			t.Errorf("mailbox holds round %d, want 3", s.Round)
		}
	default:
		t.Fatal("mailbox empty")
	}
}

func TestWriterPersistsSnapshots(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	w := NewWriter(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	want := sampleState()
	w.Enqueue(want.Clone())
	waitWritten(t, w)

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestWriterFlushesPendingOnShutdown(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	w := NewWriter(store, nil)

	state := models.NewGameState()
	state.Round = 7
	w.Enqueue(state)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Round != 7 {
		t.Errorf("round = %d, want 7", got.Round)
	}
}

func TestWriteFailureStopsWriter(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing", "state.json"))
	w := NewWriter(store, nil)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	w.Enqueue(models.NewGameState())

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a write error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("writer kept running after a failed write")
	}
}

type recordingMirror struct {
	data chan []byte
	err  error
}

func (m *recordingMirror) Mirror(_ context.Context, data []byte) error {
	m.data <- data
	return m.err
}

func TestMirrorFailureIsNotFatal(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	mirror := &recordingMirror{data: make(chan []byte, 4), err: errors.New("mirror down")}
	w := NewWriter(store, mirror)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.Enqueue(models.NewGameState())
	waitWritten(t, w)
	w.Enqueue(sampleState())
	waitWritten(t, w)

	if len(mirror.data) != 2 {
		t.Errorf("mirror saw %d snapshots, want 2", len(mirror.data))
	}
	select {
	case err := <-done:
		t.Fatalf("writer stopped: %v", err)
	default:
	}
}

func TestRedisMirrorUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   -1,
	})
	m := NewRedisMirror(client, "")
	defer m.Close()

	if err := m.Mirror(context.Background(), []byte(`{}`)); err == nil {
		t.Error("expected an error from an unreachable redis")
	}
	if err := m.HealthCheck(context.Background()); err == nil {
		t.Error("expected health check to fail")
	}

	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	w := NewWriter(store, m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.Enqueue(models.NewGameState())
	waitWritten(t, w)
}
