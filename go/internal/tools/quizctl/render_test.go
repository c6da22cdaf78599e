package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/quizrunner/go/internal/game/events"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

func TestScoreboardOrder(t *testing.T) {
	players := []models.Player{
		{Nick: "carol", Score: 5},
		{Nick: "Bob", Score: 12},
		{Nick: "alice", Score: 12},
		{Nick: "dave", Score: -3},
	}

	got := scoreboard(players)
	var nicks []string
	for _, p := range got {
		nicks = append(nicks, p.Nick)
	}
	want := "alice,Bob,carol,dave"
	if strings.Join(nicks, ",") != want {
		t.Errorf("order = %v, want %s", nicks, want)
	}
	if players[0].Nick != "carol" {
		t.Error("scoreboard reordered its input")
	}
}

func TestRenderState(t *testing.T) {
	state := models.GameState{
		Status: models.GameStatusPlaying,
		Mode:   models.GameModeFull,
		Round:  3,
		Players: []models.Player{
			{ID: uuid.New(), Nick: "alice", Score: 7, Playing: true, PacingInterval: 4900,
				Log: []models.AttemptLog{{SequenceID: 1, Points: 7}}},
			{ID: uuid.New(), Nick: "bob", Score: -10, Playing: false, PacingInterval: 5100},
		},
	}

	out := renderState(state)
	for _, want := range []string{"PLAYING", "round 3/9", "full", "alice", "bob", "4900ms", "1/1", "surrendered"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "alice") > strings.Index(out, "bob") {
		t.Errorf("alice should rank above bob:\n%s", out)
	}
}

func TestRenderStateEmpty(t *testing.T) {
	out := renderState(models.NewGameState())
	if !strings.Contains(out, "no players signed up") {
		t.Errorf("output = %q", out)
	}
}

func TestRenderEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	ev, err := events.New(events.TypePlayerAnswer, uuid.New(), at, events.PlayerAnswerPayload{
		Nick:           "alice",
		Score:          12,
		PacingInterval: 4800,
		Entry:          models.AttemptLog{Points: 4},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := renderEvent(ev)
	for _, want := range []string{"12:30:00", "player-answer", "alice", "+4", "score=12", "pace=4800ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
