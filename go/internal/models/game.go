package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameStatus defines the lifecycle status of the game.
type GameStatus string

const (
	GameStatusStopped GameStatus = "stopped"
	GameStatusPlaying GameStatus = "playing"
	GameStatusPaused  GameStatus = "paused"
)

// GameMode selects which challenge catalog is eligible.
type GameMode string

const (
	GameModeDemo GameMode = "demo"
	GameModeFull GameMode = "full"
)

// ParseGameMode accepts "demo" and "full". "game" is kept as an alias for full
// since older state files and clients still send it.
func ParseGameMode(s string) (GameMode, error) {
	switch s {
	case "", string(GameModeDemo):
		return GameModeDemo, nil
	case string(GameModeFull), "game":
		return GameModeFull, nil
	default:
		return "", fmt.Errorf("unknown game mode %q", s)
	}
}

// GameState is the canonical state of a running quiz. Only the coordinator mutates it.
type GameState struct {
	Status         GameStatus `json:"status"`
	Mode           GameMode   `json:"mode,omitempty"`
	Round          int        `json:"round"`
	GameStartedAt  *time.Time `json:"game_started_at,omitempty"`
	RoundStartedAt *time.Time `json:"round_started_at,omitempty"`
	Players        []Player   `json:"players"`
}

// NewGameState returns the empty default state used when nothing was persisted.
func NewGameState() GameState {
	return GameState{
		Status:  GameStatusStopped,
		Round:   0,
		Players: []Player{},
	}
}

// FindPlayer returns a pointer into Players and its index, or nil and -1.
func (s *GameState) FindPlayer(id uuid.UUID) (*Player, int) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i], i
		}
	}
	return nil, -1
}

// Clone returns a deep copy that shares no slices or pointers with s.
func (s GameState) Clone() GameState {
	out := s
	out.GameStartedAt = cloneTime(s.GameStartedAt)
	out.RoundStartedAt = cloneTime(s.RoundStartedAt)
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
