// Package events defines the game events the coordinator publishes to
// listeners, the websocket gateway and the NATS bridge.
package events

import (
	"time"

	"github.com/mcdev12/quizrunner/go/internal/models"
)

// PlayerJoinedPayload is the payload for a PlayerJoined event
type PlayerJoinedPayload struct {
	PlayerID string    `json:"player_id"`
	Nick     string    `json:"nick"`
	Endpoint string    `json:"url"`
	JoinedAt time.Time `json:"joined_at"`
}

// PlayerStatusPayload is shared by the left, rejoined and removed events
type PlayerStatusPayload struct {
	PlayerID string `json:"player_id"`
	Nick     string `json:"nick"`
	Playing  bool   `json:"playing"`
}

// PlayerEndpointChangedPayload is the payload for a PlayerEndpointChanged event
type PlayerEndpointChangedPayload struct {
	PlayerID    string `json:"player_id"`
	Nick        string `json:"nick"`
	OldEndpoint string `json:"old_url"`
	Endpoint    string `json:"url"`
}

// PlayerAnswerPayload carries the attempt a scheduler just scored
type PlayerAnswerPayload struct {
	PlayerID       string            `json:"player_id"`
	Nick           string            `json:"nick"`
	Score          int               `json:"score"`
	PacingInterval int               `json:"pacing_interval_ms"`
	Entry          models.AttemptLog `json:"entry"`
}

// GameStatusPayload is the payload for game lifecycle events
type GameStatusPayload struct {
	Status    models.GameStatus `json:"status"`
	Mode      models.GameMode   `json:"mode,omitempty"`
	Round     int               `json:"round"`
	StartedAt *time.Time        `json:"started_at,omitempty"`
}

// RoundChangedPayload is the payload for a RoundChanged event
type RoundChangedPayload struct {
	PreviousRound int       `json:"previous_round"`
	Round         int       `json:"round"`
	MaxRounds     int       `json:"max_rounds"`
	StartedAt     time.Time `json:"started_at"`
}
