package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event represents the base structure for all game events
type Event struct {
	ID        string          `json:"id"`                  // Event UUID
	Type      Type            `json:"type"`                // Event type
	PlayerID  string          `json:"player_id,omitempty"` // Player UUID, empty for game-wide events
	Timestamp time.Time       `json:"timestamp"`           // Event creation time
	Data      json.RawMessage `json:"data"`                // Event-specific payload
}

// Type represents the type of game event
type Type string

const (
	TypePlayerJoined          Type = "player-joined"
	TypePlayerLeft            Type = "player-left"
	TypePlayerRejoined        Type = "player-rejoined"
	TypePlayerRemoved         Type = "player-removed"
	TypePlayerEndpointChanged Type = "player-endpoint-changed"
	TypePlayerAnswer          Type = "player-answer"
	TypeGameStarted           Type = "game-started"
	TypeGameStopped           Type = "game-stopped"
	TypeGamePaused            Type = "game-paused"
	TypeGameContinued         Type = "game-continued"
	TypeGameReset             Type = "game-reset"
	TypeRoundChanged          Type = "round-changed"
)

// New builds an event with a fresh id and the JSON encoding of payload.
func New(t Type, playerID uuid.UUID, at time.Time, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	ev := Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: at.UTC(),
		Data:      data,
	}
	if playerID != uuid.Nil {
		ev.PlayerID = playerID.String()
	}
	return ev, nil
}

// ParsePayload parses event data into the appropriate payload struct
func ParsePayload(ev Event) (any, error) {
	var payload any
	switch ev.Type {
	case TypePlayerJoined:
		payload = &PlayerJoinedPayload{}
	case TypePlayerLeft, TypePlayerRejoined, TypePlayerRemoved:
		payload = &PlayerStatusPayload{}
	case TypePlayerEndpointChanged:
		payload = &PlayerEndpointChangedPayload{}
	case TypePlayerAnswer:
		payload = &PlayerAnswerPayload{}
	case TypeGameStarted, TypeGameStopped, TypeGamePaused, TypeGameContinued, TypeGameReset:
		payload = &GameStatusPayload{}
	case TypeRoundChanged:
		payload = &RoundChangedPayload{}
	default:
		return nil, nil // Unknown event type
	}
	if err := json.Unmarshal(ev.Data, payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", ev.Type, err)
	}
	return payload, nil
}
