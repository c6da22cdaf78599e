package gateway

import (
	"time"

	"github.com/mcdev12/quizrunner/go/internal/models"
)

// PublicState is the game as anonymous observers see it. Players are known
// by nick only: their id and endpoint stay private.
type PublicState struct {
	Status         models.GameStatus `json:"status"`
	Mode           models.GameMode   `json:"mode,omitempty"`
	Round          int               `json:"round"`
	GameStartedAt  *time.Time        `json:"game_started_at,omitempty"`
	RoundStartedAt *time.Time        `json:"round_started_at,omitempty"`
	Players        []PublicPlayer    `json:"players"`
}

// PublicPlayer is a scoreboard row.
type PublicPlayer struct {
	Nick           string              `json:"nick"`
	Playing        bool                `json:"playing"`
	Score          int                 `json:"score"`
	PacingInterval int                 `json:"pacing_interval_ms"`
	JoinedAt       time.Time           `json:"joined_at"`
	Log            []models.AttemptLog `json:"log"`
}

func newPublicState(s models.GameState) PublicState {
	out := PublicState{
		Status:         s.Status,
		Mode:           s.Mode,
		Round:          s.Round,
		GameStartedAt:  s.GameStartedAt,
		RoundStartedAt: s.RoundStartedAt,
		Players:        make([]PublicPlayer, len(s.Players)),
	}
	for i, p := range s.Players {
		out.Players[i] = PublicPlayer{
			Nick:           p.Nick,
			Playing:        p.Playing,
			Score:          p.Score,
			PacingInterval: p.PacingInterval,
			JoinedAt:       p.JoinedAt,
			Log:            p.Log,
		}
	}
	return out
}
