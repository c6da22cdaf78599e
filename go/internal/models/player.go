package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a quiz participant and the answer server they operate
type Player struct {
	ID             uuid.UUID    `json:"id"`
	Nick           string       `json:"nick"`
	Endpoint       string       `json:"url"`
	Playing        bool         `json:"playing"`
	Score          int          `json:"score"`
	PacingInterval int          `json:"pacing_interval_ms"`
	JoinedAt       time.Time    `json:"joined_at"`
	Log            []AttemptLog `json:"log"` // newest first
}

// AttemptLog records one asked-and-answered challenge for a player
type AttemptLog struct {
	SequenceID         int64     `json:"sequence_id"`
	Timestamp          time.Time `json:"timestamp"`
	ChallengeName      string    `json:"challenge_name,omitempty"`
	ChallengeText      string    `json:"challenge"`
	AnswerText         string    `json:"answer,omitempty"`
	Hint               string    `json:"hint,omitempty"` // set on wrong answers
	Points             int       `json:"points"`
	ScoreAfter         int       `json:"score_after"`
	HTTPStatus         int       `json:"http_status,omitempty"`
	ErrorMessage       string    `json:"error,omitempty"`
	PacingIntervalUsed int       `json:"pacing_interval_ms"`
	AccuracyRatio      float64   `json:"accuracy_ratio"`
}

// Clone returns a copy of p with its own log slice.
func (p Player) Clone() Player {
	out := p
	out.Log = make([]AttemptLog, len(p.Log))
	copy(out.Log, p.Log)
	return out
}

// LastSequence returns the sequence id of the newest log entry, or 0.
func (p Player) LastSequence() int64 {
	if len(p.Log) == 0 {
		return 0
	}
	return p.Log[0].SequenceID
}

// CorrectCount counts the attempts that earned points.
func (p Player) CorrectCount() int {
	n := 0
	for _, entry := range p.Log {
		if entry.Points > 0 {
			n++
		}
	}
	return n
}

// LogScore sums the points of every log entry. It always equals Score.
func (p Player) LogScore() int {
	total := 0
	for _, entry := range p.Log {
		total += entry.Points
	}
	return total
}
