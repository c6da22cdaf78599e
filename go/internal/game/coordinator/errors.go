package coordinator

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrInvalidParticipant   = errors.New("invalid participant")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrInvalidMode          = errors.New("invalid game mode")
	ErrCoordinatorStopped   = errors.New("coordinator stopped")
)

// DuplicateParticipantError reports which signup fields are already taken.
type DuplicateParticipantError struct {
	Nick     string
	Endpoint string
}

func (e *DuplicateParticipantError) Error() string {
	var taken []string
	if e.Nick != "" {
		taken = append(taken, "nick "+e.Nick)
	}
	if e.Endpoint != "" {
		taken = append(taken, "url "+e.Endpoint)
	}
	return "already registered: " + strings.Join(taken, ", ")
}

func (e *DuplicateParticipantError) Unwrap() error {
	return ErrDuplicateParticipant
}
