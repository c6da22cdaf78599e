package events

import (
	"encoding/json"
	"fmt"
)

// privateFields are payload keys that identify or locate a player. A player's
// id is the only credential for their own routes, so it never leaves the
// server through public channels.
var privateFields = []string{"player_id", "url", "old_url"}

// Redact returns a copy of ev without the player id and without the private
// payload fields.
func Redact(ev Event) (Event, error) {
	out := ev
	out.PlayerID = ""
	if len(ev.Data) == 0 {
		return out, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(ev.Data, &fields); err != nil {
		return Event{}, fmt.Errorf("redact %s payload: %w", ev.Type, err)
	}
	for _, key := range privateFields {
		delete(fields, key)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return Event{}, fmt.Errorf("redact %s payload: %w", ev.Type, err)
	}
	out.Data = data
	return out, nil
}
