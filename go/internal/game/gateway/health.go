package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// HandleHealth reports the status of every named check. The game itself is
// always checked.
func HandleHealth(game Game, checks map[string]HealthCheck) http.HandlerFunc {
	type result struct {
		Status string `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		results := map[string]result{"game": {Status: "ok"}}
		status := http.StatusOK

		if _, err := game.Snapshot(ctx); err != nil {
			log.Error().Err(err).Str("name", "game").Msg("health check failed")
			results["game"] = result{Status: "error"}
			status = http.StatusServiceUnavailable
		}

		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Error().Err(err).Str("name", name).Msg("health check failed")
				results[name] = result{Status: "error"}
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = result{Status: "ok"}
		}

		writeJSON(w, status, results)
	}
}
