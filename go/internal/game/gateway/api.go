// Package gateway exposes the game to the presentation layer: a JSON API for
// the operations players and admins trigger, and a WebSocket stream of game
// events.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/internal/game/coordinator"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

// Game is the part of the coordinator the gateway drives.
type Game interface {
	Snapshot(ctx context.Context) (models.GameState, error)
	Player(ctx context.Context, id uuid.UUID) (models.Player, error)
	AddPlayer(ctx context.Context, nick, endpoint string) (uuid.UUID, error)
	RemovePlayer(ctx context.Context, id uuid.UUID) error
	PlayerSurrender(ctx context.Context, id uuid.UUID) error
	RejoinPlayer(ctx context.Context, id uuid.UUID) error
	ChangeEndpoint(ctx context.Context, id uuid.UUID, endpoint string) error
	StartGame(ctx context.Context, mode string) error
	StopGame(ctx context.Context) error
	PauseGame(ctx context.Context) error
	ContinueGame(ctx context.Context) error
	NextRound(ctx context.Context) error
	PreviousRound(ctx context.Context) error
	ResetGame(ctx context.Context) error
}

type signupRequest struct {
	Nick string `json:"nick"`
	URL  string `json:"url"`
}

type signupResponse struct {
	ID string `json:"id"`
}

type endpointRequest struct {
	URL string `json:"url"`
}

type startRequest struct {
	Mode string `json:"mode"`
}

// APIHandler serves the JSON API.
type APIHandler struct {
	game  Game
	admin *AdminAuth
}

func NewAPIHandler(game Game, admin *AdminAuth) *APIHandler {
	return &APIHandler{game: game, admin: admin}
}

// RegisterRoutes registers the API routes with an HTTP mux
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/state", h.handlePublicState)
	mux.HandleFunc("GET /api/players/{id}", h.handlePlayer)
	mux.HandleFunc("POST /api/players", h.handleSignup)
	mux.HandleFunc("POST /api/players/{id}/surrender", h.playerAction(h.game.PlayerSurrender))
	mux.HandleFunc("POST /api/players/{id}/rejoin", h.playerAction(h.game.RejoinPlayer))
	mux.HandleFunc("PUT /api/players/{id}/url", h.handleChangeEndpoint)
	mux.Handle("DELETE /api/players/{id}", h.admin.Require(h.playerAction(h.game.RemovePlayer)))

	mux.Handle("GET /api/game/state", h.admin.Require(http.HandlerFunc(h.handleState)))
	mux.Handle("POST /api/game/start", h.admin.Require(http.HandlerFunc(h.handleStart)))
	mux.Handle("POST /api/game/stop", h.admin.Require(h.gameAction(h.game.StopGame)))
	mux.Handle("POST /api/game/pause", h.admin.Require(h.gameAction(h.game.PauseGame)))
	mux.Handle("POST /api/game/continue", h.admin.Require(h.gameAction(h.game.ContinueGame)))
	mux.Handle("POST /api/game/next-round", h.admin.Require(h.gameAction(h.game.NextRound)))
	mux.Handle("POST /api/game/previous-round", h.admin.Require(h.gameAction(h.game.PreviousRound)))
	mux.Handle("POST /api/game/reset", h.admin.Require(h.gameAction(h.game.ResetGame)))
}

func (h *APIHandler) handlePublicState(w http.ResponseWriter, r *http.Request) {
	state, err := h.game.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPublicState(state))
}

// handleState serves the full state, player ids included, to admins.
func (h *APIHandler) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.game.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) handlePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	player, err := h.game.Player(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *APIHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id, err := h.game.AddPlayer(r.Context(), req.Nick, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signupResponse{ID: id.String()})
}

func (h *APIHandler) handleChangeEndpoint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req endpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.game.ChangeEndpoint(r.Context(), id, req.URL); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	if err := h.game.StartGame(r.Context(), req.Mode); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) playerAction(action func(context.Context, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := action(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *APIHandler) gameAction(action func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid player id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps coordinator errors onto HTTP statuses. Duplicate signups
// get a field-keyed body the signup form can show next to each input.
func writeError(w http.ResponseWriter, err error) {
	var dup *coordinator.DuplicateParticipantError
	switch {
	case errors.As(err, &dup):
		fields := map[string]string{}
		if dup.Nick != "" {
			fields["nick"] = "Nickname already taken"
		}
		if dup.Endpoint != "" {
			fields["url"] = "Player with URL already exists"
		}
		writeJSON(w, http.StatusBadRequest, fields)
	case errors.Is(err, coordinator.ErrPlayerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, coordinator.ErrInvalidParticipant), errors.Is(err, coordinator.ErrInvalidMode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, coordinator.ErrCoordinatorStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "game unavailable", http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
