// Package control serves the game operations over Connect RPC so tools like
// quizctl can drive a running server. Messages are protobuf well-known types.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mcdev12/quizrunner/go/internal/game/coordinator"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

const ServiceName = "quiz.v1.GameControlService"

const (
	GetStateProcedure        = "/" + ServiceName + "/GetState"
	StartGameProcedure       = "/" + ServiceName + "/StartGame"
	StopGameProcedure        = "/" + ServiceName + "/StopGame"
	PauseGameProcedure       = "/" + ServiceName + "/PauseGame"
	ContinueGameProcedure    = "/" + ServiceName + "/ContinueGame"
	NextRoundProcedure       = "/" + ServiceName + "/NextRound"
	PreviousRoundProcedure   = "/" + ServiceName + "/PreviousRound"
	ResetGameProcedure       = "/" + ServiceName + "/ResetGame"
	AddPlayerProcedure       = "/" + ServiceName + "/AddPlayer"
	RemovePlayerProcedure    = "/" + ServiceName + "/RemovePlayer"
	SurrenderPlayerProcedure = "/" + ServiceName + "/SurrenderPlayer"
	RejoinPlayerProcedure    = "/" + ServiceName + "/RejoinPlayer"
)

// Game is the part of the coordinator the control service drives.
type Game interface {
	Snapshot(ctx context.Context) (models.GameState, error)
	AddPlayer(ctx context.Context, nick, endpoint string) (uuid.UUID, error)
	RemovePlayer(ctx context.Context, id uuid.UUID) error
	PlayerSurrender(ctx context.Context, id uuid.UUID) error
	RejoinPlayer(ctx context.Context, id uuid.UUID) error
	StartGame(ctx context.Context, mode string) error
	StopGame(ctx context.Context) error
	PauseGame(ctx context.Context) error
	ContinueGame(ctx context.Context) error
	NextRound(ctx context.Context) error
	PreviousRound(ctx context.Context) error
	ResetGame(ctx context.Context) error
}

// Service implements GameControlService on top of a Game.
type Service struct {
	game Game
}

func NewService(game Game) *Service {
	return &Service{game: game}
}

// NewHandler builds an HTTP handler serving every procedure of the service,
// and returns the path to mount it on.
func NewHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GetStateProcedure, connect.NewUnaryHandler(GetStateProcedure, svc.GetState, opts...))
	mux.Handle(StartGameProcedure, connect.NewUnaryHandler(StartGameProcedure, svc.StartGame, opts...))
	mux.Handle(StopGameProcedure, connect.NewUnaryHandler(StopGameProcedure, svc.gameAction(svc.game.StopGame), opts...))
	mux.Handle(PauseGameProcedure, connect.NewUnaryHandler(PauseGameProcedure, svc.gameAction(svc.game.PauseGame), opts...))
	mux.Handle(ContinueGameProcedure, connect.NewUnaryHandler(ContinueGameProcedure, svc.gameAction(svc.game.ContinueGame), opts...))
	mux.Handle(NextRoundProcedure, connect.NewUnaryHandler(NextRoundProcedure, svc.gameAction(svc.game.NextRound), opts...))
	mux.Handle(PreviousRoundProcedure, connect.NewUnaryHandler(PreviousRoundProcedure, svc.gameAction(svc.game.PreviousRound), opts...))
	mux.Handle(ResetGameProcedure, connect.NewUnaryHandler(ResetGameProcedure, svc.gameAction(svc.game.ResetGame), opts...))
	mux.Handle(AddPlayerProcedure, connect.NewUnaryHandler(AddPlayerProcedure, svc.AddPlayer, opts...))
	mux.Handle(RemovePlayerProcedure, connect.NewUnaryHandler(RemovePlayerProcedure, svc.playerAction(svc.game.RemovePlayer), opts...))
	mux.Handle(SurrenderPlayerProcedure, connect.NewUnaryHandler(SurrenderPlayerProcedure, svc.playerAction(svc.game.PlayerSurrender), opts...))
	mux.Handle(RejoinPlayerProcedure, connect.NewUnaryHandler(RejoinPlayerProcedure, svc.playerAction(svc.game.RejoinPlayer), opts...))
	return "/" + ServiceName + "/", mux
}

func (s *Service) GetState(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	state, err := s.game.Snapshot(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	out, err := encodeState(state)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

func (s *Service) StartGame(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[emptypb.Empty], error) {
	if err := s.game.StartGame(ctx, req.Msg.GetValue()); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// AddPlayer takes a struct with "nick" and "url" string fields and returns
// the new player id.
func (s *Service) AddPlayer(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[wrapperspb.StringValue], error) {
	fields := req.Msg.GetFields()
	nick := fields["nick"].GetStringValue()
	url := fields["url"].GetStringValue()

	id, err := s.game.AddPlayer(ctx, nick, url)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(wrapperspb.String(id.String())), nil
}

func (s *Service) gameAction(action func(context.Context) error) func(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	return func(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
		if err := action(ctx); err != nil {
			return nil, toConnectError(err)
		}
		return connect.NewResponse(&emptypb.Empty{}), nil
	}
}

func (s *Service) playerAction(action func(context.Context, uuid.UUID) error) func(context.Context, *connect.Request[wrapperspb.StringValue]) (*connect.Response[emptypb.Empty], error) {
	return func(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[emptypb.Empty], error) {
		id, err := uuid.Parse(req.Msg.GetValue())
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid player id: %w", err))
		}
		if err := action(ctx, id); err != nil {
			return nil, toConnectError(err)
		}
		return connect.NewResponse(&emptypb.Empty{}), nil
	}
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, coordinator.ErrDuplicateParticipant):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, coordinator.ErrPlayerNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, coordinator.ErrInvalidParticipant), errors.Is(err, coordinator.ErrInvalidMode):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, coordinator.ErrCoordinatorStopped):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		log.Error().Err(err).Msg("control request failed")
		return connect.NewError(connect.CodeInternal, err)
	}
}

// encodeState converts a snapshot to a Struct through its JSON form, so the
// field names match the HTTP API.
func encodeState(state models.GameState) (*structpb.Struct, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return structpb.NewStruct(fields)
}

// DecodeState reverses encodeState.
func DecodeState(s *structpb.Struct) (models.GameState, error) {
	var state models.GameState
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return state, fmt.Errorf("failed to marshal state struct: %w", err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("failed to decode state: %w", err)
	}
	return state, nil
}
