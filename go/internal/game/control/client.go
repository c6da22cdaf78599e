package control

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mcdev12/quizrunner/go/internal/models"
)

// Client calls GameControlService.
type Client struct {
	getState        *connect.Client[emptypb.Empty, structpb.Struct]
	startGame       *connect.Client[wrapperspb.StringValue, emptypb.Empty]
	stopGame        *connect.Client[emptypb.Empty, emptypb.Empty]
	pauseGame       *connect.Client[emptypb.Empty, emptypb.Empty]
	continueGame    *connect.Client[emptypb.Empty, emptypb.Empty]
	nextRound       *connect.Client[emptypb.Empty, emptypb.Empty]
	previousRound   *connect.Client[emptypb.Empty, emptypb.Empty]
	resetGame       *connect.Client[emptypb.Empty, emptypb.Empty]
	addPlayer       *connect.Client[structpb.Struct, wrapperspb.StringValue]
	removePlayer    *connect.Client[wrapperspb.StringValue, emptypb.Empty]
	surrenderPlayer *connect.Client[wrapperspb.StringValue, emptypb.Empty]
	rejoinPlayer    *connect.Client[wrapperspb.StringValue, emptypb.Empty]
}

// NewClient creates a client for the service at baseURL, for example
// http://localhost:3000.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		getState:        connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+GetStateProcedure, opts...),
		startGame:       connect.NewClient[wrapperspb.StringValue, emptypb.Empty](httpClient, baseURL+StartGameProcedure, opts...),
		stopGame:        connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+StopGameProcedure, opts...),
		pauseGame:       connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+PauseGameProcedure, opts...),
		continueGame:    connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+ContinueGameProcedure, opts...),
		nextRound:       connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+NextRoundProcedure, opts...),
		previousRound:   connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+PreviousRoundProcedure, opts...),
		resetGame:       connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+ResetGameProcedure, opts...),
		addPlayer:       connect.NewClient[structpb.Struct, wrapperspb.StringValue](httpClient, baseURL+AddPlayerProcedure, opts...),
		removePlayer:    connect.NewClient[wrapperspb.StringValue, emptypb.Empty](httpClient, baseURL+RemovePlayerProcedure, opts...),
		surrenderPlayer: connect.NewClient[wrapperspb.StringValue, emptypb.Empty](httpClient, baseURL+SurrenderPlayerProcedure, opts...),
		rejoinPlayer:    connect.NewClient[wrapperspb.StringValue, emptypb.Empty](httpClient, baseURL+RejoinPlayerProcedure, opts...),
	}
}

// WithBasicAuth adds admin credentials to every call.
func WithBasicAuth(user, password string) connect.ClientOption {
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Basic "+token)
			return next(ctx, req)
		}
	}))
}

func (c *Client) GetState(ctx context.Context) (models.GameState, error) {
	resp, err := c.getState.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return models.GameState{}, err
	}
	return DecodeState(resp.Msg)
}

func (c *Client) StartGame(ctx context.Context, mode string) error {
	_, err := c.startGame.CallUnary(ctx, connect.NewRequest(wrapperspb.String(mode)))
	return err
}

func (c *Client) StopGame(ctx context.Context) error {
	return callEmpty(ctx, c.stopGame)
}

func (c *Client) PauseGame(ctx context.Context) error {
	return callEmpty(ctx, c.pauseGame)
}

func (c *Client) ContinueGame(ctx context.Context) error {
	return callEmpty(ctx, c.continueGame)
}

func (c *Client) NextRound(ctx context.Context) error {
	return callEmpty(ctx, c.nextRound)
}

func (c *Client) PreviousRound(ctx context.Context) error {
	return callEmpty(ctx, c.previousRound)
}

func (c *Client) ResetGame(ctx context.Context) error {
	return callEmpty(ctx, c.resetGame)
}

func (c *Client) AddPlayer(ctx context.Context, nick, url string) (uuid.UUID, error) {
	msg, err := structpb.NewStruct(map[string]any{"nick": nick, "url": url})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.addPlayer.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(resp.Msg.GetValue())
}

func (c *Client) RemovePlayer(ctx context.Context, id uuid.UUID) error {
	return callPlayer(ctx, c.removePlayer, id)
}

func (c *Client) SurrenderPlayer(ctx context.Context, id uuid.UUID) error {
	return callPlayer(ctx, c.surrenderPlayer, id)
}

func (c *Client) RejoinPlayer(ctx context.Context, id uuid.UUID) error {
	return callPlayer(ctx, c.rejoinPlayer, id)
}

func callEmpty(ctx context.Context, client *connect.Client[emptypb.Empty, emptypb.Empty]) error {
	_, err := client.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	return err
}

func callPlayer(ctx context.Context, client *connect.Client[wrapperspb.StringValue, emptypb.Empty], id uuid.UUID) error {
	_, err := client.CallUnary(ctx, connect.NewRequest(wrapperspb.String(id.String())))
	return err
}
