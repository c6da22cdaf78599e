package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mcdev12/quizrunner/go/internal/game/bus"
	"github.com/mcdev12/quizrunner/go/internal/game/events"
)

var stateCmd = &cobra.Command{
	Use:     "state",
	Aliases: []string{"scores"},
	Short:   "Show the scoreboard",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := newClient().GetState(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get state: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderState(state))
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start [demo|full]",
	Short: "Start a new game",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := "demo"
		if len(args) == 1 {
			mode = args[0]
		}
		if err := newClient().StartGame(cmd.Context(), mode); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("game started in "+mode+" mode"))
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <nick> <url>",
	Short: "Sign up a player",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := newClient().AddPlayer(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to add player: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id.String())
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [event-type...]",
	Short: "Follow game events from the NATS bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bus.DefaultJetStreamConfig()
		cfg.URL = natsURL
		publisher, err := bus.NewJetStreamPublisher(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer publisher.Close()

		types := make([]events.Type, 0, len(args))
		for _, a := range args {
			types = append(types, events.Type(a))
		}
		out := cmd.OutOrStdout()
		return publisher.Watch(cmd.Context(), func(ev events.Event) {
			fmt.Fprintln(out, renderEvent(ev))
		}, types...)
	},
}

// gameCommand builds a command for an operation without arguments.
func gameCommand(use, short, done string, op func(c context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := op(cmd.Context()); err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(done))
			return nil
		},
	}
}

// playerCommand builds a command taking a single player id.
func playerCommand(use, short, done string, op func(c context.Context, id uuid.UUID) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <player-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid player id %q: %w", args[0], err)
			}
			if err := op(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(done))
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(stateCmd, startCmd, addCmd, watchCmd)

	rootCmd.AddCommand(
		gameCommand("stop", "Stop the game", "game stopped", func(c context.Context) error { return newClient().StopGame(c) }),
		gameCommand("pause", "Pause the game", "game paused", func(c context.Context) error { return newClient().PauseGame(c) }),
		gameCommand("continue", "Continue a paused game", "game continued", func(c context.Context) error { return newClient().ContinueGame(c) }),
		gameCommand("next", "Advance to the next round", "round advanced", func(c context.Context) error { return newClient().NextRound(c) }),
		gameCommand("prev", "Go back one round", "round reverted", func(c context.Context) error { return newClient().PreviousRound(c) }),
		gameCommand("reset", "Reset every score and log", "game reset", func(c context.Context) error { return newClient().ResetGame(c) }),

		playerCommand("remove", "Remove a player", "player removed", func(c context.Context, id uuid.UUID) error { return newClient().RemovePlayer(c, id) }),
		playerCommand("surrender", "Take a player out of the game", "player surrendered", func(c context.Context, id uuid.UUID) error { return newClient().SurrenderPlayer(c, id) }),
		playerCommand("rejoin", "Bring a surrendered player back", "player rejoined", func(c context.Context, id uuid.UUID) error { return newClient().RejoinPlayer(c, id) }),
	)
}
