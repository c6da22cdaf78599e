// Command quizctl drives a running quizrunner server over its control service
// and follows game events from the NATS bus.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mcdev12/quizrunner/go/internal/game/control"
	"github.com/mcdev12/quizrunner/go/internal/game/gateway"
)

var (
	serverURL string
	password  string
	natsURL   string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "quizctl",
	Short: "Control a quizrunner game",
	Long: `quizctl talks to a quizrunner server to inspect the scoreboard,
manage players and move the game through its rounds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", envOr("QUIZ_SERVER", "http://localhost:3000"), "quizrunner base URL")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", os.Getenv("QUIZ_ADMIN_PASSWORD"), "admin password")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats", envOr("NATS_URL", "nats://localhost:4222"), "NATS URL for watch")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}

func newClient() *control.Client {
	var opts []connect.ClientOption
	if password != "" {
		opts = append(opts, control.WithBasicAuth(gateway.AdminUser, password))
	}
	return control.NewClient(&http.Client{Timeout: timeout}, serverURL, opts...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
