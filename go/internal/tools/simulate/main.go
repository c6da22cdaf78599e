// Command simulate runs a set of example participant servers and signs them
// up with a quizrunner server, so a full game can be watched without real
// players.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/quizrunner/go/clients"
)

var nicks = []string{
	"CodeMaster007", "DebugWarrior", "BinaryBrawler", "ScriptSorcerer", "BitwiseBoss",
	"SyntaxSamurai", "CompileCommander", "HackHero", "NerdNinja", "GeekGenius",
	"AlgorithmAce", "CodeCrafter", "VariableViking", "FunctionFreak", "DataDynamo",
	"LogicLord", "PixelPioneer", "ByteBandit", "CipherChampion", "LoopLunatic",
	"RecursiveRanger", "CompileConqueror", "NullNinja", "RefactorRaptor", "SnippetSage",
	"DebuggerDiva", "BooleanBoss", "ScriptSlinger", "HexHacker", "TerminalTitan",
	"CodeCrusader", "AlgoAlchemist", "ScriptSensei", "BooleanBeast", "BinaryBaron",
	"RecursiveRuler", "LogicLover", "ArrayAvenger", "CryptoCraze", "RefactorRogue",
	"SyntaxSultan", "DebuggerDemon", "CompileCaptain", "CodeCrusher", "LoopLover",
	"DataDruid", "ScriptShaman", "HexHero", "TerminalTactician", "StackSurfer",
}

var opts struct {
	players  int
	server   string
	host     string
	basePort int
	thinkMin time.Duration
	thinkMax time.Duration
	seed     uint64
	verbose  bool
}

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run example participants against a quizrunner server",
	Long: `simulate starts one answer server per participant, cycling through the
expert, not-all-answers and intermittent-offline behaviours, and signs
each of them up. Start the game from quizctl or the admin page.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		return run(cmd.Context())
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVarP(&opts.players, "players", "n", 6, "number of participants (max 50)")
	f.StringVarP(&opts.server, "server", "s", "http://localhost:3000", "quizrunner base URL")
	f.StringVar(&opts.host, "host", "localhost", "host the participant servers are reachable on")
	f.IntVar(&opts.basePort, "base-port", 3001, "port of the first participant server")
	f.DurationVar(&opts.thinkMin, "think-min", time.Minute, "shortest time before an expert answers a new challenge")
	f.DurationVar(&opts.thinkMax, "think-max", 4*time.Minute, "longest time before an expert answers a new challenge")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks one)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every answer")
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	count := min(max(opts.players, 1), len(nicks))
	if opts.thinkMax < opts.thinkMin {
		return fmt.Errorf("think-max %s is below think-min %s", opts.thinkMax, opts.thinkMin)
	}
	seed := opts.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	log.Info().Int("players", count).Uint64("seed", seed).Msg("spawning participants")

	clock := clockwork.NewRealClock()
	think := ThinkTime{Min: opts.thinkMin, Max: opts.thinkMax}

	g, gctx := errgroup.WithContext(ctx)
	servers := make([]*fasthttp.Server, 0, count)
	players := make([]*Player, 0, count)

	for i := range count {
		kind := Kinds[i%len(Kinds)]
		p := NewPlayer(nicks[i], kind, think, clock, rand.New(rand.NewPCG(seed, uint64(i))))
		server := &fasthttp.Server{
			Handler: p.Handle,
			Name:    "quiz-simulate",
		}
		addr := fmt.Sprintf(":%d", opts.basePort+i)
		g.Go(func() error {
			log.Info().Str("nick", p.Nick).Str("kind", string(p.Kind)).Str("addr", addr).Msg("participant listening")
			if err := server.ListenAndServe(addr); err != nil {
				return fmt.Errorf("%s: %w", p.Nick, err)
			}
			return nil
		})
		servers = append(servers, server)
		players = append(players, p)
	}

	g.Go(func() error {
		api := clients.NewBaseClient(opts.server)
		api.SetHeader("Content-Type", "application/json")
		api.SetTimeout(5 * time.Second)
		for i, p := range players {
			url := fmt.Sprintf("http://%s:%d", opts.host, opts.basePort+i)
			if err := signup(gctx, api, p.Nick, url); err != nil {
				return err
			}
		}
		log.Info().Str("server", opts.server).Msg("all participants signed up, start the game to begin")
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		for _, s := range servers {
			if err := s.Shutdown(); err != nil {
				log.Warn().Err(err).Msg("participant shutdown failed")
			}
		}
		return nil
	})

	return g.Wait()
}

type signupResponse struct {
	ID string `json:"id"`
}

// signup registers a participant. A nick or URL that is already registered,
// for instance from an earlier run, is not an error.
func signup(ctx context.Context, api *clients.BaseClient, nick, url string) error {
	body, err := json.Marshal(map[string]string{"nick": nick, "url": url})
	if err != nil {
		return err
	}

	data, err := api.Post(ctx, "/api/players", bytes.NewReader(body))
	var statusErr *clients.StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest:
		log.Warn().Str("nick", nick).Str("response", statusErr.Body).Msg("participant already signed up")
		return nil
	case err != nil:
		return fmt.Errorf("failed to sign up %s: %w", nick, err)
	}

	var resp signupResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to decode signup response: %w", err)
	}
	log.Info().Str("nick", nick).Str("player_id", resp.ID).Str("url", url).Msg("participant signed up")
	return nil
}
