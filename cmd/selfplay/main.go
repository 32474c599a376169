// selfplay plays the engine against itself from the starting position and
// logs the moves and result. Useful for exercising the search and, with -db,
// the game recorder.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/record"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/search"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/session"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var (
	timeLimit = flag.Duration("time", 2*time.Second, "Search time limit per move")
	sims      = flag.Int("sims", 3000, "Simulation cap per move")
	maxMoves  = flag.Int("moves", 200, "Half-move cap for the game")
	useRL     = flag.Bool("rl", false, "Use the RL-enhanced engine")
	seed      = flag.Int64("seed", 0, "Playout seed (0 = clock)")
	dbDir     = flag.String("db", "", "Badger directory for game recording (optional)")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	opts := search.Options{
		TimeLimit:      *timeLimit,
		MaxSimulations: *sims,
	}
	if *seed != 0 {
		opts.Seed = lang.Some(*seed)
	}

	sopts := []session.Option{
		session.WithSearchOptions(opts),
		session.WithMode("self_play"),
	}
	if *dbDir != "" {
		store, err := record.Open(*dbDir)
		if err != nil {
			logw.Exitf(ctx, "Failed to open recorder: %v", err)
		}
		defer store.Close()
		sopts = append(sopts, session.WithRecorder(store))
	}

	s := session.New(ctx, "selfplay", sopts...)
	if *useRL {
		s.EnableRL(ctx, true)
	}

	for i := 0; i < *maxMoves; i++ {
		m, ok := s.ChooseMove(ctx)
		if !ok {
			break
		}
		if !s.ApplyMove(ctx, m) {
			logw.Exitf(ctx, "Engine move rejected: %v", m)
		}
		logw.Infof(ctx, "%3d. %v", i+1, m)

		if s.Result().IsTerminal() {
			break
		}
	}

	result := s.Result()
	s.FinishGame(ctx, result)

	b := s.Board()
	logw.Infof(ctx, "Game over after %v half-moves: %v", len(b.Moves()), result)
	logw.Exitf(ctx, "selfplay exited")
}
