package search

import (
	"math/rand"
	"sort"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/eval"
)

// tacticalPriority is the move priority above which a quiet move counts as
// tactical during playouts.
const tacticalPriority board.MovePriority = 100

// strategy is the hook record that distinguishes engine flavours. The RL
// engine differs from the plain engine only in these four hooks; board,
// arena and evaluator are shared.
type strategy struct {
	// selectionBias perturbs a child's UCB1 score during selection. The move
	// is scored on the board it is about to be played on.
	selectionBias func(b *board.Board, m board.Move) float64
	// orderScore ranks candidate moves for expansion, higher first.
	orderScore func(b *board.Board, m board.Move) float64
	// samplePlayout picks the next move during a playout.
	samplePlayout func(rnd *rand.Rand, b *board.Board, moves []board.Move) board.Move
	// finalBonus perturbs the composite score during final move selection.
	finalBonus func(b *board.Board, m board.Move) float64
}

// plainStrategy returns the hooks of the plain MCTS engine: priority-ordered
// expansion, the categorical playout sampler and no score perturbation.
func plainStrategy(e eval.Evaluator) strategy {
	return strategy{
		selectionBias: func(*board.Board, board.Move) float64 { return 0 },
		orderScore: func(b *board.Board, m board.Move) float64 {
			return float64(e.MovePriority(b, m))
		},
		samplePlayout: categoricalSampler(e),
		finalBonus:    func(*board.Board, board.Move) float64 { return 0 },
	}
}

// orderMoves returns the moves sorted by descending strategy score. Scores
// are computed once per move; ties preserve generation order, which is
// deterministic.
func (s strategy) orderMoves(b *board.Board, moves []board.Move) []board.Move {
	type scored struct {
		m     board.Move
		score float64
	}
	list := make([]scored, len(moves))
	for i, m := range moves {
		list[i] = scored{m: m, score: s.orderScore(b, m)}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	ret := make([]board.Move, len(list))
	for i, e := range list {
		ret[i] = e.m
	}
	return ret
}

// categoricalSampler returns the playout move picker of the plain engine.
// Moves are bucketed by applying each to a scratch board: an available mate
// is taken deterministically; then checks at 0.7, captures at 0.8 biased
// toward the best capture, tactical moves at 0.6, and finally any quiet move.
func categoricalSampler(e eval.Evaluator) func(rnd *rand.Rand, b *board.Board, moves []board.Move) board.Move {
	return func(rnd *rand.Rand, b *board.Board, moves []board.Move) board.Move {
		var mates, checks, captures, tactical, quiet []board.Move

		opponent := b.Turn().Opponent()
		for _, m := range moves {
			scratch := b.Snapshot()
			if !scratch.PushMove(m) {
				continue
			}
			switch {
			case scratch.IsCheckmate():
				mates = append(mates, m)
			case scratch.InCheck(opponent):
				checks = append(checks, m)
			case !b.At(m.To).IsEmpty():
				captures = append(captures, m)
			case e.MovePriority(b, m) > tacticalPriority:
				tactical = append(tactical, m)
			default:
				quiet = append(quiet, m)
			}
		}

		switch {
		case len(mates) > 0:
			return mates[rnd.Intn(len(mates))]
		case len(checks) > 0 && rnd.Float64() < 0.7:
			return checks[rnd.Intn(len(checks))]
		case len(captures) > 0 && rnd.Float64() < 0.8:
			board.SortByPriority(captures, e.PriorityFn(b))
			if rnd.Float64() < 0.7 {
				return captures[0]
			}
			return captures[rnd.Intn(len(captures))]
		case len(tactical) > 0 && rnd.Float64() < 0.6:
			return tactical[rnd.Intn(len(tactical))]
		case len(quiet) > 0:
			return quiet[rnd.Intn(len(quiet))]
		default:
			return moves[0]
		}
	}
}
