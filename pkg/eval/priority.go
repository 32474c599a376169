package eval

import (
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
)

// PawnUnits returns the material value of a piece kind in whole pawns, as
// used by move priorities. The King counts zero: it cannot be captured.
func PawnUnits(k board.Kind) int {
	switch k {
	case board.Pawn:
		return 1
	case board.Knight, board.Bishop:
		return 3
	case board.Rook:
		return 5
	case board.Queen:
		return 9
	default:
		return 0
	}
}

// MovePriority scores a candidate move for ordering: captures by victim
// value, promotions, check-giving moves and central destinations. Ties are
// broken by list order, which is deterministic.
func (Evaluator) MovePriority(b *board.Board, m board.Move) board.MovePriority {
	score := 0

	if target := b.At(m.To); !target.IsEmpty() {
		score += 10 + PawnUnits(target.Kind)
	}
	if m.Type == board.Promotion {
		score += 20
	}

	// Check detection needs the move applied on a scratch board.
	if scratch := b.Snapshot(); scratch.PushMove(m) {
		if scratch.InCheck(b.Turn().Opponent()) {
			score += 5
		}
	}

	if to := m.To; 3 <= to.Row() && to.Row() <= 4 && 3 <= to.Col() && to.Col() <= 4 {
		score += 2
	}
	return board.MovePriority(score)
}

// PriorityFn adapts MovePriority for the given board to a move-ordering
// function.
func (e Evaluator) PriorityFn(b *board.Board) board.MovePriorityFn {
	return func(m board.Move) board.MovePriority {
		return e.MovePriority(b, m)
	}
}
