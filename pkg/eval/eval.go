// Package eval contains the strategic position evaluator and move priority
// used to order candidate moves, guide playouts and adjudicate unfinished
// simulations.
package eval

import (
	"context"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
)

// Score is a signed position score in centipawn-like units. Positive favors
// White.
type Score int

const (
	// MateScore is the score of a delivered checkmate.
	MateScore Score = 100000
	// checkPenalty is the cost of being in check for the side to move.
	checkPenalty Score = 500
)

// endgamePieceLimit is the total piece count at or below which the endgame
// tables and terms apply.
const endgamePieceLimit = 16

// exposedKingPieceLimit is the total piece count above which a centralized
// king is penalized.
const exposedKingPieceLimit = 20

var (
	centerSquares = []board.Square{
		board.NewSquare(3, 3), board.NewSquare(3, 4),
		board.NewSquare(4, 3), board.NewSquare(4, 4),
	}
	extendedCenterSquares = []board.Square{
		board.NewSquare(2, 2), board.NewSquare(2, 3), board.NewSquare(2, 4), board.NewSquare(2, 5),
		board.NewSquare(3, 2), board.NewSquare(3, 5),
		board.NewSquare(4, 2), board.NewSquare(4, 5),
		board.NewSquare(5, 2), board.NewSquare(5, 3), board.NewSquare(5, 4), board.NewSquare(5, 5),
	}
)

// MaterialValue returns the absolute material value of a piece kind in
// centipawns. The King value dominates every other term so that any
// king-loss bug is immediately visible in scores.
func MaterialValue(k board.Kind) int {
	switch k {
	case board.Pawn:
		return 100
	case board.Knight:
		return 320
	case board.Bishop:
		return 330
	case board.Rook:
		return 500
	case board.Queen:
		return 900
	case board.King:
		return 20000
	default:
		return 0
	}
}

// Evaluator is the strategic position evaluator. It is stateless and safe to
// share.
type Evaluator struct{}

// IsEndgame returns true when the total piece count is at most 16.
func (Evaluator) IsEndgame(b *board.Board) bool {
	return b.PieceCount() <= endgamePieceLimit
}

// Evaluate returns the position score in centipawn-like units, positive
// favoring White.
func (e Evaluator) Evaluate(ctx context.Context, b *board.Board) Score {
	totalPieces := b.PieceCount()
	endgame := totalPieces <= endgamePieceLimit

	score := e.materialAndPosition(b, endgame)
	score += e.threats(b)
	score += e.checkAndMate(b)
	score += e.activity(b)
	score += e.kingSafety(b, totalPieces)
	score += e.pawnStructure(b)
	if endgame {
		score += e.endgameFactors(b)
	}
	return score
}

// materialAndPosition sums material values and piece-square bonuses.
func (Evaluator) materialAndPosition(b *board.Board, endgame bool) Score {
	var score Score
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() {
			continue
		}
		unit := Score(p.Color.Unit())
		score += unit * Score(MaterialValue(p.Kind))
		score += unit * Score(positionalBonus(p, sq, endgame))
	}
	return score
}

// threats analyzes hanging and under-defended pieces. A piece attacked with
// no defenders costs its holder 0.9x its value; attackers outnumbering
// defenders cost 0.6x; otherwise a cheaper attacker credits its side with
// 0.3x of the value difference.
func (Evaluator) threats(b *board.Board) Score {
	var score Score
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() {
			continue
		}

		attackers := b.Attackers(sq, p.Color.Opponent())
		if len(attackers) == 0 {
			continue
		}
		defenders := b.Attackers(sq, p.Color)

		value := MaterialValue(p.Kind)
		unit := Score(p.Color.Unit())
		switch {
		case len(defenders) == 0:
			score -= unit * Score(value*9/10)
		case len(attackers) > len(defenders):
			score -= unit * Score(value*6/10)
		default:
			cheapest := value
			for _, a := range attackers {
				if v := MaterialValue(b.At(a).Kind); v < cheapest {
					cheapest = v
				}
			}
			if cheapest < value {
				score -= unit * Score((value-cheapest)*3/10)
			}
		}
	}
	return score
}

// checkAndMate scores a delivered mate and the cost of being in check.
func (Evaluator) checkAndMate(b *board.Board) Score {
	turn := b.Turn()
	if !b.InCheck(turn) {
		return 0
	}
	unit := Score(turn.Unit())
	if len(b.LegalMoves()) == 0 {
		return -unit * MateScore
	}
	return -unit * checkPenalty
}

// activity scores minor-piece development and central occupation.
func (Evaluator) activity(b *board.Board) Score {
	var score Score

	// A minor home square that is empty or holds a moved piece counts as
	// developed.
	developed := func(c board.Color) Score {
		var n Score
		for _, col := range []int{1, 2, 5, 6} {
			home := b.At(board.NewSquare(c.BackRank(), col))
			if home.IsEmpty() || home.Moved {
				n++
			}
		}
		return n
	}
	score += (developed(board.White) - developed(board.Black)) * 30

	for _, sq := range centerSquares {
		if p := b.At(sq); !p.IsEmpty() {
			score += Score(p.Color.Unit()) * 40
		}
	}
	for _, sq := range extendedCenterSquares {
		if p := b.At(sq); !p.IsEmpty() {
			score += Score(p.Color.Unit()) * 20
		}
	}
	return score
}

// kingSafety scores the pawn shield ahead of each king and penalizes a
// centralized king while most pieces remain on the board.
func (Evaluator) kingSafety(b *board.Board, totalPieces int) Score {
	single := func(c board.Color) Score {
		var safety Score
		king := b.KingSquare(c)
		row, col := king.Row(), king.Col()

		if shieldRow := row + c.PawnDirection(); 0 <= shieldRow && shieldRow < 8 {
			for dc := -1; dc <= 1; dc++ {
				if sc := col + dc; 0 <= sc && sc < 8 {
					if p := b.At(board.NewSquare(shieldRow, sc)); p.Kind == board.Pawn && p.Color == c {
						safety += 30
					}
				}
			}
		}

		if totalPieces > exposedKingPieceLimit && inCentralBlock(row, col) {
			safety -= 50
		}
		return safety
	}
	return single(board.White) - single(board.Black)
}

// pawnStructure penalizes doubled and isolated pawns per file.
func (Evaluator) pawnStructure(b *board.Board) Score {
	var score Score
	for col := 0; col < 8; col++ {
		var counts [board.NumColors]int
		for row := 0; row < 8; row++ {
			if p := b.At(board.NewSquare(row, col)); p.Kind == board.Pawn {
				counts[p.Color]++
			}
		}
		for c := board.ZeroColor; c < board.NumColors; c++ {
			if counts[c] == 0 {
				continue
			}
			unit := Score(c.Unit())
			if counts[c] > 1 {
				score -= unit * Score(20*(counts[c]-1))
			}
			if isolatedFile(b, col, c) {
				score -= unit * 15
			}
		}
	}
	return score
}

func isolatedFile(b *board.Board, col int, c board.Color) bool {
	for _, adjacent := range []int{col - 1, col + 1} {
		if adjacent < 0 || adjacent > 7 {
			continue
		}
		for row := 0; row < 8; row++ {
			if p := b.At(board.NewSquare(row, adjacent)); p.Kind == board.Pawn && p.Color == c {
				return false
			}
		}
	}
	return true
}

// endgameFactors scores king centralization, direct opposition and pawn
// promotion potential, including passed pawns.
func (e Evaluator) endgameFactors(b *board.Board) Score {
	var score Score

	// Distance to the board center in doubled units keeps the arithmetic
	// integral: |2r-7| + |2c-7| is twice the centralization distance.
	centerDist2 := func(sq board.Square) int {
		return abs(2*sq.Row()-7) + abs(2*sq.Col()-7)
	}
	white, black := b.KingSquare(board.White), b.KingSquare(board.Black)
	score += Score(centerDist2(black)-centerDist2(white)) * 5

	kingDistance := abs(white.Row()-black.Row()) + abs(white.Col()-black.Col())
	if kingDistance == 2 {
		score += Score(b.Turn().Unit()) * 20
	}

	return score + e.pawnPromotion(b)
}

// pawnPromotion credits pawn advancement towards promotion; passed pawns
// earn an extra 50 plus a steeper advancement bonus.
func (Evaluator) pawnPromotion(b *board.Board) Score {
	var score Score
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.Kind != board.Pawn {
			continue
		}

		advanced := sq.Row() // rows traveled for Black
		if p.Color == board.White {
			advanced = 7 - sq.Row()
		}
		unit := Score(p.Color.Unit())
		score += unit * Score(advanced*15)
		if isPassedPawn(b, sq, p.Color) {
			score += unit * Score(50+advanced*20)
		}
	}
	return score
}

// isPassedPawn returns true iff no opposing pawn sits on the same or an
// adjacent file ahead of the pawn.
func isPassedPawn(b *board.Board, sq board.Square, c board.Color) bool {
	opp := c.Opponent()
	dir := c.PawnDirection()
	for row := sq.Row() + dir; 0 <= row && row < 8; row += dir {
		for dc := -1; dc <= 1; dc++ {
			if col := sq.Col() + dc; 0 <= col && col < 8 {
				if p := b.At(board.NewSquare(row, col)); p.Kind == board.Pawn && p.Color == opp {
					return false
				}
			}
		}
	}
	return true
}

func inCentralBlock(row, col int) bool {
	return 2 <= row && row <= 5 && 2 <= col && col <= 5
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
