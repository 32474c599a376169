package eval_test

import (
	"context"
	"testing"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(t *testing.T, turn board.Color, pieces ...board.Placement) *board.Board {
	t.Helper()

	b, err := board.NewBoardFromPlacements(pieces, turn, 0, board.NoSquare)
	require.NoError(t, err)
	return b
}

func king(row, col int, c board.Color) board.Placement {
	return board.Placement{Square: board.NewSquare(row, col), Piece: board.Piece{Kind: board.King, Color: c}}
}

func piece(row, col int, k board.Kind, c board.Color) board.Placement {
	return board.Placement{Square: board.NewSquare(row, col), Piece: board.Piece{Kind: k, Color: c, Moved: true}}
}

func TestMaterialValue(t *testing.T) {
	tests := []struct {
		kind     board.Kind
		expected int
	}{
		{board.Pawn, 100},
		{board.Knight, 320},
		{board.Bishop, 330},
		{board.Rook, 500},
		{board.Queen, 900},
		{board.King, 20000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, eval.MaterialValue(tt.kind))
	}
}

func TestEvaluateSymmetry(t *testing.T) {
	ctx := context.Background()

	t.Run("starting position", func(t *testing.T) {
		assert.Equal(t, eval.Score(0), eval.Evaluator{}.Evaluate(ctx, board.NewBoard()))
	})

	t.Run("mirrored kings", func(t *testing.T) {
		b := place(t, board.White, king(7, 4, board.White), king(0, 4, board.Black))
		// Opposition credit does not apply: the kings are seven ranks apart.
		assert.Equal(t, eval.Score(0), eval.Evaluator{}.Evaluate(ctx, b))
	})
}

func TestEvaluateSinglePawn(t *testing.T) {
	ctx := context.Background()

	// Kings mirror out; the lone a5 pawn contributes material (100), its
	// table bonus (5), the isolated-file penalty (-15), advancement (4x15)
	// and the passed-pawn credit (50 + 4x20).
	b := place(t, board.White,
		king(7, 4, board.White),
		king(0, 4, board.Black),
		piece(3, 0, board.Pawn, board.White),
	)
	assert.Equal(t, eval.Score(100+5-15+60+130), eval.Evaluator{}.Evaluate(ctx, b))
}

func TestEvaluateMaterialAdvantage(t *testing.T) {
	ctx := context.Background()

	queenless := board.NewBoard().Dict()
	queenless.Board[0][3] = nil // remove the black queen
	b, err := board.FromDict(queenless)
	require.NoError(t, err)

	score := eval.Evaluator{}.Evaluate(ctx, b)
	assert.Greater(t, score, eval.Score(500), "a queen up must dominate positional noise")
}

func TestEvaluateCheck(t *testing.T) {
	ctx := context.Background()

	// A bare rook check against the black king; White has no pieces en
	// prise beside the rook, which is defended by nothing but unattacked.
	checked := place(t, board.Black,
		king(7, 4, board.White),
		king(0, 0, board.Black),
		piece(4, 0, board.Rook, board.White),
	)
	require.True(t, checked.InCheck(board.Black))

	quiet := place(t, board.Black,
		king(7, 4, board.White),
		king(0, 0, board.Black),
		piece(4, 1, board.Rook, board.White),
	)
	require.False(t, quiet.InCheck(board.Black))

	e := eval.Evaluator{}
	delta := e.Evaluate(ctx, checked) - e.Evaluate(ctx, quiet)
	// Moving the rook between the a- and b-file shifts only small positional
	// terms; the checked, undefended black king (threat term) and the check
	// penalty make up the difference.
	assert.Greater(t, delta, eval.Score(300))
}

func TestEvaluateCheckmate(t *testing.T) {
	ctx := context.Background()

	// Back-rank mate: king boxed by its own rank, queen delivering.
	b := place(t, board.Black,
		king(7, 6, board.White),
		king(0, 6, board.Black),
		piece(1, 5, board.Pawn, board.Black),
		piece(1, 6, board.Pawn, board.Black),
		piece(1, 7, board.Pawn, board.Black),
		piece(0, 0, board.Queen, board.White),
		piece(2, 0, board.Rook, board.White),
	)
	require.True(t, b.IsCheckmate())

	score := eval.Evaluator{}.Evaluate(ctx, b)
	assert.Greater(t, score, eval.Score(50000), "mate against Black dwarfs every other term")
}

func TestIsEndgame(t *testing.T) {
	e := eval.Evaluator{}
	assert.False(t, e.IsEndgame(board.NewBoard()))

	b := place(t, board.White, king(7, 4, board.White), king(0, 4, board.Black))
	assert.True(t, e.IsEndgame(b))
}

func TestDoubledAndIsolatedPawns(t *testing.T) {
	ctx := context.Background()
	e := eval.Evaluator{}

	// Both sides hold one pawn on adjacent files; White doubles on the
	// e-file instead. The doubled pair costs 20 and loses one connected
	// pawn's structure.
	healthy := place(t, board.White,
		king(7, 4, board.White), king(0, 4, board.Black),
		piece(4, 4, board.Pawn, board.White), piece(4, 5, board.Pawn, board.White),
		piece(3, 2, board.Pawn, board.Black), piece(3, 3, board.Pawn, board.Black),
	)
	doubled := place(t, board.White,
		king(7, 4, board.White), king(0, 4, board.Black),
		piece(4, 4, board.Pawn, board.White), piece(5, 4, board.Pawn, board.White),
		piece(3, 2, board.Pawn, board.Black), piece(3, 3, board.Pawn, board.Black),
	)

	assert.Less(t, e.Evaluate(ctx, doubled), e.Evaluate(ctx, healthy))
}

func TestMovePriority(t *testing.T) {
	e := eval.Evaluator{}

	t.Run("captures by victim value", func(t *testing.T) {
		b := place(t, board.White,
			king(7, 7, board.White), king(0, 7, board.Black),
			piece(4, 1, board.Rook, board.White),
			piece(4, 5, board.Queen, board.Black),
			piece(2, 1, board.Pawn, board.Black),
		)

		takeQueen := board.Move{From: board.NewSquare(4, 1), To: board.NewSquare(4, 5)}
		takePawn := board.Move{From: board.NewSquare(4, 1), To: board.NewSquare(2, 1)}
		quiet := board.Move{From: board.NewSquare(4, 1), To: board.NewSquare(6, 1)}

		assert.Equal(t, board.MovePriority(19), e.MovePriority(b, takeQueen))
		assert.Equal(t, board.MovePriority(11), e.MovePriority(b, takePawn))
		assert.Equal(t, board.MovePriority(0), e.MovePriority(b, quiet))
	})

	t.Run("promotion", func(t *testing.T) {
		b := place(t, board.White,
			king(7, 4, board.White), king(5, 7, board.Black),
			piece(1, 0, board.Pawn, board.White),
		)
		promote := board.Move{
			From: board.NewSquare(1, 0), To: board.NewSquare(0, 0),
			Type: board.Promotion, Promotion: board.Queen,
		}
		assert.Equal(t, board.MovePriority(20), e.MovePriority(b, promote))
	})

	t.Run("check", func(t *testing.T) {
		b := place(t, board.White,
			king(7, 7, board.White), king(0, 0, board.Black),
			piece(4, 4, board.Rook, board.White),
		)
		check := board.Move{From: board.NewSquare(4, 4), To: board.NewSquare(4, 0)}
		quiet := board.Move{From: board.NewSquare(4, 4), To: board.NewSquare(4, 1)}

		assert.Equal(t, board.MovePriority(5), e.MovePriority(b, check))
		assert.Equal(t, board.MovePriority(0), e.MovePriority(b, quiet))
	})

	t.Run("central destination", func(t *testing.T) {
		b := place(t, board.White,
			king(7, 7, board.White), king(0, 7, board.Black),
			piece(5, 3, board.Knight, board.White),
		)
		central := board.Move{From: board.NewSquare(5, 3), To: board.NewSquare(3, 4)}
		edge := board.Move{From: board.NewSquare(5, 3), To: board.NewSquare(7, 2)}

		assert.Equal(t, board.MovePriority(2), e.MovePriority(b, central))
		assert.Equal(t, board.MovePriority(0), e.MovePriority(b, edge))
	})
}
