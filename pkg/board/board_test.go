package board_test

import (
	"math/rand"
	"testing"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apply resolves a coordinate move against the legal-move set and applies it.
func apply(t *testing.T, b *board.Board, fromRow, fromCol, toRow, toCol int) {
	t.Helper()

	m, ok := b.FindLegalMove(board.NewSquare(fromRow, fromCol), board.NewSquare(toRow, toCol), board.NoKind)
	require.Truef(t, ok, "no legal move (%v,%v)->(%v,%v)", fromRow, fromCol, toRow, toCol)
	require.Equal(t, board.Applied, b.Apply(m))
}

func TestFoolsMate(t *testing.T) {
	b := board.NewBoard()

	apply(t, b, 6, 5, 5, 5) // f3
	apply(t, b, 1, 4, 3, 4) // e5
	apply(t, b, 6, 6, 4, 6) // g4
	apply(t, b, 0, 3, 4, 7) // Qh4#

	assert.True(t, b.IsCheckmate())
	assert.Equal(t, board.BlackWins, b.Result())

	// No move applies on a finished game.
	assert.Equal(t, board.Terminal, b.Apply(board.Move{From: board.NewSquare(6, 0), To: board.NewSquare(5, 0)}))
}

func TestScholarsMate(t *testing.T) {
	b := board.NewBoard()

	apply(t, b, 6, 4, 4, 4) // e4
	apply(t, b, 1, 4, 3, 4) // e5
	apply(t, b, 7, 5, 4, 2) // Bc4
	apply(t, b, 0, 1, 2, 2) // Nc6
	apply(t, b, 7, 3, 3, 7) // Qh5
	apply(t, b, 0, 6, 2, 5) // Nf6
	apply(t, b, 3, 7, 1, 5) // Qxf7#

	assert.True(t, b.IsCheckmate())
	assert.Equal(t, board.WhiteWins, b.Result())
}

func TestEnPassantCapture(t *testing.T) {
	b := board.NewBoard()

	apply(t, b, 6, 4, 4, 4) // e4
	apply(t, b, 0, 1, 2, 2) // Nc6
	apply(t, b, 4, 4, 3, 4) // e5
	apply(t, b, 1, 3, 3, 3) // d5

	ep, ok := b.EnPassantTarget()
	require.True(t, ok)
	assert.Equal(t, board.NewSquare(2, 3), ep)

	m, ok := b.FindLegalMove(board.NewSquare(3, 4), board.NewSquare(2, 3), board.NoKind)
	require.True(t, ok)
	require.Equal(t, board.EnPassant, m.Type)
	require.Equal(t, board.Applied, b.Apply(m))

	assert.True(t, b.At(board.NewSquare(3, 3)).IsEmpty(), "captured pawn removed")
	capturer := b.At(board.NewSquare(2, 3))
	assert.Equal(t, board.Pawn, capturer.Kind)
	assert.Equal(t, board.White, capturer.Color)
	assert.Equal(t, 0, b.HalfmoveClock())

	_, ok = b.EnPassantTarget()
	assert.False(t, ok, "target cleared after the move")
}

func TestKingsideCastle(t *testing.T) {
	b := board.NewBoard()

	apply(t, b, 6, 4, 4, 4) // e4
	apply(t, b, 1, 4, 3, 4) // e5
	apply(t, b, 7, 6, 5, 5) // Nf3
	apply(t, b, 0, 1, 2, 2) // Nc6
	apply(t, b, 7, 5, 4, 2) // Bc4
	apply(t, b, 0, 6, 2, 5) // Nf6

	m, ok := b.FindLegalMove(board.NewSquare(7, 4), board.NewSquare(7, 6), board.NoKind)
	require.True(t, ok)
	require.Equal(t, board.KingsideCastle, m.Type)
	require.Equal(t, board.Applied, b.Apply(m))

	king := b.At(board.NewSquare(7, 6))
	rook := b.At(board.NewSquare(7, 5))
	assert.Equal(t, board.King, king.Kind)
	assert.True(t, king.Moved)
	assert.Equal(t, board.Rook, rook.Kind)
	assert.True(t, rook.Moved)
	assert.Equal(t, board.NewSquare(7, 6), b.KingSquare(board.White))

	assert.False(t, b.CastlingRights().IsAllowed(board.WhiteKingside))
	assert.False(t, b.CastlingRights().IsAllowed(board.WhiteQueenside))
	assert.True(t, b.CastlingRights().IsAllowed(board.BlackKingside))
}

func TestPromotion(t *testing.T) {
	b, err := board.NewBoardFromPlacements([]board.Placement{
		{Square: board.NewSquare(7, 4), Piece: board.Piece{Kind: board.King, Color: board.White}},
		{Square: board.NewSquare(5, 7), Piece: board.Piece{Kind: board.King, Color: board.Black}},
		{Square: board.NewSquare(1, 0), Piece: board.Piece{Kind: board.Pawn, Color: board.White, Moved: true}},
	}, board.White, 0, board.NoSquare)
	require.NoError(t, err)

	m, ok := b.FindLegalMove(board.NewSquare(1, 0), board.NewSquare(0, 0), board.Queen)
	require.True(t, ok)
	require.Equal(t, board.Applied, b.Apply(m))

	promoted := b.At(board.NewSquare(0, 0))
	assert.Equal(t, board.Queen, promoted.Kind)
	assert.Equal(t, board.White, promoted.Color)
	assert.True(t, promoted.Moved)
	assert.Equal(t, 0, b.HalfmoveClock())
}

func TestFiftyMoveDraw(t *testing.T) {
	b, err := board.NewBoardFromPlacements([]board.Placement{
		{Square: board.NewSquare(7, 4), Piece: board.Piece{Kind: board.King, Color: board.White}},
		{Square: board.NewSquare(0, 4), Piece: board.Piece{Kind: board.King, Color: board.Black}},
		{Square: board.NewSquare(4, 0), Piece: board.Piece{Kind: board.Rook, Color: board.White}},
		{Square: board.NewSquare(3, 7), Piece: board.Piece{Kind: board.Rook, Color: board.Black}},
	}, board.White, 0, board.NoSquare)
	require.NoError(t, err)

	// Shuffle both rooks for 100 half-moves: no capture, no pawn move.
	for i := 0; i < 25; i++ {
		apply(t, b, 4, 0, 5, 0)
		apply(t, b, 3, 7, 2, 7)
		apply(t, b, 5, 0, 4, 0)
		apply(t, b, 2, 7, 3, 7)
	}

	assert.Equal(t, 100, b.HalfmoveClock())
	assert.True(t, b.IsDrawByFiftyMoves())
	assert.Equal(t, board.Draw, b.Result())
}

func TestInsufficientMaterial(t *testing.T) {
	place := func(extra ...board.Placement) *board.Board {
		b, err := board.NewBoardFromPlacements(append([]board.Placement{
			{Square: board.NewSquare(7, 4), Piece: board.Piece{Kind: board.King, Color: board.White}},
			{Square: board.NewSquare(0, 4), Piece: board.Piece{Kind: board.King, Color: board.Black}},
		}, extra...), board.White, 0, board.NoSquare)
		require.NoError(t, err)
		return b
	}

	t.Run("bare kings", func(t *testing.T) {
		assert.True(t, place().HasInsufficientMaterial())
	})
	t.Run("lone minor", func(t *testing.T) {
		assert.True(t, place(board.Placement{
			Square: board.NewSquare(4, 4), Piece: board.Piece{Kind: board.Knight, Color: board.White},
		}).HasInsufficientMaterial())
	})
	t.Run("same-shade bishops", func(t *testing.T) {
		assert.True(t, place(
			board.Placement{Square: board.NewSquare(4, 4), Piece: board.Piece{Kind: board.Bishop, Color: board.White}},
			board.Placement{Square: board.NewSquare(2, 2), Piece: board.Piece{Kind: board.Bishop, Color: board.Black}},
		).HasInsufficientMaterial())
	})
	t.Run("opposite-shade bishops", func(t *testing.T) {
		assert.False(t, place(
			board.Placement{Square: board.NewSquare(4, 4), Piece: board.Piece{Kind: board.Bishop, Color: board.White}},
			board.Placement{Square: board.NewSquare(2, 3), Piece: board.Piece{Kind: board.Bishop, Color: board.Black}},
		).HasInsufficientMaterial())
	})
	t.Run("knight each", func(t *testing.T) {
		assert.True(t, place(
			board.Placement{Square: board.NewSquare(4, 4), Piece: board.Piece{Kind: board.Knight, Color: board.White}},
			board.Placement{Square: board.NewSquare(2, 3), Piece: board.Piece{Kind: board.Knight, Color: board.Black}},
		).HasInsufficientMaterial())
	})
	t.Run("rook mates", func(t *testing.T) {
		assert.False(t, place(board.Placement{
			Square: board.NewSquare(4, 4), Piece: board.Piece{Kind: board.Rook, Color: board.White},
		}).HasInsufficientMaterial())
	})
}

func TestThreefoldRepetition(t *testing.T) {
	b := board.NewBoard()

	// Knight shuffles revisit the starting placement; the third occurrence
	// draws.
	shuffle := func() {
		apply(t, b, 7, 6, 5, 5)
		apply(t, b, 0, 6, 2, 5)
		apply(t, b, 5, 5, 7, 6)
		apply(t, b, 2, 5, 0, 6)
	}

	shuffle()
	assert.False(t, b.IsThreefoldRepetition())
	shuffle()
	assert.True(t, b.IsThreefoldRepetition())
	assert.Equal(t, board.Draw, b.Result())
}

// TestInvariants drives random legal walks and asserts the §-independent
// board invariants after every applied move.
func TestInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for game := 0; game < 20; game++ {
		b := board.NewBoard()
		for ply := 0; ply < 60; ply++ {
			mover := b.Turn()
			legal := b.LegalMoves()
			if len(legal) == 0 {
				break
			}

			m := legal[rnd.Intn(len(legal))]
			require.Equal(t, board.Applied, b.Apply(m))

			require.Equal(t, mover.Opponent(), b.Turn())
			require.False(t, b.InCheck(mover), "mover left in check by %v", m)

			kings := 0
			for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
				p := b.At(sq)
				if p.Kind == board.King {
					kings++
					require.Equal(t, sq, b.KingSquare(p.Color))
				}
			}
			require.Equal(t, 2, kings)
			require.Len(t, b.Keys(), len(b.Moves())+1)
		}
	}
}

func TestCopyIndependence(t *testing.T) {
	b := board.NewBoard()
	apply(t, b, 6, 4, 4, 4)

	c := b.Copy()
	assert.Equal(t, b.Key(), c.Key())

	// The same move sequence produces identical positions.
	apply(t, b, 1, 4, 3, 4)
	apply(t, c, 1, 4, 3, 4)
	assert.Equal(t, b.Key(), c.Key())
	assert.Equal(t, b.Dict(), c.Dict())

	// Diverging the copy leaves the original untouched.
	apply(t, c, 7, 6, 5, 5)
	assert.NotEqual(t, b.Key(), c.Key())
	assert.Len(t, b.Moves(), 2)
	assert.Len(t, c.Moves(), 3)
}

func TestRejectedMoves(t *testing.T) {
	b := board.NewBoard()
	before := b.Key()

	tests := []board.Move{
		{From: board.NewSquare(6, 4), To: board.NewSquare(3, 4)},                       // pawn three ahead
		{From: board.NewSquare(7, 0), To: board.NewSquare(5, 0)},                       // rook through pawn
		{From: board.NewSquare(1, 4), To: board.NewSquare(2, 4)},                       // not the mover's piece
		{From: board.NewSquare(7, 4), To: board.NewSquare(7, 6), Type: board.KingsideCastle}, // blocked castle
	}
	for _, m := range tests {
		assert.Equalf(t, board.Rejected, b.Apply(m), "move %v", m)
	}
	assert.Equal(t, before, b.Key(), "rejected moves leave no trace")
}
