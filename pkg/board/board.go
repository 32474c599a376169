// Package board contains the chess board representation and rules: move
// generation, legality filtering, special moves and termination detection.
package board

import (
	"fmt"
	"strings"
)

const noprogressPlyLimit = 100

// Placement defines a piece placement, used to construct test positions.
type Placement struct {
	Square Square
	Piece  Piece
}

func (p Placement) String() string {
	return fmt.Sprintf("%v@%v", p.Piece, p.Square)
}

// Board represents a position plus the metadata needed to apply moves and
// adjudicate game results: side to move, king squares, castling rights,
// en passant target, move counters and the two history logs. Not thread-safe.
type Board struct {
	grid      [64]Piece
	turn      Color
	kings     [NumColors]Square
	castling  Castling
	enpassant Square // NoSquare if last move was not a double push
	halfmove  int
	fullmove  int

	moves []Move
	keys  []PositionKey
}

// NewBoard returns a board in the standard starting position.
func NewBoard() *Board {
	b := &Board{
		turn:      White,
		castling:  FullCastlingRights,
		enpassant: NoSquare,
		fullmove:  1,
	}

	back := []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col := 0; col < 8; col++ {
		b.grid[NewSquare(0, col)] = Piece{Kind: back[col], Color: Black}
		b.grid[NewSquare(1, col)] = Piece{Kind: Pawn, Color: Black}
		b.grid[NewSquare(6, col)] = Piece{Kind: Pawn, Color: White}
		b.grid[NewSquare(7, col)] = Piece{Kind: back[col], Color: White}
	}
	b.kings[White] = NewSquare(7, 4)
	b.kings[Black] = NewSquare(0, 4)

	b.keys = append(b.keys, b.encodeKey())
	return b
}

// NewBoardFromPlacements returns a board with the given pieces, side to move
// and castling rights. Intended for constructed positions; both kings must
// be present.
func NewBoardFromPlacements(pieces []Placement, turn Color, castling Castling, ep Square) (*Board, error) {
	b := &Board{
		turn:      turn,
		castling:  castling,
		enpassant: ep,
		fullmove:  1,
		kings:     [NumColors]Square{NoSquare, NoSquare},
	}

	for _, p := range pieces {
		if !b.grid[p.Square].IsEmpty() {
			return nil, fmt.Errorf("duplicate placement: %v", p)
		}
		b.grid[p.Square] = p.Piece
		if p.Piece.Kind == King {
			if b.kings[p.Piece.Color] != NoSquare {
				return nil, fmt.Errorf("multiple %v kings", p.Piece.Color)
			}
			b.kings[p.Piece.Color] = p.Square
		}
	}
	if b.kings[White] == NoSquare || b.kings[Black] == NoSquare {
		return nil, fmt.Errorf("invalid number of kings")
	}

	b.keys = append(b.keys, b.encodeKey())
	return b, nil
}

// Copy returns an independent deep copy of the board, including both history
// logs. Applying the same legal move sequence to the original and the copy
// produces identical positions.
func (b *Board) Copy() *Board {
	c := *b
	c.moves = append([]Move(nil), b.moves...)
	c.keys = append([]PositionKey(nil), b.keys...)
	return &c
}

// Snapshot returns a copy carrying only the current position and counters.
// The move log is dropped and the key history restarts at the current
// position. Search playouts never consult deep repetition history, so tree
// nodes use this cheaper form.
func (b *Board) Snapshot() *Board {
	c := *b
	c.moves = nil
	c.keys = []PositionKey{b.keys[len(b.keys)-1]}
	return &c
}

// At returns the piece at the given square. The zero piece means empty.
func (b *Board) At(sq Square) Piece {
	return b.grid[sq]
}

// Turn returns the side to move.
func (b *Board) Turn() Color {
	return b.turn
}

// KingSquare returns the square of the color's king.
func (b *Board) KingSquare(c Color) Square {
	return b.kings[c]
}

// CastlingRights returns the castling rights.
func (b *Board) CastlingRights() Castling {
	return b.castling
}

// EnPassantTarget returns the square a capturing pawn would land on, if the
// last move was a double pawn push.
func (b *Board) EnPassantTarget() (Square, bool) {
	return b.enpassant, b.enpassant != NoSquare
}

// HalfmoveClock returns the number of half-moves since the last capture or
// pawn move.
func (b *Board) HalfmoveClock() int {
	return b.halfmove
}

// FullmoveNumber returns the full move number, starting at 1 and incremented
// after each Black move.
func (b *Board) FullmoveNumber() int {
	return b.fullmove
}

// Moves returns the applied move history.
func (b *Board) Moves() []Move {
	return b.moves
}

// PieceCount returns the total number of pieces on the board.
func (b *Board) PieceCount() int {
	count := 0
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		if !b.grid[sq].IsEmpty() {
			count++
		}
	}
	return count
}

// Apply attempts to apply the given move. The move must match an entry of the
// current legal-move set; anything else is Rejected with no state change. A
// position with no legal moves at all yields Terminal. Claimable draws do not
// block further play.
func (b *Board) Apply(m Move) Outcome {
	legal := b.LegalMoves()
	if len(legal) == 0 {
		return Terminal
	}
	for _, l := range legal {
		if l.Equals(m) {
			b.make(l)
			return Applied
		}
	}
	return Rejected
}

// PushMove attempts to make a pseudo-legal move. Returns true iff legal; the
// board is unchanged otherwise.
func (b *Board) PushMove(m Move) bool {
	prev := *b
	mover := b.turn
	b.make(m)
	if b.InCheck(mover) {
		*b = prev
		return false
	}
	return true
}

// Reset restores the standard starting position.
func (b *Board) Reset() {
	*b = *NewBoard()
}

// make applies a known-legal move: grid, captures, castling rook, piece Moved
// flags, king cache, castling rights, en passant target, clocks, history logs
// and finally the side to move.
func (b *Board) make(m Move) {
	piece := b.grid[m.From]
	target := b.grid[m.To]

	capture := !target.IsEmpty() || m.Type == EnPassant
	if m.Type == EnPassant {
		b.grid[NewSquare(m.From.Row(), m.To.Col())] = Piece{}
	}

	piece.Moved = true
	if m.Type == Promotion {
		piece = Piece{Kind: m.Promotion, Color: piece.Color, Moved: true}
	}
	b.grid[m.To] = piece
	b.grid[m.From] = Piece{}

	if m.IsCastle() {
		row := m.From.Row()
		var rookFrom, rookTo Square
		if m.Type == KingsideCastle {
			rookFrom, rookTo = NewSquare(row, 7), NewSquare(row, 5)
		} else {
			rookFrom, rookTo = NewSquare(row, 0), NewSquare(row, 3)
		}
		rook := b.grid[rookFrom]
		rook.Moved = true
		b.grid[rookTo] = rook
		b.grid[rookFrom] = Piece{}
	}

	if piece.Kind == King {
		b.kings[piece.Color] = m.To
		b.castling &^= ColorRights(piece.Color)
	}
	b.updateRookRights(m.From)
	b.updateRookRights(m.To)

	b.enpassant = NoSquare
	if m.Type == DoublePush {
		b.enpassant = NewSquare((m.From.Row()+m.To.Row())/2, m.From.Col())
	}

	if capture || piece.Kind == Pawn || m.Type == Promotion {
		b.halfmove = 0
	} else {
		b.halfmove++
	}
	if b.turn == Black {
		b.fullmove++
	}

	b.turn = b.turn.Opponent()
	b.moves = append(b.moves, m)
	b.keys = append(b.keys, b.encodeKey())
}

// updateRookRights clears a castling right when its rook home square no
// longer holds the unmoved rook, whether the rook moved away or was captured.
func (b *Board) updateRookRights(sq Square) {
	switch sq {
	case NewSquare(7, 7):
		b.castling &^= WhiteKingside
	case NewSquare(7, 0):
		b.castling &^= WhiteQueenside
	case NewSquare(0, 7):
		b.castling &^= BlackKingside
	case NewSquare(0, 0):
		b.castling &^= BlackQueenside
	}
}

// Result adjudicates the current position. The ladder is evaluated in order:
// checkmate, stalemate, fifty-move rule, insufficient material, threefold
// repetition, otherwise in progress.
func (b *Board) Result() Result {
	if len(b.LegalMoves()) == 0 {
		if b.InCheck(b.turn) {
			return Win(b.turn.Opponent())
		}
		return Draw
	}
	if b.halfmove >= noprogressPlyLimit {
		return Draw
	}
	if b.HasInsufficientMaterial() {
		return Draw
	}
	if b.IsThreefoldRepetition() {
		return Draw
	}
	return InProgress
}

// IsCheckmate returns true iff the side to move is mated.
func (b *Board) IsCheckmate() bool {
	return b.InCheck(b.turn) && len(b.LegalMoves()) == 0
}

// IsStalemate returns true iff the side to move has no legal move and is not
// in check.
func (b *Board) IsStalemate() bool {
	return !b.InCheck(b.turn) && len(b.LegalMoves()) == 0
}

// IsDrawByFiftyMoves returns true iff 100 half-moves were made with no
// capture or pawn move.
func (b *Board) IsDrawByFiftyMoves() bool {
	return b.halfmove >= noprogressPlyLimit
}

// HasInsufficientMaterial returns true for K vs K, K+minor vs K, K+B vs K+B
// with same-colored bishops, and K+N vs K+N.
func (b *Board) HasInsufficientMaterial() bool {
	var minors [NumColors][]Square
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		p := b.grid[sq]
		switch p.Kind {
		case NoKind, King:
			// no material
		case Bishop, Knight:
			minors[p.Color] = append(minors[p.Color], sq)
		default:
			return false // pawn, rook or queen can mate
		}
	}

	white, black := minors[White], minors[Black]
	switch {
	case len(white) == 0 && len(black) == 0:
		return true
	case len(white)+len(black) == 1:
		return true
	case len(white) == 1 && len(black) == 1:
		wp, bp := b.grid[white[0]], b.grid[black[0]]
		if wp.Kind == Knight && bp.Kind == Knight {
			return true
		}
		if wp.Kind == Bishop && bp.Kind == Bishop {
			return squareShade(white[0]) == squareShade(black[0])
		}
		return false
	default:
		return false
	}
}

// IsThreefoldRepetition returns true iff the current position key has
// appeared at least three times in the position history.
func (b *Board) IsThreefoldRepetition() bool {
	current := b.keys[len(b.keys)-1]
	count := 0
	for _, k := range b.keys {
		if k == current {
			count++
		}
	}
	return count >= 3
}

func squareShade(sq Square) int {
	return (sq.Row() + sq.Col()) % 2
}

func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b.grid[NewSquare(row, col)]; p.IsEmpty() {
				sb.WriteRune('-')
			} else {
				sb.WriteString(p.String())
			}
		}
		if row < 7 {
			sb.WriteRune('/')
		}
	}
	return fmt.Sprintf("board{%v %v %v(%v) halfmove=%v, fullmove=%v}", sb.String(), b.turn, b.castling, b.enpassant, b.halfmove, b.fullmove)
}
