package board

import "fmt"

// Square represents a square on the board as a row-major index, A8=0, B8=1,
// .., H1=63. Row 0 is Black's back rank and row 7 is White's back rank, so
// the index matches the (row, col) coordinates used by the outer system:
//
//	A8 =  0, B8 =  1, C8 =  2, D8 =  3, E8 =  4, F8 =  5, G8 =  6, H8 =  7,
//	A7 =  8, ...                                                    H7 = 15,
//	...
//	A2 = 48, ...                                                    H2 = 55,
//	A1 = 56, B1 = 57, C1 = 58, D1 = 59, E1 = 60, F1 = 61, G1 = 62, H1 = 63
type Square uint8

// Iteration helpers to enable "for sq := ZeroSquare; sq < NumSquares; sq++".
const (
	ZeroSquare Square = 0
	NumSquares Square = 64
)

// NoSquare is the absent square, used for an empty en passant target.
const NoSquare Square = 64

// NewSquare returns the square at the given row and column. Both must be
// in [0;8).
func NewSquare(row, col int) Square {
	return Square(row<<3 | col)
}

func (s Square) IsValid() bool {
	return s < NumSquares
}

// Row returns the row in [0;8), counted from Black's back rank.
func (s Square) Row() int {
	return int(s >> 3)
}

// Col returns the column in [0;8), counted from the queenside.
func (s Square) Col() int {
	return int(s & 0x7)
}

func (s Square) String() string {
	if !s.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col(), 8-s.Row())
}
