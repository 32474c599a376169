package board

// Kind represents a chess piece kind (King, Pawn, etc) with no color. 3 bits.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PromotionKinds are the kinds a pawn may promote to, in generation order.
var PromotionKinds = []Kind{Queen, Rook, Bishop, Knight}

// ParseKind parses a piece-kind letter: P, N, B, R, Q or K.
func ParseKind(r rune) (Kind, bool) {
	switch r {
	case 'p', 'P':
		return Pawn, true
	case 'n', 'N':
		return Knight, true
	case 'b', 'B':
		return Bishop, true
	case 'r', 'R':
		return Rook, true
	case 'q', 'Q':
		return Queen, true
	case 'k', 'K':
		return King, true
	default:
		return NoKind, false
	}
}

func (k Kind) IsValid() bool {
	return Pawn <= k && k <= King
}

// Letter returns the upper-case piece letter used by the position dictionary
// and move descriptors.
func (k Kind) Letter() string {
	switch k {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return "?"
	}
}

func (k Kind) String() string {
	return k.Letter()
}

// Piece is a value-typed piece occupying a square. The zero value is an empty
// square. Moved tracks whether the piece has moved, for castling rights,
// double pushes and development terms.
type Piece struct {
	Kind  Kind
	Color Color
	Moved bool
}

// IsEmpty returns true iff the slot holds no piece.
func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return " "
	}
	if p.Color == White {
		return p.Kind.Letter()
	}
	switch p.Kind {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return "?"
	}
}
