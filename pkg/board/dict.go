package board

import "fmt"

// PieceDict is the serialized form of one occupied square.
type PieceDict struct {
	Type  string `json:"type"`
	Color string `json:"color"`
	Moved bool   `json:"has_moved"`
}

// CastlingDict is the serialized form of one color's castling rights.
type CastlingDict struct {
	Kingside  bool `json:"kingside"`
	Queenside bool `json:"queenside"`
}

// PositionDict is the stable position shape the outer system serializes: an
// 8x8 array of nullable piece records plus the board scalars.
type PositionDict struct {
	Board          [8][8]*PieceDict        `json:"board"`
	SideToMove     string                  `json:"side_to_move"`
	Castling       map[string]CastlingDict `json:"castling_rights"`
	EnPassant      []int                   `json:"en_passant_target,omitempty"`
	HalfmoveClock  int                     `json:"halfmove_clock"`
	FullmoveNumber int                     `json:"fullmove_number"`
}

// Dict returns the position dictionary for the current position.
func (b *Board) Dict() *PositionDict {
	d := &PositionDict{
		SideToMove: b.turn.String(),
		Castling: map[string]CastlingDict{
			White.String(): {
				Kingside:  b.castling.IsAllowed(WhiteKingside),
				Queenside: b.castling.IsAllowed(WhiteQueenside),
			},
			Black.String(): {
				Kingside:  b.castling.IsAllowed(BlackKingside),
				Queenside: b.castling.IsAllowed(BlackQueenside),
			},
		},
		HalfmoveClock:  b.halfmove,
		FullmoveNumber: b.fullmove,
	}
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		p := b.grid[sq]
		if p.IsEmpty() {
			continue
		}
		d.Board[sq.Row()][sq.Col()] = &PieceDict{
			Type:  p.Kind.Letter(),
			Color: p.Color.String(),
			Moved: p.Moved,
		}
	}
	if ep, ok := b.EnPassantTarget(); ok {
		d.EnPassant = []int{ep.Row(), ep.Col()}
	}
	return d
}

// FromDict rebuilds a board from its dictionary form. The history logs start
// fresh at the rebuilt position; all board invariants are restored.
func FromDict(d *PositionDict) (*Board, error) {
	turn, err := parseColor(d.SideToMove)
	if err != nil {
		return nil, err
	}

	ep := NoSquare
	if len(d.EnPassant) == 2 {
		if !inBounds(d.EnPassant[0], d.EnPassant[1]) {
			return nil, fmt.Errorf("invalid en passant target: %v", d.EnPassant)
		}
		ep = NewSquare(d.EnPassant[0], d.EnPassant[1])
	}

	var castling Castling
	if c, ok := d.Castling[White.String()]; ok {
		if c.Kingside {
			castling |= WhiteKingside
		}
		if c.Queenside {
			castling |= WhiteQueenside
		}
	}
	if c, ok := d.Castling[Black.String()]; ok {
		if c.Kingside {
			castling |= BlackKingside
		}
		if c.Queenside {
			castling |= BlackQueenside
		}
	}

	var pieces []Placement
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pd := d.Board[row][col]
			if pd == nil {
				continue
			}
			if len(pd.Type) != 1 {
				return nil, fmt.Errorf("invalid piece type at (%v,%v): %q", row, col, pd.Type)
			}
			kind, ok := ParseKind(rune(pd.Type[0]))
			if !ok {
				return nil, fmt.Errorf("invalid piece type at (%v,%v): %q", row, col, pd.Type)
			}
			color, err := parseColor(pd.Color)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, Placement{
				Square: NewSquare(row, col),
				Piece:  Piece{Kind: kind, Color: color, Moved: pd.Moved},
			})
		}
	}

	b, err := NewBoardFromPlacements(pieces, turn, castling, ep)
	if err != nil {
		return nil, err
	}
	b.halfmove = d.HalfmoveClock
	b.fullmove = d.FullmoveNumber
	return b, nil
}

// Move descriptor tags, the historically accepted array form.
const (
	TagPromotion       = "promotion"
	TagEnPassant       = "en_passant"
	TagKingsideCastle  = "kingside_castle"
	TagQueensideCastle = "queenside_castle"
)

// EncodeMove returns the array move descriptor: [from_row, from_col, to_row,
// to_col], optionally followed by a special-move tag and, for promotions, the
// piece-kind letter.
func EncodeMove(m Move) []any {
	ret := []any{m.From.Row(), m.From.Col(), m.To.Row(), m.To.Col()}
	switch m.Type {
	case Promotion:
		ret = append(ret, TagPromotion, m.Promotion.Letter())
	case EnPassant:
		ret = append(ret, TagEnPassant)
	case KingsideCastle:
		ret = append(ret, TagKingsideCastle)
	case QueensideCastle:
		ret = append(ret, TagQueensideCastle)
	}
	return ret
}

// DecodeMove parses an array move descriptor. Plain four-element descriptors
// decode with type Normal; callers resolve the exact move against the legal
// set, e.g. via FindLegalMove.
func DecodeMove(raw []any) (Move, error) {
	if len(raw) < 4 {
		return Move{}, fmt.Errorf("invalid move descriptor: %v", raw)
	}

	coords := make([]int, 4)
	for i := 0; i < 4; i++ {
		n, ok := descriptorInt(raw[i])
		if !ok {
			return Move{}, fmt.Errorf("invalid move coordinate: %v", raw[i])
		}
		coords[i] = n
	}
	if !inBounds(coords[0], coords[1]) || !inBounds(coords[2], coords[3]) {
		return Move{}, fmt.Errorf("move coordinates out of range: %v", coords)
	}

	m := Move{
		From: NewSquare(coords[0], coords[1]),
		To:   NewSquare(coords[2], coords[3]),
	}
	if len(raw) == 4 {
		return m, nil
	}

	tag, ok := raw[4].(string)
	if !ok {
		return Move{}, fmt.Errorf("invalid move tag: %v", raw[4])
	}
	switch tag {
	case TagPromotion:
		m.Type = Promotion
		m.Promotion = Queen
		if len(raw) > 5 {
			letter, ok := raw[5].(string)
			if !ok || len(letter) != 1 {
				return Move{}, fmt.Errorf("invalid promotion kind: %v", raw[5])
			}
			kind, ok := ParseKind(rune(letter[0]))
			if !ok || kind == Pawn || kind == King {
				return Move{}, fmt.Errorf("invalid promotion kind: %v", letter)
			}
			m.Promotion = kind
		}
	case TagEnPassant:
		m.Type = EnPassant
	case TagKingsideCastle:
		m.Type = KingsideCastle
	case TagQueensideCastle:
		m.Type = QueensideCastle
	default:
		return Move{}, fmt.Errorf("unknown move tag: %q", tag)
	}
	return m, nil
}

// FindLegalMove resolves a from/to pair, plus promotion kind if any, against
// the current legal-move set. The move type is taken from the matched legal
// move, so callers need not distinguish double pushes or castling themselves.
func (b *Board) FindLegalMove(from, to Square, promotion Kind) (Move, bool) {
	for _, m := range b.LegalMoves() {
		if m.From != from || m.To != to {
			continue
		}
		if m.Type == Promotion && promotion != NoKind && m.Promotion != promotion {
			continue
		}
		return m, true
	}
	return Move{}, false
}

func parseColor(s string) (Color, error) {
	switch s {
	case White.String():
		return White, nil
	case Black.String():
		return Black, nil
	default:
		return 0, fmt.Errorf("invalid color: %q", s)
	}
}

func descriptorInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64: // JSON numbers
		return int(n), true
	default:
		return 0, false
	}
}

func inBounds(row, col int) bool {
	return 0 <= row && row < 8 && 0 <= col && col < 8
}
