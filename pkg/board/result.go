package board

// Result represents the result of a game, if any. 2 bits.
type Result uint8

const (
	InProgress Result = iota
	WhiteWins
	BlackWins
	Draw
)

// Win returns the winning result for the color.
func Win(c Color) Result {
	if c == White {
		return WhiteWins
	}
	return BlackWins
}

// Loss returns the losing result for the color.
func Loss(c Color) Result {
	return Win(c.Opponent())
}

// IsTerminal returns true iff the result ends the game.
func (r Result) IsTerminal() bool {
	return r != InProgress
}

func (r Result) String() string {
	switch r {
	case InProgress:
		return "in_progress"
	case WhiteWins:
		return "white_wins"
	case BlackWins:
		return "black_wins"
	case Draw:
		return "draw"
	default:
		return "?"
	}
}

// Outcome is the result of attempting to apply a move.
type Outcome uint8

const (
	// Applied means the move was legal and the board was mutated.
	Applied Outcome = iota
	// Rejected means the move is not in the current legal-move set. The
	// board is unchanged.
	Rejected
	// Terminal means the side to move has no legal move (checkmate or
	// stalemate). The board is unchanged. Claimable draws do not yield it.
	Terminal
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	case Terminal:
		return "terminal"
	default:
		return "?"
	}
}
