package board

import (
	"github.com/cespare/xxhash/v2"
)

// PositionKey is a deterministic encoding of piece placement, side to move,
// castling rights and en passant target. Keys are equal iff those four
// components match; move counters are deliberately excluded so that the key
// supports exact repetition counting.
type PositionKey string

// Hash returns a 64-bit digest of the key, for callers that want a compact
// handle (the RL overlay's position memory) rather than the full encoding.
func (k PositionKey) Hash() uint64 {
	return xxhash.Sum64String(string(k))
}

// Key returns the position key for the current position.
func (b *Board) Key() PositionKey {
	return b.keys[len(b.keys)-1]
}

// Keys returns the position-key history: one entry per half-move plus the
// initial position, the last entry describing the current position.
func (b *Board) Keys() []PositionKey {
	return b.keys
}

func (b *Board) encodeKey() PositionKey {
	buf := make([]byte, 0, 67)
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		p := b.grid[sq]
		if p.IsEmpty() {
			buf = append(buf, '.')
			continue
		}
		code := p.Kind.Letter()[0]
		if p.Color == Black {
			code |= 0x20 // lower-case
		}
		buf = append(buf, code)
	}
	buf = append(buf, byte('0'+b.turn), byte('0'+b.castling), byte(b.enpassant))
	return PositionKey(buf)
}
