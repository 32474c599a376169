// perft is a movegen debugging tool counting leaf nodes of the legal move
// tree from the starting position. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
	"github.com/seekerror/logw"
)

var (
	depth  = flag.Int("depth", 4, "Search depth")
	divide = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	for i := 1; i <= *depth; i++ {
		start := time.Now()
		nodes := search(board.NewBoard(), i, *divide && i == *depth)
		duration := time.Since(start)

		println(fmt.Sprintf("perft,%v,%v,%v", i, nodes, duration.Microseconds()))
	}

	logw.Exitf(ctx, "perft exited")
}

func search(b *board.Board, depth int, d bool) int64 {
	if depth == 0 {
		return 1
	}

	var nodes int64
	for _, m := range b.LegalMoves() {
		next := b.Snapshot()
		if !next.PushMove(m) {
			continue
		}
		count := search(next, depth-1, false)
		if d {
			println(fmt.Sprintf("%v: %v", m, count))
		}
		nodes += count
	}
	return nodes
}
