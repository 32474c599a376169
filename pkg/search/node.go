package search

import (
	"math"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
)

// nodeID addresses a node inside the search arena. Nodes reference their
// parent by id rather than by pointer, so the tree has no pointer cycles and
// is released as a whole when the search ends.
type nodeID int32

const noNode nodeID = -1

// node is one search-tree node: a board snapshot, the move that produced it,
// in-tree statistics and the queue of untried moves, pre-sorted by descending
// priority.
type node struct {
	parent nodeID
	move   board.Move // zero at root
	board  *board.Board
	result board.Result

	children []nodeID
	untried  []board.Move

	visits int
	wins   float64
}

// fullyExpanded returns true when no untried moves remain.
func (n *node) fullyExpanded() bool {
	return len(n.untried) == 0
}

// terminal returns true when the node's board reports a decided game.
func (n *node) terminal() bool {
	return n.result.IsTerminal()
}

// mover returns the side that entered the node by playing its stored move.
func (n *node) mover() board.Color {
	return n.board.Turn().Opponent()
}

// tree is an arena of search nodes.
type tree struct {
	nodes []node
}

// add appends a node and returns its id. The caller links it into the
// parent's child list.
func (t *tree) add(parent nodeID, m board.Move, b *board.Board, untried []board.Move) nodeID {
	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		parent:  parent,
		move:    m,
		board:   b,
		result:  b.Result(),
		untried: untried,
	})
	return id
}

func (t *tree) at(id nodeID) *node {
	return &t.nodes[id]
}

// ucb1 returns the UCB1 value of the node under its parent, or +Inf for an
// unvisited node.
func (t *tree) ucb1(id nodeID, c float64) float64 {
	n := &t.nodes[id]
	if n.visits == 0 {
		return math.Inf(1)
	}
	parent := &t.nodes[n.parent]
	return n.wins/float64(n.visits) + c*math.Sqrt(math.Log(float64(parent.visits))/float64(n.visits))
}
