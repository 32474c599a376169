// Package search implements the Monte Carlo Tree Search move selector with
// UCB1 selection, priority-ordered expansion, heuristic playouts and
// evaluation adjudication, plus the reinforcement-learning overlay that
// biases the search toward historically good positions.
package search

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/eval"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/mathx"
)

var version = build.NewVersion(1, 4, 0)

// clockPollInterval is how many simulations run between checks of the context
// and of the early-exit threshold at 90% of the time budget.
const clockPollInterval = 100

// Options hold search parameters. The zero value of each field selects its
// default.
type Options struct {
	// TimeLimit is the advisory wall-clock budget. Default 6s.
	TimeLimit time.Duration
	// MaxSimulations is the hard simulation cap. Default 3000.
	MaxSimulations int
	// MaxTreeDepth bounds the in-tree descent. Default 40.
	MaxTreeDepth int
	// MaxPlayoutDepth bounds a single playout in half-moves. Default 80.
	MaxPlayoutDepth int
	// Exploration is the UCB1 exploration constant. Default 1.4.
	Exploration float64
	// RLWeight is the blending weight of the RL overlay. Default 0.3.
	RLWeight float64
	// Seed, if set, seeds playout sampling for test determinism. Otherwise
	// each search seeds from the clock.
	Seed lang.Optional[int64]
}

func (o Options) String() string {
	return fmt.Sprintf("{time=%v, sims=%v, depth=%v, playout=%v, c=%v, w=%v}",
		o.TimeLimit, o.MaxSimulations, o.MaxTreeDepth, o.MaxPlayoutDepth, o.Exploration, o.RLWeight)
}

func (o Options) withDefaults() Options {
	if o.TimeLimit == 0 {
		o.TimeLimit = 6 * time.Second
	}
	if o.MaxSimulations == 0 {
		o.MaxSimulations = 3000
	}
	if o.MaxTreeDepth == 0 {
		o.MaxTreeDepth = 40
	}
	if o.MaxPlayoutDepth == 0 {
		o.MaxPlayoutDepth = 80
	}
	if o.Exploration == 0 {
		o.Exploration = 1.4
	}
	if o.RLWeight == 0 {
		o.RLWeight = 0.3
	}
	return o
}

// Engine is a synchronous MCTS move selector. The plain and RL-enhanced
// flavours share everything except the strategy hooks. Not thread-safe; a
// session owns one engine.
type Engine struct {
	name    string
	opts    Options
	eval    eval.Evaluator
	strat   strategy
	overlay *Overlay // nil for the plain flavour
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets the search parameters.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// New returns a plain MCTS engine.
func New(ctx context.Context, opts ...Option) *Engine {
	e := &Engine{name: "mcts"}
	for _, fn := range opts {
		fn(e)
	}
	e.opts = e.opts.withDefaults()
	e.strat = plainStrategy(e.eval)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// NewRL returns an RL-enhanced MCTS engine sharing the given overlay. The
// overlay may carry a nil recorder; recency memory still applies.
func NewRL(ctx context.Context, overlay *Overlay, opts ...Option) *Engine {
	e := &Engine{name: "rl-mcts", overlay: overlay}
	for _, fn := range opts {
		fn(e)
	}
	e.opts = e.opts.withDefaults()
	overlay.weight = e.opts.RLWeight
	e.strat = overlay.strategy(e.eval)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Options returns the engine's search parameters.
func (e *Engine) Options() Options {
	return e.opts
}

// Overlay returns the RL overlay, if any.
func (e *Engine) Overlay() (*Overlay, bool) {
	return e.overlay, e.overlay != nil
}

// ChooseMove runs a search from the given position and returns the best move
// found, or false if the side to move has no legal move. The board is not
// mutated. The search runs until the time budget or the simulation cap is
// exhausted; every 100 simulations it also stops early if the context is
// cancelled or 90% of the time budget has elapsed.
func (e *Engine) ChooseMove(ctx context.Context, b *board.Board) (board.Move, bool) {
	if e.overlay != nil {
		e.overlay.ObservePosition(ctx, b)
	}

	legal := b.LegalMoves()
	if len(legal) == 0 {
		return board.Move{}, false
	}

	if m, ok := e.mateInOne(b, legal); ok {
		logw.Debugf(ctx, "Found immediate checkmate: %v", m)
		return e.chose(ctx, b, m), true
	}

	rnd := rand.New(rand.NewSource(e.seed()))
	t := &tree{}
	rootBoard := b.Snapshot()
	root := t.add(noNode, board.Move{}, rootBoard, e.strat.orderMoves(rootBoard, legal))

	start := time.Now()
	sims := 0
	for time.Since(start) < e.opts.TimeLimit && sims < e.opts.MaxSimulations {
		id, depth := e.selectAndExpand(t, root, rnd)
		result := e.playout(ctx, t.at(id).board, depth, rnd)
		backpropagate(t, id, result)
		sims++

		if sims%clockPollInterval == 0 {
			if contextx.IsCancelled(ctx) || time.Since(start) >= e.opts.TimeLimit*9/10 {
				break
			}
		}
	}
	logw.Debugf(ctx, "MCTS completed %v simulations in %v", sims, time.Since(start))

	if len(t.at(root).children) > 0 {
		best := e.selectBest(t, root)
		n := t.at(best)
		logw.Debugf(ctx, "Best move: %v, visits: %v, win rate: %.3f", n.move, n.visits, n.wins/float64(mathx.Max(n.visits, 1)))
		return e.chose(ctx, b, n.move), true
	}

	if m, ok := e.fallback(b, legal); ok {
		return e.chose(ctx, b, m), true
	}
	return board.Move{}, false
}

// mateInOne returns a legal move that delivers immediate checkmate, if any.
func (e *Engine) mateInOne(b *board.Board, legal []board.Move) (board.Move, bool) {
	for _, m := range legal {
		scratch := b.Snapshot()
		if scratch.PushMove(m) && scratch.IsCheckmate() {
			return m, true
		}
	}
	return board.Move{}, false
}

// selectAndExpand descends the tree by UCB1 while nodes are fully expanded,
// then expands one untried move. A move that fails to apply is skipped; a
// node whose queue empties without success is treated as expanded.
func (e *Engine) selectAndExpand(t *tree, root nodeID, rnd *rand.Rand) (nodeID, int) {
	id, depth := root, 0
	for {
		if t.at(id).terminal() || depth >= e.opts.MaxTreeDepth {
			return id, depth
		}

		if !t.at(id).fullyExpanded() {
			if cid, ok := e.expand(t, id); ok {
				return cid, depth + 1
			}
			continue // queue emptied without a legal apply
		}

		if len(t.at(id).children) == 0 {
			return id, depth
		}
		id = e.bestChild(t, id)
		depth++
	}
}

// expand pops untried moves until one applies, adding and returning the new
// child.
func (e *Engine) expand(t *tree, id nodeID) (nodeID, bool) {
	for !t.at(id).fullyExpanded() {
		n := t.at(id)
		m := n.untried[0]
		n.untried = n.untried[1:]

		child := n.board.Snapshot()
		if !child.PushMove(m) {
			continue // skip: generator and board disagree
		}

		cid := t.add(id, m, child, e.strat.orderMoves(child, child.LegalMoves()))
		t.at(id).children = append(t.at(id).children, cid)
		return cid, true
	}
	return noNode, false
}

// bestChild returns the child maximizing UCB1 plus the strategy's selection
// bias.
func (e *Engine) bestChild(t *tree, id nodeID) nodeID {
	n := t.at(id)
	best, bestValue := n.children[0], 0.0
	for i, cid := range n.children {
		value := t.ucb1(cid, e.opts.Exploration) + e.strat.selectionBias(n.board, t.at(cid).move)
		if i == 0 || value > bestValue {
			best, bestValue = cid, value
		}
	}
	return best
}

// playout advances a copy of the board using the strategy's sampler until
// natural termination or a depth bound, then adjudicates.
func (e *Engine) playout(ctx context.Context, b *board.Board, treeDepth int, rnd *rand.Rand) board.Result {
	pb := b.Snapshot()

	for moves := 0; moves < e.opts.MaxPlayoutDepth && treeDepth+moves < 2*e.opts.MaxTreeDepth; moves++ {
		if pb.Result().IsTerminal() {
			break
		}
		legal := pb.LegalMoves()
		if len(legal) == 0 {
			break
		}
		if !pb.PushMove(e.strat.samplePlayout(rnd, pb, legal)) {
			break
		}
	}
	return e.adjudicate(ctx, pb, rnd)
}

// adjudicate assigns a result to a playout. Natural terminations stand; an
// unfinished position is decided by the evaluator: near-zero scores draw,
// moderate scores draw 30% of the time, decisive scores win outright.
func (e *Engine) adjudicate(ctx context.Context, b *board.Board, rnd *rand.Rand) board.Result {
	if result := b.Result(); result.IsTerminal() {
		return result
	}

	score := e.eval.Evaluate(ctx, b)
	magnitude := score
	if magnitude < 0 {
		magnitude = -magnitude
	}

	winner := board.WhiteWins
	if score < 0 {
		winner = board.BlackWins
	}
	switch {
	case magnitude < 100:
		return board.Draw
	case magnitude < 300:
		if rnd.Float64() < 0.3 {
			return board.Draw
		}
		return winner
	default:
		return winner
	}
}

// backpropagate walks parent-wards crediting visits, half points for draws,
// and full points to ancestors whose stored move was played by the winner.
func backpropagate(t *tree, id nodeID, result board.Result) {
	for id != noNode {
		n := t.at(id)
		n.visits++
		if result == board.Draw {
			n.wins += 0.5
		} else if n.parent != noNode && result == board.Win(n.mover()) {
			n.wins++
		}
		id = n.parent
	}
}

// selectBest picks the move to play. A uniquely dominant child by visit count
// wins outright; otherwise well-explored children compete on a composite of
// win rate and visit share plus the strategy's final bonus.
func (e *Engine) selectBest(t *tree, root nodeID) nodeID {
	r := t.at(root)

	maxVisits := 0
	for _, cid := range r.children {
		if v := t.at(cid).visits; v > maxVisits {
			maxVisits = v
		}
	}

	var dominant []nodeID
	for _, cid := range r.children {
		if float64(t.at(cid).visits) > 0.7*float64(maxVisits) {
			dominant = append(dominant, cid)
		}
	}
	if len(dominant) == 1 {
		return dominant[0]
	}

	best, bestScore := noNode, 0.0
	for _, cid := range r.children {
		n := t.at(cid)
		if n.visits < 5 {
			continue
		}
		winRate := n.wins / float64(n.visits)
		visitShare := float64(n.visits) / float64(maxVisits)
		if visitShare > 1 {
			visitShare = 1
		}
		score := 0.7*winRate + 0.3*visitShare + e.strat.finalBonus(r.board, n.move)
		if best == noNode || score > bestScore {
			best, bestScore = cid, score
		}
	}
	if best != noNode {
		return best
	}

	// Fall back to the most visited child.
	best = r.children[0]
	for _, cid := range r.children {
		if t.at(cid).visits > t.at(best).visits {
			best = cid
		}
	}
	return best
}

// fallback picks the highest-ranked legal move whose application succeeds,
// for searches that produced no children.
func (e *Engine) fallback(b *board.Board, legal []board.Move) (board.Move, bool) {
	for _, m := range e.strat.orderMoves(b, legal) {
		if scratch := b.Snapshot(); scratch.PushMove(m) {
			return m, true
		}
	}
	return board.Move{}, false
}

// chose reports the selected move to the overlay, if any, and returns it.
func (e *Engine) chose(ctx context.Context, b *board.Board, m board.Move) board.Move {
	if e.overlay != nil {
		scratch := b.Snapshot()
		if scratch.PushMove(m) {
			e.overlay.NoteMove(ctx, m, int(e.eval.Evaluate(ctx, scratch)))
		}
	}
	return m
}

func (e *Engine) seed() int64 {
	if seed, ok := e.opts.Seed.V(); ok {
		return seed
	}
	return time.Now().UnixNano()
}
