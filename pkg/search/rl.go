package search

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/eval"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/record"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/mathx"
)

// historyLimit bounds the overlay's position memory.
const historyLimit = 100

// annotationWindow is how many trailing positions receive an outcome label
// when a game finishes.
const annotationWindow = 10

// recencyWindow is how many trailing labeled positions feed the move value.
const recencyWindow = 5

// Label is the outcome annotation of a remembered position.
type Label uint8

const (
	Unlabeled Label = iota
	Good
	Bad
	Neutral
)

type positionRecord struct {
	key   uint64 // position key digest
	label Label
}

// Overlay is the reinforcement-learning memory shared by a session and its
// RL engine: a bounded FIFO of recent positions, annotated with outcomes
// when games finish, plus the optional data sink. Per-engine state; there is
// no module-level memory.
type Overlay struct {
	weight   float64
	recorder record.Recorder // may be nil

	gameID     string
	moveNumber int
	history    []positionRecord
}

// NewOverlay returns an overlay writing through to the given recorder. A nil
// recorder is legal; the overlay then works from in-memory recency alone.
func NewOverlay(recorder record.Recorder) *Overlay {
	return &Overlay{recorder: recorder}
}

// BeginGame starts a new recording and clears the position memory. Recorder
// failures are logged and otherwise ignored.
func (o *Overlay) BeginGame(ctx context.Context, sessionID, mode string) {
	o.moveNumber = 0
	o.history = nil
	o.gameID = ""

	if o.recorder == nil {
		return
	}
	id, err := o.recorder.BeginGame(ctx, sessionID, mode)
	if err != nil {
		logw.Warningf(ctx, "Recorder begin failed: %v", err)
		return
	}
	o.gameID = id
}

// ObservePosition appends the position to the bounded memory and forwards it
// to the recorder, if recording.
func (o *Overlay) ObservePosition(ctx context.Context, b *board.Board) {
	o.history = append(o.history, positionRecord{key: b.Key().Hash()})
	if len(o.history) > historyLimit {
		o.history = o.history[len(o.history)-historyLimit:]
	}

	if o.recorder == nil || o.gameID == "" {
		return
	}
	position, err := json.Marshal(b.Dict())
	if err != nil {
		logw.Warningf(ctx, "Position encoding failed: %v", err)
		return
	}
	if err := o.recorder.RecordPosition(ctx, o.gameID, o.moveNumber, position, b.Turn().String()); err != nil {
		logw.Warningf(ctx, "Recorder position failed: %v", err)
	}
}

// NoteMove forwards a chosen move and its evaluation score to the recorder.
func (o *Overlay) NoteMove(ctx context.Context, m board.Move, evaluation int) {
	if o.recorder == nil || o.gameID == "" {
		return
	}
	move, err := json.Marshal(board.EncodeMove(m))
	if err != nil {
		logw.Warningf(ctx, "Move encoding failed: %v", err)
		return
	}
	if err := o.recorder.RecordMove(ctx, o.gameID, o.moveNumber, move, evaluation); err != nil {
		logw.Warningf(ctx, "Recorder move failed: %v", err)
	}
}

// MemorySize returns the number of remembered positions.
func (o *Overlay) MemorySize() int {
	return len(o.history)
}

// Advance counts an applied half-move.
func (o *Overlay) Advance() {
	o.moveNumber++
}

// FinishGame annotates the last ten remembered positions with the outcome
// from the learner's perspective and closes the recording.
func (o *Overlay) FinishGame(ctx context.Context, result board.Result, learner board.Color, final *board.Board) {
	label := Neutral
	switch result {
	case board.Win(learner):
		label = Good
	case board.Loss(learner):
		label = Bad
	}
	for i := mathx.Max(0, len(o.history)-annotationWindow); i < len(o.history); i++ {
		o.history[i].label = label
	}

	if o.recorder == nil || o.gameID == "" {
		return
	}
	position, err := json.Marshal(final.Dict())
	if err != nil {
		logw.Warningf(ctx, "Position encoding failed: %v", err)
		return
	}
	if err := o.recorder.FinishGame(ctx, o.gameID, result.String(), position, o.moveNumber); err != nil {
		logw.Warningf(ctx, "Recorder finish failed: %v", err)
	}
	o.gameID = ""
}

// MoveValue estimates a candidate move on the board it is about to be played
// on, as a bounded scalar in [-1;1]: center control, first-move development,
// capture value, king exposure and the recent outcome labels.
func (o *Overlay) MoveValue(b *board.Board, m board.Move) float64 {
	value := 0.0

	row, col := m.To.Row(), m.To.Col()
	central := 3 <= row && row <= 4 && 3 <= col && col <= 4
	extended := 2 <= row && row <= 5 && 2 <= col && col <= 5
	switch {
	case central:
		value += 0.3
	case extended:
		value += 0.1
	}

	piece := b.At(m.From)
	if !piece.Moved && (piece.Kind == board.Knight || piece.Kind == board.Bishop) {
		value += 0.2
	}

	switch b.At(m.To).Kind {
	case board.Pawn:
		value += 0.1
	case board.Knight, board.Bishop:
		value += 0.3
	case board.Rook:
		value += 0.5
	case board.Queen:
		value += 0.9
	}

	if piece.Kind == board.King && b.PieceCount() > 20 && extended {
		value -= 0.4
	}

	if len(o.history) > recencyWindow {
		for _, r := range o.history[len(o.history)-recencyWindow:] {
			switch r.label {
			case Good:
				value += 0.1
			case Bad:
				value -= 0.1
			}
		}
	}

	if value > 1 {
		return 1
	}
	if value < -1 {
		return -1
	}
	return value
}

// strategy returns the RL engine hooks: every plain signal is blended with
// the weighted move value, and playouts sample from the top third by blended
// score most of the time.
func (o *Overlay) strategy(e eval.Evaluator) strategy {
	return strategy{
		selectionBias: func(b *board.Board, m board.Move) float64 {
			return o.weight * o.MoveValue(b, m)
		},
		orderScore: func(b *board.Board, m board.Move) float64 {
			return float64(e.MovePriority(b, m)) + o.weight*o.MoveValue(b, m)*10
		},
		samplePlayout: o.topThirdSampler(e),
		finalBonus: func(b *board.Board, m board.Move) float64 {
			return o.weight * o.MoveValue(b, m)
		},
	}
}

// topThirdSampler scores every legal move by priority plus the weighted move
// value, then samples uniformly from the top third at 0.7 and uniformly over
// all moves otherwise.
func (o *Overlay) topThirdSampler(e eval.Evaluator) func(rnd *rand.Rand, b *board.Board, moves []board.Move) board.Move {
	return func(rnd *rand.Rand, b *board.Board, moves []board.Move) board.Move {
		type scored struct {
			m     board.Move
			score float64
		}
		list := make([]scored, len(moves))
		for i, m := range moves {
			list[i] = scored{m: m, score: float64(e.MovePriority(b, m)) + o.weight*o.MoveValue(b, m)*5}
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].score > list[j].score
		})

		top := mathx.Max(1, len(list)/3)
		if rnd.Float64() < 0.7 {
			return list[rnd.Intn(top)].m
		}
		return moves[rnd.Intn(len(moves))]
	}
}
