// Package session contains the game session façade: one board plus one
// engine, exposing the apply/choose/reset surface the outer system drives.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/record"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/search"
	"github.com/seekerror/logw"
)

// Session owns one board and one engine. Calls are serialized internally;
// sessions share no state with each other.
type Session struct {
	id   string
	mode string

	b        *board.Board
	recorder record.Recorder
	opts     search.Options
	learner  board.Color

	engine   *search.Engine // lazily constructed per flavour
	rlEngine *search.Engine
	overlay  *search.Overlay
	useRL    bool

	created      time.Time
	lastActivity time.Time

	mu sync.Mutex
}

// Option is a session creation option.
type Option func(*Session)

// WithRecorder attaches a data sink. A nil recorder is legal.
func WithRecorder(r record.Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithSearchOptions sets the engine search parameters.
func WithSearchOptions(opts search.Options) Option {
	return func(s *Session) {
		s.opts = opts
	}
}

// WithMode sets the session mode label passed to the recorder.
func WithMode(mode string) Option {
	return func(s *Session) {
		s.mode = mode
	}
}

// WithLearner sets the color whose results count as favorable for the RL
// overlay. Defaults to Black, the engine side in human-vs-engine play.
func WithLearner(c board.Color) Option {
	return func(s *Session) {
		s.learner = c
	}
}

// New returns a session holding a board in the starting position.
func New(ctx context.Context, id string, opts ...Option) *Session {
	s := &Session{
		id:      id,
		mode:    "human_vs_ai",
		b:       board.NewBoard(),
		learner: board.Black,
		created: time.Now(),
	}
	for _, fn := range opts {
		fn(s)
	}
	s.lastActivity = s.created

	logw.Infof(ctx, "Created session %v (mode=%v)", id, s.mode)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Board returns an independent copy of the session board.
func (s *Session) Board() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.b.Copy()
}

// ApplyMove applies the move if it is legal in the current position. Illegal
// moves, and any move when the side to move has no legal move, are rejected
// with no state change.
func (s *Session) ApplyMove(ctx context.Context, m board.Move) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.applyLocked(ctx, m)
}

// ApplyDescriptor resolves an array move descriptor against the legal-move
// set and applies it. Malformed or illegal descriptors are rejected.
func (s *Session) ApplyDescriptor(ctx context.Context, raw []any) bool {
	m, err := board.DecodeMove(raw)
	if err != nil {
		logw.Debugf(ctx, "Move descriptor rejected: %v", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	resolved, ok := s.b.FindLegalMove(m.From, m.To, m.Promotion)
	if !ok {
		return false
	}
	return s.applyLocked(ctx, resolved)
}

func (s *Session) applyLocked(ctx context.Context, m board.Move) bool {
	outcome := s.b.Apply(m)
	if outcome != board.Applied {
		logw.Debugf(ctx, "Move %v %v", m, outcome)
		return false
	}

	if s.useRL {
		s.overlay.Advance()
	}
	logw.Debugf(ctx, "Move %v: %v", m, s.b)
	return true
}

// ChooseMove invokes the engine on the current side to move. Returns false
// when the side to move has no legal move.
func (s *Session) ChooseMove(ctx context.Context) (board.Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.currentEngine(ctx).ChooseMove(ctx, s.b)
}

// Reset restores the starting position. An RL session starts a fresh
// recording.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.b.Reset()
	if s.useRL {
		s.ensureOverlay().BeginGame(ctx, s.id, s.mode)
	}
	logw.Infof(ctx, "Reset session %v", s.id)
}

// EnableRL swaps the engine flavour. Enabling starts a recording if none is
// active.
func (s *Session) EnableRL(ctx context.Context, flag bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if flag && !s.useRL {
		s.ensureOverlay().BeginGame(ctx, s.id, s.mode)
	}
	s.useRL = flag
	logw.Infof(ctx, "Session %v RL=%v", s.id, flag)
}

// FinishGame records the final result: the overlay annotates its memory and
// the recording is closed. No-op for plain sessions.
func (s *Session) FinishGame(ctx context.Context, result board.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.useRL {
		s.overlay.FinishGame(ctx, result, s.learner, s.b)
	}
	logw.Infof(ctx, "Session %v finished: %v", s.id, result)
}

// Result adjudicates the current position.
func (s *Session) Result() board.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.b.Result()
}

// Snapshot returns the opaque position state the outer system serializes.
func (s *Session) Snapshot() *board.PositionDict {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.b.Dict()
}

// IsExpired returns true iff the session has seen no activity for the given
// duration.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return time.Since(s.lastActivity) > timeout
}

// currentEngine returns the engine for the active flavour, constructing it
// on first use.
func (s *Session) currentEngine(ctx context.Context) *search.Engine {
	if s.useRL {
		if s.rlEngine == nil {
			s.rlEngine = search.NewRL(ctx, s.ensureOverlay(), search.WithOptions(s.opts))
		}
		return s.rlEngine
	}
	if s.engine == nil {
		s.engine = search.New(ctx, search.WithOptions(s.opts))
	}
	return s.engine
}

func (s *Session) ensureOverlay() *search.Overlay {
	if s.overlay == nil {
		s.overlay = search.NewOverlay(s.recorder)
	}
	return s.overlay
}

func (s *Session) touch() {
	s.lastActivity = time.Now()
}
