package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDepth is the search depth requested for a full-game batch.
const DefaultDepth = 12

// GameSource turns raw move text (PGN or a move list) into moves and aligned snapshots.
type GameSource interface {
	Parse(raw string) (Game, error)
}

// Evaluator is the evaluation service contract. EvaluateBatch must answer with exactly one
// sample per requested position, in request order.
type Evaluator interface {
	EvaluateBatch(ctx context.Context, positions []string, depth int) ([]EvaluationSample, error)
	Evaluate(ctx context.Context, position string, depth int) (EvaluationSample, error)
}

// Option configures a Reviewer.
type Option func(*Reviewer)

func WithGameSource(src GameSource) Option {
	return func(r *Reviewer) { r.source = src }
}

func WithEvaluator(ev Evaluator) Option {
	return func(r *Reviewer) { r.evaluator = ev }
}

// WithDepth sets the search depth; values <= 0 keep DefaultDepth.
func WithDepth(depth int) Option {
	return func(r *Reviewer) {
		if depth > 0 {
			r.depth = depth
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Reviewer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIDGenerator overrides how review IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(r *Reviewer) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// Reviewer is the presentation-facing entry point. It owns the current Session and its
// Cursor and replaces both in one step on every successful load. Safe for concurrent use.
type Reviewer struct {
	source    GameSource
	evaluator Evaluator
	depth     int
	logger    *zap.Logger
	newID     func() string

	mu         sync.RWMutex
	session    *Session
	cursor     *Cursor
	generation uint64
	pending    bool
	cancel     context.CancelFunc
}

func NewReviewer(opts ...Option) *Reviewer {
	r := &Reviewer{
		depth:  DefaultDepth,
		logger: zap.NewNop(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	r.session = emptySession()
	r.cursor = NewCursor(r.session)
	return r
}

// LoadResult is what a successful load hands back to the caller.
type LoadResult struct {
	Session         *Session
	Classifications []Classification
	Summary         Summary
}

// LoadGame installs an already evaluated game. It supersedes any load still in flight.
func (r *Reviewer) LoadGame(moves []Move, snapshots []Snapshot, evaluations []EvaluationSample) (LoadResult, error) {
	gen, _ := r.begin(context.Background(), false)
	session, err := NewSession(r.newID(), Game{Moves: moves, Snapshots: snapshots}, evaluations)
	if err != nil {
		r.logger.Error("review alignment failure", zap.Error(err), zap.Int("plies", len(moves)))
		return LoadResult{}, err
	}
	if !r.install(gen, session) {
		return LoadResult{}, ErrSuperseded
	}
	return resultOf(session), nil
}

// Load parses raw, evaluates every position in one batch and installs the result.
// On any failure the previously loaded game stays active. A later Load cancels this one;
// a response that arrives for a superseded load is dropped and ErrSuperseded returned.
func (r *Reviewer) Load(ctx context.Context, raw string) (LoadResult, error) {
	if r.source == nil {
		return LoadResult{}, errors.New("review: no game source configured")
	}
	if r.evaluator == nil {
		return LoadResult{}, errors.New("review: no evaluator configured")
	}

	game, err := r.source.Parse(raw)
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			err = &ParseError{Err: err}
		}
		r.logger.Warn("review parse failed", zap.Error(err))
		return LoadResult{}, err
	}
	if len(game.Snapshots) != len(game.Moves)+1 {
		return LoadResult{}, &AlignmentError{What: "snapshots", Want: len(game.Moves) + 1, Got: len(game.Snapshots)}
	}

	gen, loadCtx := r.begin(ctx, true)
	defer r.finish(gen)

	positions := game.Positions()
	start := time.Now()
	r.logger.Info("review batch evaluation start",
		zap.Uint64("generation", gen),
		zap.Int("plies", len(positions)),
		zap.Int("depth", r.depth),
	)
	samples, err := r.evaluator.EvaluateBatch(loadCtx, positions, r.depth)
	if r.stale(gen) {
		r.logger.Info("review batch discarded", zap.Uint64("generation", gen))
		return LoadResult{}, ErrSuperseded
	}
	if err != nil {
		r.logger.Warn("review batch evaluation failed", zap.Error(err), zap.Uint64("generation", gen))
		return LoadResult{}, &EvaluationServiceError{Positions: len(positions), Err: err}
	}
	if len(samples) != len(positions) {
		err := &AlignmentError{What: "evaluations", Want: len(positions), Got: len(samples)}
		r.logger.Error("review alignment failure", zap.Error(err), zap.Uint64("generation", gen))
		return LoadResult{}, err
	}

	session, err := NewSession(r.newID(), game, samples)
	if err != nil {
		return LoadResult{}, err
	}
	if !r.install(gen, session) {
		return LoadResult{}, ErrSuperseded
	}
	r.logger.Info("review loaded",
		zap.String("review_id", session.ID()),
		zap.Int("plies", session.Len()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("white_accuracy", session.Accuracy().White),
		zap.Int("black_accuracy", session.Accuracy().Black),
	)
	return resultOf(session), nil
}

// Explore evaluates a single position outside a batch load. It does not touch review state.
func (r *Reviewer) Explore(ctx context.Context, position string) (EvaluationSample, error) {
	if r.evaluator == nil {
		return EvaluationSample{}, errors.New("review: no evaluator configured")
	}
	if strings.TrimSpace(position) == "" {
		return EvaluationSample{}, fmt.Errorf("review: empty position")
	}
	sample, err := r.evaluator.Evaluate(ctx, position, r.depth)
	if err != nil {
		return EvaluationSample{}, &EvaluationServiceError{Positions: 1, Err: err}
	}
	return sample, nil
}

// Navigate moves the cursor. Out-of-range targets are ignored and the current view returned.
func (r *Reviewer) Navigate(target int) View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, _ := r.cursor.Navigate(target)
	return v
}

// Step moves the cursor by delta plies, e.g. +1 for the next-move button.
func (r *Reviewer) Step(delta int) View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, _ := r.cursor.Navigate(r.cursor.Ply() + delta)
	return v
}

// View returns the current view without moving.
func (r *Reviewer) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cursor.View()
}

func (r *Reviewer) CurrentPly() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cursor.Ply()
}

// CurrentAccuracy reports per-side accuracy of the loaded game (100/100 when nothing is loaded).
func (r *Reviewer) CurrentAccuracy() Accuracy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session.Accuracy()
}

// Session returns the installed session, or ErrNoGame before the first load.
func (r *Reviewer) Session() (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session.ID() == "" {
		return nil, ErrNoGame
	}
	return r.session, nil
}

// Pending reports whether a batch evaluation is outstanding.
func (r *Reviewer) Pending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pending
}

// begin opens a new generation and cancels whatever load was in flight.
func (r *Reviewer) begin(ctx context.Context, pending bool) (uint64, context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.generation++
	r.pending = pending
	if !pending {
		return r.generation, ctx
	}
	loadCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	return r.generation, loadCtx
}

func (r *Reviewer) finish(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return
	}
	r.pending = false
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Reviewer) stale(gen uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation != gen
}

// install swaps session and cursor together, only if gen is still current.
func (r *Reviewer) install(gen uint64, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return false
	}
	r.session = s
	r.cursor = NewCursor(s)
	r.pending = false
	return true
}

func resultOf(s *Session) LoadResult {
	return LoadResult{Session: s, Classifications: s.Classifications(), Summary: s.Summary()}
}
