package chess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/park285/cheese-review/internal/chess/uci"
	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/internal/stats"
)

type EngineConfig struct {
	BinaryPath string
	Threads    int
	HashMB     int
	// PoolSize bounds both live engine processes and concurrent searches in a batch.
	PoolSize int
	Logger   *zap.Logger
	Stats    stats.Collector
}

// Engine evaluates positions on a pool of local UCI processes. It implements
// review.Evaluator.
type Engine struct {
	pool   *uci.Pool
	opt    uci.Options
	logger *zap.Logger
	stats  stats.Collector
}

var _ review.Evaluator = (*Engine)(nil)

func NewEngine(cfg EngineConfig) (*Engine, error) {
	pool, err := uci.NewPool(uci.PoolConfig{BinaryPath: cfg.BinaryPath, Capacity: cfg.PoolSize})
	if err != nil {
		return nil, err
	}
	hash := cfg.HashMB
	if hash <= 0 {
		hash = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		pool:   pool,
		opt:    uci.Options{Threads: cfg.Threads, HashMB: hash, MultiPV: 1},
		logger: logger,
		stats:  stats.OrNoop(cfg.Stats),
	}, nil
}

// Evaluate searches one position to depth and reports the score from White's side.
func (e *Engine) Evaluate(ctx context.Context, fen string, depth int) (review.EvaluationSample, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return review.EvaluationSample{}, fmt.Errorf("empty fen")
	}

	session, err := e.pool.Acquire(ctx, e.opt)
	if err != nil {
		e.stats.IncCounter(stats.MetricEvaluationErrors, 1)
		return review.EvaluationSample{}, fmt.Errorf("acquire engine: %w", err)
	}
	e.stats.SetGauge(stats.MetricEngineLive, int64(e.pool.Stats().Live))
	var releaseErr error
	defer func() {
		e.pool.Release(session, releaseErr)
	}()

	if err := session.NewGame(ctx); err != nil {
		releaseErr = err
		e.stats.IncCounter(stats.MetricEvaluationErrors, 1)
		return review.EvaluationSample{}, err
	}

	start := time.Now()
	resp, err := session.Search(ctx, uci.SearchRequest{FEN: fen, Limits: AnalysisLimits(depth)})
	if err != nil {
		releaseErr = err
		e.stats.IncCounter(stats.MetricEvaluationErrors, 1)
		e.logger.Warn("engine search failed", zap.String("fen", fen), zap.Error(err))
		return review.EvaluationSample{}, err
	}
	e.stats.ObserveHistogram(stats.MetricSearchSeconds, time.Since(start).Seconds())
	e.stats.IncCounter(stats.MetricEvaluations, 1)

	return SampleFromSearch(fen, resp), nil
}

// EvaluateBatch evaluates every position concurrently, bounded by the pool size.
// Results keep request order; the first failure cancels the rest.
func (e *Engine) EvaluateBatch(ctx context.Context, fens []string, depth int) ([]review.EvaluationSample, error) {
	out := make([]review.EvaluationSample, len(fens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.pool.Capacity())
	for i, fen := range fens {
		g.Go(func() error {
			sample, err := e.Evaluate(gctx, fen, depth)
			if err != nil {
				return fmt.Errorf("position %d: %w", i, err)
			}
			out[i] = sample
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) Close() error {
	if e.pool == nil {
		return nil
	}
	return e.pool.Close()
}

// SampleFromSearch turns a side-to-move relative search result into a White-relative
// sample. Mate scores keep their distance and take White's sign.
func SampleFromSearch(fen string, resp uci.SearchResponse) review.EvaluationSample {
	best := resp.Best()
	sign := 1
	if SideToMove(fen) == review.Black {
		sign = -1
	}
	if best.Score.IsMate {
		return review.EvaluationSample{
			Evaluation:      sign * best.Score.Mate,
			IsMate:          true,
			RecommendedMove: best.Move,
		}
	}
	return review.EvaluationSample{
		Evaluation:      sign * best.Score.CP,
		RecommendedMove: best.Move,
	}
}
