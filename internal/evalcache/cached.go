package evalcache

import (
	"context"

	"go.uber.org/zap"

	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/internal/stats"
)

// Evaluator reads through its layers in order before calling the wrapped evaluator.
// A hit in a later layer is copied into the earlier ones. Layer errors are logged and
// treated as misses.
type Evaluator struct {
	next   review.Evaluator
	layers []Store
	logger *zap.Logger
	stats  stats.Collector
}

var _ review.Evaluator = (*Evaluator)(nil)

type Option func(*Evaluator)

func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithStats(c stats.Collector) Option {
	return func(e *Evaluator) { e.stats = stats.OrNoop(c) }
}

func New(next review.Evaluator, layers []Store, opts ...Option) *Evaluator {
	e := &Evaluator{
		next:   next,
		layers: layers,
		logger: zap.NewNop(),
		stats:  stats.NewNoop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Evaluate(ctx context.Context, fen string, depth int) (review.EvaluationSample, error) {
	key := Key(fen, depth)
	if s, ok := e.lookup(ctx, key); ok {
		return s, nil
	}
	s, err := e.next.Evaluate(ctx, fen, depth)
	if err != nil {
		return review.EvaluationSample{}, err
	}
	e.store(ctx, key, s, len(e.layers))
	return s, nil
}

// EvaluateBatch forwards only the misses, as one batch, and merges them back in order.
func (e *Evaluator) EvaluateBatch(ctx context.Context, fens []string, depth int) ([]review.EvaluationSample, error) {
	out := make([]review.EvaluationSample, len(fens))
	var (
		missIdx  []int
		missFENs []string
	)
	for i, fen := range fens {
		if s, ok := e.lookup(ctx, Key(fen, depth)); ok {
			out[i] = s
			continue
		}
		missIdx = append(missIdx, i)
		missFENs = append(missFENs, fen)
	}
	if len(missFENs) == 0 {
		return out, nil
	}

	fresh, err := e.next.EvaluateBatch(ctx, missFENs, depth)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missFENs) {
		return nil, &review.AlignmentError{What: "evaluations", Want: len(missFENs), Got: len(fresh)}
	}
	for j, i := range missIdx {
		out[i] = fresh[j]
		e.store(ctx, Key(fens[i], depth), fresh[j], len(e.layers))
	}
	return out, nil
}

func (e *Evaluator) lookup(ctx context.Context, key string) (review.EvaluationSample, bool) {
	for i, layer := range e.layers {
		s, ok, err := layer.Get(ctx, key)
		if err != nil {
			e.logger.Warn("eval cache get failed", zap.Int("layer", i), zap.Error(err))
			continue
		}
		if ok {
			e.stats.IncCounter(stats.MetricCacheHits, 1)
			e.store(ctx, key, s, i)
			return s, true
		}
	}
	e.stats.IncCounter(stats.MetricCacheMisses, 1)
	return review.EvaluationSample{}, false
}

// store writes to layers[:upto].
func (e *Evaluator) store(ctx context.Context, key string, s review.EvaluationSample, upto int) {
	for i := 0; i < upto && i < len(e.layers); i++ {
		if err := e.layers[i].Set(ctx, key, s); err != nil {
			e.logger.Warn("eval cache set failed", zap.Int("layer", i), zap.Error(err))
		}
		if l, ok := e.layers[i].(*LRUStore); ok {
			e.stats.SetGauge(stats.MetricCacheSize, int64(l.Len()))
		}
	}
}
