package chessbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	corechess "github.com/park285/cheese-review/internal/chess"
	"github.com/park285/cheese-review/internal/config"
	"github.com/park285/cheese-review/internal/evalcache"
	"github.com/park285/cheese-review/internal/evalclient"
	"github.com/park285/cheese-review/internal/render"
	"github.com/park285/cheese-review/internal/repository"
	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/internal/stats"
	statslogger "github.com/park285/cheese-review/internal/stats/logger"
	promstats "github.com/park285/cheese-review/internal/stats/prometheus"
)

var ErrNoEvaluator = errors.New("STOCKFISH_PATH or EVAL_SERVICE_URL is required")

type Deps struct {
	Reviewer *review.Reviewer
	// Evaluator is the cached evaluator the reviewer uses.
	Evaluator review.Evaluator
	// Engine is nil when evaluation is remote.
	Engine   *corechess.Engine
	Repo     repository.Repository
	Renderer *render.Renderer
	Stats    stats.Collector
	// Registry is nil unless metrics are enabled.
	Registry *prometheus.Registry

	closers []func() error
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Deps{Renderer: render.New()}

	if cfg.MetricsEnabled {
		d.Registry = prometheus.NewRegistry()
		d.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		d.Stats = promstats.New(d.Registry)
	} else {
		d.Stats = statslogger.New(logger.Named("stats"))
	}

	base, err := d.evaluator(cfg, logger)
	if err != nil {
		return nil, err
	}

	layers, err := d.cacheLayers(ctx, cfg, logger)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	if len(layers) > 0 {
		d.Evaluator = evalcache.New(base, layers, evalcache.WithLogger(logger), evalcache.WithStats(d.Stats))
	} else {
		d.Evaluator = base
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := repository.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		d.closers = append(d.closers, db.Close)
		if err := repository.EnsureSchema(ctx, db); err != nil {
			_ = d.Close()
			return nil, err
		}
		d.Repo = repository.NewPostgres(db)
	} else {
		d.Repo = repository.NewMemory()
	}

	d.Reviewer = review.NewReviewer(
		review.WithGameSource(corechess.NewSource()),
		review.WithEvaluator(d.Evaluator),
		review.WithDepth(cfg.AnalysisDepth),
		review.WithLogger(logger),
	)
	return d, nil
}

// evaluator picks the remote service when configured, the local engine otherwise.
func (d *Deps) evaluator(cfg *config.AppConfig, logger *zap.Logger) (review.Evaluator, error) {
	if cfg.Remote() {
		logger.Info("using remote evaluation service", zap.String("url", cfg.EvalServiceURL))
		return evalclient.NewClient(cfg.EvalServiceURL, clientOptions(cfg)...), nil
	}
	if strings.TrimSpace(cfg.StockfishPath) == "" {
		return nil, ErrNoEvaluator
	}
	engine, err := corechess.NewEngine(corechess.EngineConfig{
		BinaryPath: cfg.StockfishPath,
		Threads:    cfg.EngineThreads,
		HashMB:     cfg.EngineHashMB,
		PoolSize:   cfg.EnginePoolSize,
		Logger:     logger,
		Stats:      d.Stats,
	})
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}
	d.Engine = engine
	d.closers = append(d.closers, engine.Close)
	return engine, nil
}

func clientOptions(cfg *config.AppConfig) []evalclient.Option {
	return []evalclient.Option{
		evalclient.WithTimeout(cfg.EvalTimeout),
		evalclient.WithRetry(cfg.EvalRetries),
		evalclient.WithMaxConnsPerHost(cfg.EvalMaxConns),
		evalclient.WithHeaderProvider(evalclient.BearerToken(cfg.EvalAPIKey)),
	}
}

func (d *Deps) cacheLayers(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) ([]evalcache.Store, error) {
	var layers []evalcache.Store
	if cfg.EvalLRUSize > 0 {
		lru, err := evalcache.NewLRUStore(cfg.EvalLRUSize)
		if err != nil {
			return nil, fmt.Errorf("init lru cache: %w", err)
		}
		layers = append(layers, lru)
	}
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rs, err := evalcache.NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.EvalCacheTTL())
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		d.closers = append(d.closers, rs.Close)
		logger.Info("evaluation cache backed by redis")
		layers = append(layers, rs)
	}
	return layers, nil
}

// Close releases everything New opened, newest first.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
