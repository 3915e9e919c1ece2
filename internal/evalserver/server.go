// Package evalserver exposes an evaluator over HTTP: /analyze, /analyze-batch and /metrics.
package evalserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/park285/cheese-review/internal/chess"
	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/internal/stats"
	"github.com/park285/cheese-review/pkg/reviewdto"
)

type Server struct {
	evaluator    review.Evaluator
	logger       *zap.Logger
	stats        stats.Collector
	gatherer     prometheus.Gatherer
	validate     func(fen string) error
	defaultDepth int
	maxBatch     int
	timeout      time.Duration
	apiKey       string

	metrics fasthttp.RequestHandler
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithStats(c stats.Collector) Option {
	return func(s *Server) { s.stats = stats.OrNoop(c) }
}

// WithGatherer enables GET /metrics for the given registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithFENValidator replaces the rules-library FEN check.
func WithFENValidator(fn func(string) error) Option {
	return func(s *Server) {
		if fn != nil {
			s.validate = fn
		}
	}
}

func WithDefaultDepth(d int) Option {
	return func(s *Server) {
		if d > 0 {
			s.defaultDepth = d
		}
	}
}

func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// WithRequestTimeout bounds a single request's evaluation time.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithAPIKey requires "Authorization: Bearer <key>" on the analyze endpoints.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

func New(ev review.Evaluator, opts ...Option) *Server {
	s := &Server{
		evaluator:    ev,
		logger:       zap.NewNop(),
		stats:        stats.NewNoop(),
		validate:     chess.ValidateFEN,
		defaultDepth: reviewdto.DefaultDepth,
		maxBatch:     reviewdto.MaxBatch,
		timeout:      5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gatherer != nil {
		s.metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return s
}

// Handler routes requests. Any origin may call it.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	if ctx.IsOptions() {
		ctx.SetStatusCode(fasthttp.StatusNoContent)
		return
	}

	path := string(ctx.Path())
	s.stats.IncCounter(stats.MetricRequests, 1)
	switch path {
	case "/":
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"message": "Chess evaluation API is running"})
	case "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	case "/analyze":
		if !s.requirePost(ctx) {
			return
		}
		s.handleAnalyze(ctx)
	case "/analyze-batch":
		if !s.requirePost(ctx) {
			return
		}
		s.handleBatch(ctx)
	case "/metrics":
		if s.metrics == nil {
			s.writeError(ctx, fasthttp.StatusNotFound, reviewdto.DomainError{Code: reviewdto.CodeUnavailable, Message: "metrics disabled"})
			return
		}
		s.metrics(ctx)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, reviewdto.DomainError{Code: reviewdto.CodeBadRequest, Message: "unknown path " + path})
	}
}

func (s *Server) requirePost(ctx *fasthttp.RequestCtx) bool {
	if !ctx.IsPost() {
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, reviewdto.DomainError{Code: reviewdto.CodeBadRequest, Message: "only POST is allowed"})
		return false
	}
	if s.apiKey == "" {
		return true
	}
	want := []byte("Bearer " + s.apiKey)
	if subtle.ConstantTimeCompare(ctx.Request.Header.Peek("Authorization"), want) != 1 {
		s.writeError(ctx, fasthttp.StatusUnauthorized, reviewdto.DomainError{Code: reviewdto.CodeAuth, Message: "missing or wrong api key"})
		return false
	}
	return true
}

func (s *Server) handleAnalyze(ctx *fasthttp.RequestCtx) {
	var req reviewdto.AnalysisRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, reviewdto.DomainError{Code: reviewdto.CodeBadRequest, Message: "invalid json: " + err.Error()})
		return
	}
	if err := s.validate(req.FEN); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, reviewdto.DomainError{Code: reviewdto.CodeInvalidFEN, Message: err.Error()})
		return
	}

	evalCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	sample, err := s.evaluator.Evaluate(evalCtx, req.FEN, s.depth(req.Depth))
	if err != nil {
		s.stats.IncCounter(stats.MetricRequestErrors, 1)
		s.logger.Warn("analyze failed", zap.String("fen", req.FEN), zap.Error(err))
		writeJSON(ctx, fasthttp.StatusOK, reviewdto.FailedAnalysis(err))
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, toResponse(sample))
}

func (s *Server) handleBatch(ctx *fasthttp.RequestCtx) {
	var req reviewdto.BatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, reviewdto.DomainError{Code: reviewdto.CodeBadRequest, Message: "invalid json: " + err.Error()})
		return
	}
	if len(req.FENs) == 0 {
		writeJSON(ctx, fasthttp.StatusOK, []reviewdto.AnalysisResponse{})
		return
	}
	if len(req.FENs) > s.maxBatch {
		s.writeError(ctx, fasthttp.StatusBadRequest, reviewdto.DomainError{
			Code:    reviewdto.CodeBadRequest,
			Message: fmt.Sprintf("batch of %d exceeds limit %d", len(req.FENs), s.maxBatch),
		})
		return
	}
	for i, fen := range req.FENs {
		if err := s.validate(fen); err != nil {
			s.writeError(ctx, fasthttp.StatusBadRequest, reviewdto.DomainError{
				Code:    reviewdto.CodeInvalidFEN,
				Message: fmt.Sprintf("fens[%d]: %v", i, err),
			})
			return
		}
	}
	s.stats.ObserveHistogram(stats.MetricBatchSize, float64(len(req.FENs)))

	evalCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	samples, err := s.evaluator.EvaluateBatch(evalCtx, req.FENs, s.depth(req.Depth))
	if err == nil && len(samples) != len(req.FENs) {
		err = &review.AlignmentError{What: "evaluations", Want: len(req.FENs), Got: len(samples)}
	}
	if err != nil {
		s.stats.IncCounter(stats.MetricRequestErrors, 1)
		s.logger.Warn("analyze batch failed", zap.Int("positions", len(req.FENs)), zap.Error(err))
		out := make([]reviewdto.AnalysisResponse, len(req.FENs))
		for i := range out {
			out[i] = reviewdto.FailedAnalysis(err)
		}
		writeJSON(ctx, fasthttp.StatusOK, out)
		return
	}

	out := make([]reviewdto.AnalysisResponse, len(samples))
	for i, sample := range samples {
		out[i] = toResponse(sample)
	}
	s.logger.Info("analyze batch",
		zap.Int("positions", len(samples)),
		zap.Duration("elapsed", time.Since(start)),
	)
	writeJSON(ctx, fasthttp.StatusOK, out)
}

func (s *Server) depth(requested int) int {
	if requested <= 0 {
		return s.defaultDepth
	}
	return chess.ClampDepth(requested)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "cheese-review",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.timeout + 30*time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("evaluation server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	}
}

func toResponse(s review.EvaluationSample) reviewdto.AnalysisResponse {
	return reviewdto.NewAnalysisResponse(strings.TrimSpace(s.RecommendedMove), s.Evaluation, s.IsMate)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, de reviewdto.DomainError) {
	s.stats.IncCounter(stats.MetricRequestErrors, 1)
	writeJSON(ctx, status, de)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"code":"internal","message":"internal server error"}`)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(b)
}
