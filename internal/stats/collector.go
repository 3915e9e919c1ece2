// Package stats provides a small metrics interface shared by the engine, cache and server.
package stats

// Metric names.
const (
	// Engine metrics.
	MetricEvaluations      = "review_evaluations_total"
	MetricEvaluationErrors = "review_evaluation_errors_total"
	MetricSearchSeconds    = "review_engine_search_seconds"
	MetricEngineLive       = "review_engine_sessions_live"

	// Cache metrics.
	MetricCacheHits   = "review_eval_cache_hits_total"
	MetricCacheMisses = "review_eval_cache_misses_total"
	MetricCacheSize   = "review_eval_cache_size"

	// Server metrics.
	MetricRequests      = "review_http_requests_total"
	MetricRequestErrors = "review_http_request_errors_total"
	MetricBatchSize     = "review_batch_positions"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

// OrNoop returns c, or a Noop collector when c is nil.
func OrNoop(c Collector) Collector {
	if c == nil {
		return NewNoop()
	}
	return c
}
