// Package logger is a stats collector that writes metrics to the debug log.
package logger

import (
	"go.uber.org/zap"

	"github.com/park285/cheese-review/internal/stats"
)

type Collector struct {
	logger *zap.Logger
}

var _ stats.Collector = (*Collector)(nil)

// New creates a logger-backed collector. A nil logger discards everything.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

func (c *Collector) IncCounter(name string, delta int64) {
	c.logger.Debug("counter", zap.String("metric", name), zap.Int64("delta", delta))
}

func (c *Collector) SetGauge(name string, value int64) {
	c.logger.Debug("gauge", zap.String("metric", name), zap.Int64("value", value))
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.Debug("histogram", zap.String("metric", name), zap.Float64("value", value))
}
