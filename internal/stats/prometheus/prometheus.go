// Package prometheus provides a Prometheus-backed stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/park285/cheese-review/internal/stats"
)

// Collector lazily registers one metric per name on first use.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

var _ stats.Collector = (*Collector)(nil)

// New creates a collector. If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

func (c *Collector) IncCounter(name string, delta int64) {
	c.counter(name).Add(float64(delta))
}

func (c *Collector) SetGauge(name string, value int64) {
	c.gauge(name).Set(float64(value))
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	c.histogram(name).Observe(value)
}

func (c *Collector) counter(name string) prometheus.Counter {
	c.mu.RLock()
	m, ok := c.counters[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok = c.counters[name]; ok {
		return m
	}
	m = register(c.registry, prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: name}))
	c.counters[name] = m
	return m
}

func (c *Collector) gauge(name string) prometheus.Gauge {
	c.mu.RLock()
	m, ok := c.gauges[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok = c.gauges[name]; ok {
		return m
	}
	m = register(c.registry, prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: name}))
	c.gauges[name] = m
	return m
}

func (c *Collector) histogram(name string) prometheus.Histogram {
	c.mu.RLock()
	m, ok := c.histograms[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok = c.histograms[name]; ok {
		return m
	}
	m = register(c.registry, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    name,
		Buckets: prometheus.DefBuckets,
	}))
	c.histograms[name] = m
	return m
}

// register returns the already registered metric of the same name when there is one.
// On any other registration failure the unregistered metric is still usable.
func register[M prometheus.Collector](reg prometheus.Registerer, m M) M {
	if err := reg.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				return existing
			}
		}
	}
	return m
}
