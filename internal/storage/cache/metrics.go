package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the document cache.
type Metrics struct {
	Hits          prometheus.Counter
	Misses        prometheus.Counter
	Errors        prometheus.Counter
	SharedFetches prometheus.Counter
	BreakerState  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with cache metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		Hits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dicomviewer_cache_hits_total",
			Help: "Total number of document cache hits",
		}),
		Misses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dicomviewer_cache_misses_total",
			Help: "Total number of document cache misses",
		}),
		Errors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dicomviewer_cache_errors_total",
			Help: "Total number of cache read or write failures",
		}),
		SharedFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dicomviewer_cache_shared_fetches_total",
			Help: "Total number of fetches served by a concurrent in-flight fetch",
		}),
		BreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dicomviewer_cache_circuit_breaker_state",
			Help: "Current cache circuit breaker state (0=closed/healthy, 1=open/bypassed)",
		}),
	}
}

func (m *Metrics) incHits() {
	if m != nil {
		m.Hits.Inc()
	}
}

func (m *Metrics) incMisses() {
	if m != nil {
		m.Misses.Inc()
	}
}

func (m *Metrics) incErrors() {
	if m != nil {
		m.Errors.Inc()
	}
}

func (m *Metrics) incShared() {
	if m != nil {
		m.SharedFetches.Inc()
	}
}

func (m *Metrics) setBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}
