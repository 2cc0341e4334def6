package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Allowed     prometheus.Counter
	Rejected    prometheus.Counter
	StoreErrors prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Allowed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dicomviewer_ratelimit_allowed_total",
			Help: "Total number of requests admitted by the rate limiter",
		}),
		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dicomviewer_ratelimit_rejected_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		StoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dicomviewer_ratelimit_store_errors_total",
			Help: "Total number of limit checks that failed open because the store errored",
		}),
	}
}

func (m *Metrics) incrementAllowed() {
	if m == nil {
		return
	}
	m.Allowed.Inc()
}

func (m *Metrics) incrementRejected() {
	if m == nil {
		return
	}
	m.Rejected.Inc()
}

func (m *Metrics) incrementStoreErrors() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}
