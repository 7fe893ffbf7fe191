package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "squash"
	subsystem = "storage"
)

type metrics struct {
	transfers   *prometheus.CounterVec
	bytes       *prometheus.CounterVec
	cost        *prometheus.CounterVec
	storedBytes prometheus.Gauge
	saved       prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transfers_total",
			Help:      "number of completed transfers",
		}, []string{"direction"}),
		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transferred_bytes_total",
			Help:      "number of bytes moved over the simulated link",
		}, []string{"direction"}),
		cost: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transfer_cost_usd_total",
			Help:      "accumulated transfer cost in USD",
		}, []string{"direction"}),
		storedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stored_bytes",
			Help:      "bytes held in the bucket at the last summary",
		}),
		saved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "compression_saved_bytes_total",
			Help:      "bytes not uploaded thanks to compression",
		}),
	}
}

func (m *metrics) transfer(direction string, size int64, cost float64) {
	m.transfers.WithLabelValues(direction).Inc()
	m.bytes.WithLabelValues(direction).Add(float64(size))
	m.cost.WithLabelValues(direction).Add(cost)
}
