// Package observability exposes the service's Prometheus instruments.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions    prometheus.Gauge
	Turns             *prometheus.CounterVec
	RetrievalLatency  prometheus.Histogram
	GenerationLatency prometheus.Histogram
	ChunksRetrieved   prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live conversation sessions.",
		}),
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed turns by outcome.",
		}, []string{"status"}),
		RetrievalLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_latency_ms",
			Help:      "Embed plus similarity search latency in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Answer generation latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 20000},
		}),
		ChunksRetrieved: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_retrieved",
			Help:      "Chunks included in the generation context per turn.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 10},
		}),
	}
}

// ObserveTurn records one turn's outcome.
func (m *Metrics) ObserveTurn(status string) {
	m.Turns.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRetrievalLatency(d time.Duration) {
	m.RetrievalLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveGenerationLatency(d time.Duration) {
	m.GenerationLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveChunksRetrieved(n int) {
	m.ChunksRetrieved.Observe(float64(n))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
