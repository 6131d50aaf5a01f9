package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the ingestion worker: per-document pipeline
// outcomes, durations, concurrency, and the delay between upload and
// processing start.
type WorkerMetrics struct {
	registry *prometheus.Registry

	ingestTotal    *prometheus.CounterVec
	ingestDuration *prometheus.HistogramVec
	ingestInFlight prometheus.Gauge
	queueLag       *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	m := &WorkerMetrics{
		registry: registry,
		ingestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pdfchat",
				Subsystem: "worker",
				Name:      "document_process_total",
				Help:      "Documents run through the ingestion pipeline by outcome.",
			},
			[]string{"service", "status"},
		),
		ingestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pdfchat",
				Subsystem: "worker",
				Name:      "document_process_duration_seconds",
				Help:      "End-to-end ingestion duration per document by outcome.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "status"},
		),
		ingestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   "pdfchat",
				Subsystem:   "worker",
				Name:        "document_process_in_flight",
				Help:        "Documents currently inside the ingestion pipeline.",
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
		queueLag: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pdfchat",
				Subsystem: "worker",
				Name:      "queue_lag_seconds",
				Help:      "Delay between document upload and processing start.",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"service"},
		),
	}

	registry.MustRegister(m.ingestTotal, m.ingestDuration, m.ingestInFlight, m.queueLag)
	return m
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.ingestInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.ingestInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.ingestTotal.WithLabelValues(service, status).Inc()
	m.ingestDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
