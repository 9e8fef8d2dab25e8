// Package metrics exposes Prometheus instrumentation for the API server and
// the indexer.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// ServerMetrics carries the API server's request and pipeline metrics on a
// private registry.
type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	askTotal           *prometheus.CounterVec
	askDuration        *prometheus.HistogramVec
	retrievedChunks    *prometheus.HistogramVec
	redactionWarnings  prometheus.Counter
	relaxedRetryTotal  prometheus.Counter
	noContextTotal     prometheus.Counter
	retrieverSwapTotal *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "faqrag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "faqrag",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	askTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Subsystem: "pipeline",
			Name:      "ask_total",
			Help:      "Completed ask pipeline runs by intent and confidence.",
		},
		[]string{"service", "intent", "confidence"},
	)
	askDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "faqrag",
			Subsystem: "pipeline",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end ask pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "faqrag",
			Subsystem: "pipeline",
			Name:      "retrieved_chunks",
			Help:      "Distribution of retrieved chunks per ask request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	redactionWarnings := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Subsystem: "pipeline",
			Name:      "redaction_warnings_total",
			Help:      "Total sensitive value categories masked in user input.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	relaxedRetryTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Subsystem: "pipeline",
			Name:      "relaxed_retry_total",
			Help:      "Total retrievals retried without the category filter.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	noContextTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Subsystem: "pipeline",
			Name:      "no_context_total",
			Help:      "Total ask requests answered without any retrieved FAQ.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrieverSwapTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Subsystem: "pipeline",
			Name:      "retriever_swap_total",
			Help:      "Retriever rebuilds triggered by reindex events, by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		askTotal,
		askDuration,
		retrievedChunks,
		redactionWarnings,
		relaxedRetryTotal,
		noContextTotal,
		retrieverSwapTotal,
	)

	return &ServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		askTotal:           askTotal,
		askDuration:        askDuration,
		retrievedChunks:    retrievedChunks,
		redactionWarnings:  redactionWarnings,
		relaxedRetryTotal:  relaxedRetryTotal,
		noContextTotal:     noContextTotal,
		retrieverSwapTotal: retrieverSwapTotal,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

// PipelineObserver adapts the server metrics to the ask pipeline's observer
// contract.
type PipelineObserver struct {
	metrics *ServerMetrics
	service string
}

func (m *ServerMetrics) Pipeline(service string) *PipelineObserver {
	return &PipelineObserver{metrics: m, service: service}
}

func (o *PipelineObserver) ObserveAsk(intent string, confidence domain.Confidence, retrieved int, duration time.Duration) {
	if intent == "" {
		intent = "unknown"
	}
	o.metrics.askTotal.WithLabelValues(o.service, intent, string(confidence)).Inc()
	o.metrics.askDuration.WithLabelValues(o.service).Observe(duration.Seconds())
	o.metrics.retrievedChunks.WithLabelValues(o.service).Observe(float64(retrieved))
}

func (o *PipelineObserver) RedactionWarnings(count int) {
	if count <= 0 {
		return
	}
	o.metrics.redactionWarnings.Add(float64(count))
}

func (o *PipelineObserver) RelaxedRetry() {
	o.metrics.relaxedRetryTotal.Inc()
}

func (o *PipelineObserver) NoContextAnswer() {
	o.metrics.noContextTotal.Inc()
}

// RecordRetrieverSwap counts retriever rebuilds after reindex events.
func (m *ServerMetrics) RecordRetrieverSwap(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.retrieverSwapTotal.WithLabelValues(service, status).Inc()
}
