// Package metrics exposes Prometheus instrumentation for the voice pipeline
// and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Voice pipeline
	TranscriptionRequests  *prometheus.CounterVec
	TranscriptionFailures  *prometheus.CounterVec
	TranscriptionDuration  prometheus.Histogram
	ExtractionRequests     prometheus.Counter
	ExtractionFallbacks    prometheus.Counter
	AssistantTurns         *prometheus.CounterVec
	SpeechRequests         prometheus.Counter
	SpeechFailures         prometheus.Counter
	UpstreamRateLimits     prometheus.Counter
	UpstreamQuotaExhausted prometheus.Counter

	// Marketplace
	ListingsCreated  *prometheus.CounterVec
	SearchQueries    prometheus.Counter
	NotificationsOut prometheus.Counter

	// HTTP API
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors on reg. Pass prometheus.DefaultRegisterer
// in production; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TranscriptionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sakanka_transcription_requests_total",
			Help: "Total transcription requests by language",
		}, []string{"language"}),
		TranscriptionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sakanka_transcription_failures_total",
			Help: "Total failed transcription requests by language",
		}, []string{"language"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sakanka_transcription_duration_seconds",
			Help:    "Duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		ExtractionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakanka_extraction_requests_total",
			Help: "Total product field extraction requests",
		}),
		ExtractionFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakanka_extraction_fallbacks_total",
			Help: "Extractions that fell back to the raw-transcript draft",
		}),
		AssistantTurns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sakanka_assistant_turns_total",
			Help: "Assistant chat completions by language",
		}, []string{"language"}),
		SpeechRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakanka_speech_requests_total",
			Help: "Total text-to-speech requests",
		}),
		SpeechFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakanka_speech_failures_total",
			Help: "Total failed text-to-speech requests",
		}),
		UpstreamRateLimits: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakanka_upstream_rate_limits_total",
			Help: "Upstream AI responses rejected with HTTP 429",
		}),
		UpstreamQuotaExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakanka_upstream_quota_exhausted_total",
			Help: "Upstream AI responses rejected with HTTP 402",
		}),
		ListingsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sakanka_listings_created_total",
			Help: "Product listings created by language",
		}, []string{"language"}),
		SearchQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakanka_search_queries_total",
			Help: "Product search queries served",
		}),
		NotificationsOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakanka_notifications_enqueued_total",
			Help: "SMS notifications enqueued for delivery",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sakanka_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sakanka_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

func (m *Metrics) RecordTranscription(language string, durationSeconds float64, failed bool) {
	m.TranscriptionRequests.WithLabelValues(language).Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
	if failed {
		m.TranscriptionFailures.WithLabelValues(language).Inc()
	}
}

func (m *Metrics) RecordExtraction(fellBack bool) {
	m.ExtractionRequests.Inc()
	if fellBack {
		m.ExtractionFallbacks.Inc()
	}
}

func (m *Metrics) RecordAssistantTurn(language string) {
	m.AssistantTurns.WithLabelValues(language).Inc()
}

func (m *Metrics) RecordSpeech(failed bool) {
	m.SpeechRequests.Inc()
	if failed {
		m.SpeechFailures.Inc()
	}
}

func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
