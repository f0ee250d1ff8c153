// Package metrics exposes pipeline counters for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "echoscript"

// Metrics groups the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	jobsFinished     *prometheus.CounterVec
	jobsInFlight     prometheus.Gauge
	chunks           *prometheus.CounterVec
	chunkRetries     prometheus.Counter
	chunkLatency     prometheus.Histogram
	summaryFallbacks prometheus.Counter
	audioSeconds     prometheus.Counter
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		jobsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Jobs that reached a terminal status.",
		}, []string{"status"}),
		jobsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Jobs currently being processed by this instance.",
		}),
		chunks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Chunk transcriptions by outcome.",
		}, []string{"outcome"}),
		chunkRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_retries_total",
			Help:      "Chunk transcription attempts that failed and were retried.",
		}),
		chunkLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_transcription_seconds",
			Help:      "Wall time to transcribe one chunk, retries included.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		summaryFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_fallbacks_total",
			Help:      "Summaries replaced by the fallback text.",
		}),
		audioSeconds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_seconds_total",
			Help:      "Seconds of normalized audio accepted for transcription.",
		}),
	}
}

func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.jobsInFlight.Inc()
}

func (m *Metrics) JobFinished(status string) {
	if m == nil {
		return
	}
	m.jobsInFlight.Dec()
	m.jobsFinished.WithLabelValues(status).Inc()
}

func (m *Metrics) ChunkDone(ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.chunks.WithLabelValues(outcome).Inc()
	m.chunkLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) ChunkRetried() {
	if m == nil {
		return
	}
	m.chunkRetries.Inc()
}

func (m *Metrics) SummaryFallback() {
	if m == nil {
		return
	}
	m.summaryFallbacks.Inc()
}

func (m *Metrics) AudioAccepted(seconds float64) {
	if m == nil {
		return
	}
	m.audioSeconds.Add(seconds)
}
