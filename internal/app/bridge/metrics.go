package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeTranscribed = "transcribed"
	OutcomeSkipped     = "skipped"
	OutcomeFailed      = "failed"
)

// Metrics collects bridge counters in a private registry. Nothing is served;
// the registry is written to a node-exporter textfile on shutdown.
type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	segments     prometheus.Counter
	duration     prometheus.Histogram
	audioSeconds prometheus.Counter
	modelLoad    prometheus.Gauge
	textfile     string
}

// NewMetrics creates the bridge metrics. textfile may be empty, in which case
// WriteTextfile does nothing.
func NewMetrics(textfile string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sttbridge",
			Name:      "requests_total",
			Help:      "Requests read from the input, by outcome.",
		}, []string{"outcome"}),
		segments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sttbridge",
			Name:      "segments_total",
			Help:      "Segments written to the result stream.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sttbridge",
			Name:      "transcription_duration_seconds",
			Help:      "Wall time spent transcribing one file.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		audioSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sttbridge",
			Name:      "audio_seconds_total",
			Help:      "Audio covered by transcribed files, from the end of their last segment.",
		}),
		modelLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sttbridge",
			Name:      "model_load_duration_seconds",
			Help:      "Time it took to load the model at startup.",
		}),
		textfile: textfile,
	}
	m.registry.MustRegister(m.requests, m.segments, m.duration, m.audioSeconds, m.modelLoad)

	// Pre-create the outcome series so they are exported at zero.
	for _, outcome := range []string{OutcomeTranscribed, OutcomeSkipped, OutcomeFailed} {
		m.requests.WithLabelValues(outcome)
	}
	return m
}

// ObserveSkip counts a request that was skipped.
func (m *Metrics) ObserveSkip() {
	m.requests.WithLabelValues(OutcomeSkipped).Inc()
}

// ObserveRequest records one processed request.
func (m *Metrics) ObserveRequest(outcome string, segments int, elapsed time.Duration, audioSeconds float64) {
	m.requests.WithLabelValues(outcome).Inc()
	m.segments.Add(float64(segments))
	m.duration.Observe(elapsed.Seconds())
	if audioSeconds > 0 {
		m.audioSeconds.Add(audioSeconds)
	}
}

// SetModelLoadDuration records how long the startup load took.
func (m *Metrics) SetModelLoadDuration(d time.Duration) {
	m.modelLoad.Set(d.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to the configured textfile.
func (m *Metrics) WriteTextfile() error {
	if m.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(m.textfile, m.registry)
}
