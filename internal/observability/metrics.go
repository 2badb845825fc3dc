package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	registry *prometheus.Registry

	Frames        *prometheus.CounterVec
	FrameDuration prometheus.Histogram
	Commits       *prometheus.CounterVec
	SpeakRequests *prometheus.CounterVec
	Switches      *prometheus.CounterVec
	Errors        *prometheus.CounterVec
	Practice      *prometheus.CounterVec
	WSClients     prometheus.Gauge
	TextLength    prometheus.Gauge
}

// NewMetrics registers the pipeline collectors on a fresh registry, together
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Frames: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_frames_total",
			Help: "Frames processed, by whether a hand was present",
		}, []string{"hand"}),
		FrameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mudra_frame_duration_seconds",
			Help:    "Time to read, detect and process one frame",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
		Commits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_commits_total",
			Help: "Symbols appended to the text",
		}, []string{"language", "mode", "source"}),
		SpeakRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_speak_requests_total",
			Help: "Speak requests, by outcome",
		}, []string{"status"}),
		Switches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_session_switches_total",
			Help: "Language or mode switches",
		}, []string{"language", "mode"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_errors_total",
			Help: "Errors, by component",
		}, []string{"component"}),
		Practice: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_practice_judgements_total",
			Help: "Practice drill judgements",
		}, []string{"language", "feedback"}),
		WSClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "mudra_ws_clients",
			Help: "Connected result stream clients",
		}),
		TextLength: f.NewGauge(prometheus.GaugeOpts{
			Name: "mudra_text_length",
			Help: "Characters in the accumulated text",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordError counts an error from component.
func (m *Metrics) RecordError(component string) {
	m.Errors.WithLabelValues(component).Inc()
}

// RecordSpeak counts a speak request outcome: "sent", "dropped" or "error".
func (m *Metrics) RecordSpeak(status string) {
	m.SpeakRequests.WithLabelValues(status).Inc()
}
