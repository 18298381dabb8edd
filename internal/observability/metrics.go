package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jddeal/go-wsr88d/wire"
)

// Metrics holds the Prometheus counters and histograms for decode requests.
type Metrics struct {
	DecodeRequests *prometheus.CounterVec   // labels: level={2,3}, outcome={ok,error}
	DecodeErrors   *prometheus.CounterVec   // labels: level={2,3}, kind=wire.Classify
	DecodeDuration *prometheus.HistogramVec // labels: level={2,3}
	DecodedPackets *prometheus.CounterVec   // labels: code
}

// NewMetrics creates the decode metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsr88d",
			Name:      "decode_requests_total",
			Help:      "Decode requests by product level and outcome.",
		}, []string{"level", "outcome"}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsr88d",
			Name:      "decode_errors_total",
			Help:      "Failed decodes by product level and error kind.",
		}, []string{"level", "kind"}),
		DecodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wsr88d",
			Name:      "decode_duration_seconds",
			Help:      "Time spent decoding one file.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"level"}),
		DecodedPackets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsr88d",
			Name:      "decoded_packets_total",
			Help:      "Level 3 packets decoded by packet code.",
		}, []string{"code"}),
	}

	reg.MustRegister(
		m.DecodeRequests,
		m.DecodeErrors,
		m.DecodeDuration,
		m.DecodedPackets,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// ObserveDecode records one decode of level that started at start.
func (m *Metrics) ObserveDecode(level string, start time.Time, err error) {
	m.DecodeDuration.WithLabelValues(level).Observe(time.Since(start).Seconds())
	if err != nil {
		m.DecodeRequests.WithLabelValues(level, "error").Inc()
		m.DecodeErrors.WithLabelValues(level, wire.Classify(err)).Inc()
		return
	}
	m.DecodeRequests.WithLabelValues(level, "ok").Inc()
}

// CountPacket records one decoded Level 3 packet.
func (m *Metrics) CountPacket(code uint16) {
	m.DecodedPackets.WithLabelValues(fmt.Sprintf("0x%04X", code)).Inc()
}
