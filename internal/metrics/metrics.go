// Package metrics exposes Prometheus instrumentation for the gesture
// pipeline. A nil *Metrics is valid everywhere and records nothing, so
// instrumentation stays optional for tests and embedded use.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hgr"

// Metrics holds all collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FramesReceived prometheus.Counter
	FramesDropped  prometheus.Counter
	FrameDuration  prometheus.Histogram
	Gestures       *prometheus.CounterVec
	Actions        *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	BroadcastDrops prometheus.Counter
}

// New creates a Metrics instance with its own Prometheus registry,
// including the standard Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_received_total",
			Help:      "Total number of frames received from clients",
		}),

		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_dropped_total",
			Help:      "Frames overwritten in a session mailbox before processing",
		}),

		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frame_duration_seconds",
			Help:      "Frame classification and state transition duration",
			Buckets:   prometheus.DefBuckets,
		}),

		Gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gesture",
			Name:      "classified_total",
			Help:      "Classified gesture samples by label",
		}, []string{"label"}),

		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "device",
			Name:      "actions_total",
			Help:      "Device actions triggered by completed holds",
		}, []string{"action"}),

		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of currently connected sessions",
		}),

		BroadcastDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "evictions_total",
			Help:      "Subscribers evicted from the broadcast hub for falling behind",
		}),
	}

	m.registry.MustRegister(
		m.FramesReceived,
		m.FramesDropped,
		m.FrameDuration,
		m.Gestures,
		m.Actions,
		m.ActiveSessions,
		m.BroadcastDrops,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFrame counts one received frame.
func (m *Metrics) RecordFrame() {
	if m == nil {
		return
	}
	m.FramesReceived.Inc()
}

// RecordFrameDropped counts a frame overwritten before processing.
func (m *Metrics) RecordFrameDropped() {
	if m == nil {
		return
	}
	m.FramesDropped.Inc()
}

// ObserveFrameDuration records how long one frame took end to end.
func (m *Metrics) ObserveFrameDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FrameDuration.Observe(d.Seconds())
}

// RecordGesture counts one classified sample by label.
func (m *Metrics) RecordGesture(label string) {
	if m == nil {
		return
	}
	m.Gestures.WithLabelValues(label).Inc()
}

// RecordAction counts one triggered device action.
func (m *Metrics) RecordAction(action string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action).Inc()
}

// SessionStarted increments the active session gauge.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

// SessionEnded decrements the active session gauge.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// RecordEviction counts one subscriber evicted from the hub.
func (m *Metrics) RecordEviction() {
	if m == nil {
		return
	}
	m.BroadcastDrops.Inc()
}
