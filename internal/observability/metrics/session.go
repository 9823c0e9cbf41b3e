// Package metrics provides session metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics contains Prometheus metrics for the note pipeline: speech
// synthesis, the utterance cache and pitch shifting.
type SessionMetrics struct {
	registry *prometheus.Registry

	// Note pipeline metrics
	notesTotal        *prometheus.CounterVec
	noteDuration      prometheus.Histogram
	queueDepthGauge   prometheus.Gauge
	droppedNotesTotal prometheus.Counter

	// Speech synthesis metrics
	synthesisTotal    *prometheus.CounterVec
	synthesisDuration prometheus.Histogram

	// Utterance cache metrics
	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter

	// Pitch shift metrics
	shiftsTotal   *prometheus.CounterVec
	shiftDuration prometheus.Histogram
}

// NewSessionMetrics creates and registers new session metrics
func NewSessionMetrics(registry *prometheus.Registry) (*SessionMetrics, error) {
	m := &SessionMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *SessionMetrics) initMetrics() error {
	m.notesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_notes_total",
			Help: "Total number of note triggers handled",
		},
		[]string{"status"}, // status: played, dropped, error
	)

	m.noteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "session_note_duration_seconds",
			Help:    "Time from note trigger to buffered audio",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	m.queueDepthGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_queue_depth",
			Help: "Note triggers currently waiting for the worker",
		},
	)

	m.droppedNotesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_dropped_notes_total",
			Help: "Total number of note triggers dropped because the queue was full",
		},
	)

	m.synthesisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_synthesis_total",
			Help: "Total number of speech synthesis invocations",
		},
		[]string{"status"}, // status: success, error
	)

	m.synthesisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "session_synthesis_duration_seconds",
			Help:    "Time taken to synthesize one utterance",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	m.cacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_utterance_cache_hits_total",
			Help: "Total number of utterance cache hits",
		},
	)

	m.cacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_utterance_cache_misses_total",
			Help: "Total number of utterance cache misses",
		},
	)

	m.shiftsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_pitch_shifts_total",
			Help: "Total number of pitch shift operations",
		},
		[]string{"status"}, // status: success, passthrough
	)

	m.shiftDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "session_pitch_shift_duration_seconds",
			Help:    "Time taken for one pitch shift",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	return nil
}

// Describe implements the prometheus.Collector interface
func (m *SessionMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.notesTotal.Describe(ch)
	m.noteDuration.Describe(ch)
	m.queueDepthGauge.Describe(ch)
	m.droppedNotesTotal.Describe(ch)
	m.synthesisTotal.Describe(ch)
	m.synthesisDuration.Describe(ch)
	m.cacheHitsTotal.Describe(ch)
	m.cacheMissesTotal.Describe(ch)
	m.shiftsTotal.Describe(ch)
	m.shiftDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *SessionMetrics) Collect(ch chan<- prometheus.Metric) {
	m.notesTotal.Collect(ch)
	m.noteDuration.Collect(ch)
	m.queueDepthGauge.Collect(ch)
	m.droppedNotesTotal.Collect(ch)
	m.synthesisTotal.Collect(ch)
	m.synthesisDuration.Collect(ch)
	m.cacheHitsTotal.Collect(ch)
	m.cacheMissesTotal.Collect(ch)
	m.shiftsTotal.Collect(ch)
	m.shiftDuration.Collect(ch)
}

// RecordNote records one handled note trigger.
func (m *SessionMetrics) RecordNote(status string) {
	if m == nil {
		return
	}
	m.notesTotal.WithLabelValues(status).Inc()
}

// RecordNoteDuration records the trigger-to-buffer latency of one note.
func (m *SessionMetrics) RecordNoteDuration(seconds float64) {
	if m == nil {
		return
	}
	m.noteDuration.Observe(seconds)
}

// UpdateQueueDepth sets the current worker queue depth.
func (m *SessionMetrics) UpdateQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepthGauge.Set(float64(n))
}

// RecordDroppedNote records a trigger dropped on a full queue.
func (m *SessionMetrics) RecordDroppedNote() {
	if m == nil {
		return
	}
	m.droppedNotesTotal.Inc()
}

// RecordSynthesis records one speech synthesis invocation.
func (m *SessionMetrics) RecordSynthesis(status string, seconds float64) {
	if m == nil {
		return
	}
	m.synthesisTotal.WithLabelValues(status).Inc()
	m.synthesisDuration.Observe(seconds)
}

// RecordCacheHit records an utterance cache hit.
func (m *SessionMetrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHitsTotal.Inc()
}

// RecordCacheMiss records an utterance cache miss.
func (m *SessionMetrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMissesTotal.Inc()
}

// RecordShift records one pitch shift operation.
func (m *SessionMetrics) RecordShift(status string, seconds float64) {
	if m == nil {
		return
	}
	m.shiftsTotal.WithLabelValues(status).Inc()
	m.shiftDuration.Observe(seconds)
}
