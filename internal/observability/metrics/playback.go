// Package metrics provides playback metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PlaybackMetrics contains Prometheus metrics for the playback path: the
// shared sample buffer and the audio output device feeding from it.
type PlaybackMetrics struct {
	registry *prometheus.Registry

	// Buffer metrics
	framesPulledTotal   prometheus.Counter
	framesAppendedTotal prometheus.Counter
	underrunsTotal      prometheus.Counter
	bufferedFramesGauge prometheus.Gauge
	underrunFramesTotal prometheus.Counter

	// Device metrics
	deviceStartsTotal *prometheus.CounterVec
	callbackDuration  prometheus.Histogram
}

// NewPlaybackMetrics creates and registers new playback metrics
func NewPlaybackMetrics(registry *prometheus.Registry) (*PlaybackMetrics, error) {
	m := &PlaybackMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *PlaybackMetrics) initMetrics() error {
	m.framesPulledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_frames_pulled_total",
			Help: "Total number of frames the output device pulled from the buffer",
		},
	)

	m.framesAppendedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_frames_appended_total",
			Help: "Total number of frames appended to the playback buffer",
		},
	)

	m.underrunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_underruns_total",
			Help: "Total number of device callbacks that found too few buffered frames",
		},
	)

	m.underrunFramesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_underrun_frames_total",
			Help: "Total number of frames zero-filled due to buffer underrun",
		},
	)

	m.bufferedFramesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "playback_buffered_frames",
			Help: "Frames currently waiting in the playback buffer",
		},
	)

	m.deviceStartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_device_starts_total",
			Help: "Total number of output device start attempts",
		},
		[]string{"status"}, // status: success, error
	)

	m.callbackDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playback_callback_duration_seconds",
			Help:    "Time spent filling one device callback",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 12), // 10us to ~40ms
		},
	)

	return nil
}

// Describe implements the prometheus.Collector interface
func (m *PlaybackMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.framesPulledTotal.Describe(ch)
	m.framesAppendedTotal.Describe(ch)
	m.underrunsTotal.Describe(ch)
	m.underrunFramesTotal.Describe(ch)
	m.bufferedFramesGauge.Describe(ch)
	m.deviceStartsTotal.Describe(ch)
	m.callbackDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *PlaybackMetrics) Collect(ch chan<- prometheus.Metric) {
	m.framesPulledTotal.Collect(ch)
	m.framesAppendedTotal.Collect(ch)
	m.underrunsTotal.Collect(ch)
	m.underrunFramesTotal.Collect(ch)
	m.bufferedFramesGauge.Collect(ch)
	m.deviceStartsTotal.Collect(ch)
	m.callbackDuration.Collect(ch)
}

// AddFramesPulled records frames consumed by the output device.
func (m *PlaybackMetrics) AddFramesPulled(n int) {
	if m == nil {
		return
	}
	m.framesPulledTotal.Add(float64(n))
}

// AddFramesAppended records frames appended to the buffer.
func (m *PlaybackMetrics) AddFramesAppended(n int) {
	if m == nil {
		return
	}
	m.framesAppendedTotal.Add(float64(n))
}

// RecordUnderrun records one underrun event and the frames it zero-filled.
func (m *PlaybackMetrics) RecordUnderrun(zeroFilledFrames int) {
	if m == nil {
		return
	}
	m.underrunsTotal.Inc()
	m.underrunFramesTotal.Add(float64(zeroFilledFrames))
}

// UpdateBufferedFrames sets the current buffer depth.
func (m *PlaybackMetrics) UpdateBufferedFrames(n int) {
	if m == nil {
		return
	}
	m.bufferedFramesGauge.Set(float64(n))
}

// RecordDeviceStart records an output device start attempt.
func (m *PlaybackMetrics) RecordDeviceStart(status string) {
	if m == nil {
		return
	}
	m.deviceStartsTotal.WithLabelValues(status).Inc()
}

// RecordCallbackDuration records the time spent in one device callback.
func (m *PlaybackMetrics) RecordCallbackDuration(seconds float64) {
	if m == nil {
		return
	}
	m.callbackDuration.Observe(seconds)
}
