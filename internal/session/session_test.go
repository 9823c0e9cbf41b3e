package session

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/singspeak/internal/audio"
	"github.com/tphakala/singspeak/internal/errors"
	"github.com/tphakala/singspeak/internal/mapping"
	"github.com/tphakala/singspeak/internal/observability/metrics"
	"github.com/tphakala/singspeak/internal/tts"
	"github.com/tphakala/singspeak/internal/vocoder"
)

const stubRate = 22050

// stubTTS returns a short sine for every utterance and counts calls. An
// optional gate makes Synthesize block until released.
type stubTTS struct {
	calls   atomic.Int32
	started chan struct{}
	gate    chan struct{}
}

func (s *stubTTS) Synthesize(ctx context.Context, text string) (*audio.Clip, error) {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	n := stubRate / 10 // 100 ms
	data := make([]float32, n)
	for i := range data {
		data[i] = 0.4 * float32(math.Sin(2*math.Pi*150*float64(i)/stubRate))
	}
	return &audio.Clip{SampleRate: stubRate, Data: data}, nil
}

func (s *stubTTS) SampleRate() int { return stubRate }
func (s *stubTTS) Close() error    { return nil }

func newTestSession(t *testing.T, cfg Config, engine tts.Synthesizer) (*Session, *audio.PlaybackBuffer) {
	t.Helper()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	buffer := audio.NewPlaybackBuffer()
	s, err := New(cfg, Dependencies{
		Mapping: mapping.Default(),
		TTS:     engine,
		Buffer:  buffer,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, buffer
}

func TestNewValidatesDependencies(t *testing.T) {
	t.Parallel()

	buffer := audio.NewPlaybackBuffer()
	engine := tts.NewNoop(0)

	_, err := New(Config{SampleRate: 48000}, Dependencies{TTS: engine, Buffer: buffer})
	assert.Error(t, err, "mapping is required")

	_, err = New(Config{SampleRate: 48000}, Dependencies{Mapping: mapping.Default(), Buffer: buffer})
	assert.Error(t, err, "tts is required")

	_, err = New(Config{SampleRate: 0}, Dependencies{
		Mapping: mapping.Default(), TTS: engine, Buffer: buffer,
	})
	assert.Error(t, err, "sample rate must be positive")
}

func TestTriggerUnmappedNote(t *testing.T) {
	t.Parallel()

	s, buffer := newTestSession(t, Config{}, &stubTTS{})

	err := s.TriggerNote(61) // black key, unmapped in the default scale
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
	assert.Equal(t, 0, buffer.Len())
}

func TestTriggerRendersIntoBuffer(t *testing.T) {
	t.Parallel()

	engine := &stubTTS{}
	s, buffer := newTestSession(t, Config{SampleRate: 16000}, engine)

	require.NoError(t, s.TriggerNote(60))

	// 100 ms at 22050 resampled to 16000.
	expected := int(math.Round(float64(stubRate/10) * 16000 / stubRate))
	require.Eventually(t, func() bool { return buffer.Len() == expected },
		5*time.Second, 10*time.Millisecond)
}

func TestCacheAvoidsResynthesis(t *testing.T) {
	t.Parallel()

	engine := &stubTTS{}
	s, buffer := newTestSession(t, Config{SampleRate: 16000}, engine)

	require.NoError(t, s.TriggerNote(60))
	first := int(math.Round(float64(stubRate/10) * 16000 / stubRate))
	require.Eventually(t, func() bool { return buffer.Len() == first },
		5*time.Second, 10*time.Millisecond)

	require.NoError(t, s.TriggerNote(60))
	require.Eventually(t, func() bool { return buffer.Len() == 2*first },
		5*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), engine.calls.Load(), "second trigger must hit the cache")
}

func TestFullQueueDropsTrigger(t *testing.T) {
	t.Parallel()

	engine := &stubTTS{
		started: make(chan struct{}, 8),
		gate:    make(chan struct{}),
	}
	s, _ := newTestSession(t, Config{QueueSize: 1}, engine)

	// Occupy the worker, then fill the single queue slot.
	require.NoError(t, s.TriggerNote(60))
	<-engine.started
	require.NoError(t, s.TriggerNote(62))

	err := s.TriggerNote(64)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLimit))

	close(engine.gate)
}

func TestFlushDiscardsBufferedAudio(t *testing.T) {
	t.Parallel()

	s, buffer := newTestSession(t, Config{}, &stubTTS{})

	require.NoError(t, s.TriggerNote(60))
	require.Eventually(t, func() bool { return buffer.Len() > 0 },
		5*time.Second, 10*time.Millisecond)

	s.Flush()
	assert.Equal(t, 0, buffer.Len())
}

func TestExportWritesUtteranceWAV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, buffer := newTestSession(t, Config{ExportDir: dir}, &stubTTS{})

	require.NoError(t, s.TriggerNote(60))
	require.Eventually(t, func() bool { return buffer.Len() > 0 },
		5*time.Second, 10*time.Millisecond)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".wav", filepath.Ext(files[0].Name()))

	clip, err := audio.DecodeWAV(mustOpen(t, filepath.Join(dir, files[0].Name())))
	require.NoError(t, err)
	assert.Equal(t, 16000, clip.SampleRate)
	assert.NotEmpty(t, clip.Data)
}

func TestPitchShiftPreservesDuration(t *testing.T) {
	t.Parallel()

	plain, plainBuffer := newTestSession(t, Config{SampleRate: 16000}, &stubTTS{})
	shifted, shiftedBuffer := newTestSession(t, Config{SampleRate: 16000, PitchShift: true}, &stubTTS{})

	require.NoError(t, plain.TriggerNote(60))
	require.NoError(t, shifted.TriggerNote(60))

	expected := int(math.Round(float64(stubRate/10) * 16000 / stubRate))
	require.Eventually(t, func() bool { return plainBuffer.Len() == expected },
		10*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return shiftedBuffer.Len() == expected },
		10*time.Second, 10*time.Millisecond)
}

func TestAppendedFramesAreCounted(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	playback, err := metrics.NewPlaybackMetrics(registry)
	require.NoError(t, err)

	buffer := audio.NewPlaybackBuffer()
	s, err := New(Config{SampleRate: 16000}, Dependencies{
		Mapping:  mapping.Default(),
		TTS:      &stubTTS{},
		Buffer:   buffer,
		Playback: playback,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.TriggerNote(60))
	expected := int(math.Round(float64(stubRate/10) * 16000 / stubRate))
	require.Eventually(t, func() bool { return buffer.Len() == expected },
		5*time.Second, 10*time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)
	var counted float64
	for _, family := range families {
		if family.GetName() == "playback_frames_appended_total" {
			counted = family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.InDelta(t, float64(expected), counted, 0.5)
}

func TestVocoderOptionsReachTheShifter(t *testing.T) {
	t.Parallel()

	narrow, _ := newTestSession(t, Config{
		PitchShift: true,
		Vocoder:    vocoder.Options{SemitoneRange: 2},
	}, &stubTTS{})
	wide, _ := newTestSession(t, Config{PitchShift: true}, &stubTTS{})

	// 600 Hz is two octaves above the 150 Hz base. The default bound
	// allows the full 4x ratio; a two-semitone bound clamps it.
	assert.InDelta(t, 4.0, wide.shifter.RatioForFrequency(600), 1e-9)
	assert.InDelta(t, math.Pow(2, 2.0/12.0), narrow.shifter.RatioForFrequency(600), 1e-9)
}

func TestCloseStopsWorker(t *testing.T) {
	defer goleak.VerifyNone(t)

	buffer := audio.NewPlaybackBuffer()
	s, err := New(Config{SampleRate: 16000}, Dependencies{
		Mapping: mapping.Default(),
		TTS:     &stubTTS{},
		Buffer:  buffer,
	})
	require.NoError(t, err)

	require.NoError(t, s.TriggerNote(60))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	err = s.TriggerNote(60)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}
