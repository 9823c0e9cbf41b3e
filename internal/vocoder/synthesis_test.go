package vocoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer(t *testing.T) *Synthesizer {
	t.Helper()
	fftSize := FFTSizeFor(testSampleRate, DefaultF0Floor)
	s, err := NewSynthesizer(testSampleRate, DefaultFramePeriodMs, fftSize)
	require.NoError(t, err)
	return s
}

// flatInputs builds a constant-pitch contour with matching flat envelope
// and aperiodicity spectrograms.
func flatInputs(frames int, f0Hz, envPower, aperiodicity float64) ([]float64, *Spectrogram, *Spectrogram) {
	f0 := make([]float64, frames)
	for i := range f0 {
		f0[i] = f0Hz
	}
	bins := FFTSizeFor(testSampleRate, DefaultF0Floor)/2 + 1
	env := NewSpectrogram(frames, bins)
	env.Fill(envPower)
	ap := NewSpectrogram(frames, bins)
	ap.Fill(aperiodicity)
	return f0, env, ap
}

func TestSynthesizeExactOutputLength(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t)
	f0, env, ap := flatInputs(41, 150, 1e-6, 0.1)

	for _, outLen := range []int{0, 1, 1000, 3200, 3207} {
		y, err := s.Synthesize(f0, env, ap, outLen)
		require.NoError(t, err)
		assert.Len(t, y, outLen)
	}
}

func TestSynthesizeEmptyContourIsSilent(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t)
	y, err := s.Synthesize(nil, NewSpectrogram(0, 0), NewSpectrogram(0, 0), 1000)
	require.NoError(t, err)
	require.Len(t, y, 1000)
	for _, v := range y {
		assert.Zero(t, v)
	}
}

func TestSynthesizeVoicedProducesEnergy(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t)
	f0, env, ap := flatInputs(41, 150, 1e-6, 0.1)

	y, err := s.Synthesize(f0, env, ap, 3200)
	require.NoError(t, err)

	var energy float64
	for _, v := range y {
		energy += v * v
	}
	assert.Greater(t, energy, 0.0)
}

func TestSynthesizeUnvoicedIsNoiseOnly(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t)
	f0, env, ap := flatInputs(41, 0, 1e-6, maxAperiodicity)
	for i := range f0 {
		f0[i] = 0
	}

	y, err := s.Synthesize(f0, env, ap, 3200)
	require.NoError(t, err)

	var energy float64
	for _, v := range y {
		energy += v * v
	}
	assert.Greater(t, energy, 0.0, "unvoiced frames still emit shaped noise")
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t)
	f0, env, ap := flatInputs(41, 200, 1e-6, 0.2)

	y1, err := s.Synthesize(f0, env, ap, 3200)
	require.NoError(t, err)
	y2, err := s.Synthesize(f0, env, ap, 3200)
	require.NoError(t, err)
	assert.Equal(t, y1, y2)
}

func TestSynthesizeOutputIsLimited(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t)
	// A deliberately hot envelope must come out peak-limited.
	f0, env, ap := flatInputs(41, 150, 10.0, 0.1)

	y, err := s.Synthesize(f0, env, ap, 3200)
	require.NoError(t, err)

	var peak float64
	for _, v := range y {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	assert.LessOrEqual(t, peak, 0.99+1e-9)
	assert.Greater(t, peak, 0.9, "limiter rescales to the ceiling, not below it")
}
