package vocoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 16000

// sine generates numSamples of a freq Hz sine at the given amplitude.
func sine(freq, amplitude float64, numSamples int) []float64 {
	x := make([]float64, numSamples)
	for i := range x {
		x[i] = amplitude * math.Sin(2.0*math.Pi*freq*float64(i)/float64(testSampleRate))
	}
	return x
}

// interiorVoiced returns the voiced contour values with margin frames cut
// off both ends, where zero padding skews the correlation window.
func interiorVoiced(f0 []float64, margin int) []float64 {
	var out []float64
	for i := margin; i < len(f0)-margin; i++ {
		if f0[i] > 0 {
			out = append(out, f0[i])
		}
	}
	return out
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := append([]float64(nil), v...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted[len(sorted)/2]
}

func TestAnalyzeContourLength(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testSampleRate, DefaultConfig())
	x := sine(150, 0.5, 5600)

	f0 := a.Analyze(x)
	assert.Len(t, f0, FrameCount(len(x), testSampleRate, DefaultFramePeriodMs))
}

func TestAnalyzeSilenceIsUnvoiced(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testSampleRate, DefaultConfig())
	f0 := a.Analyze(make([]float64, 5600))

	require.NotEmpty(t, f0)
	for i, v := range f0 {
		assert.Zerof(t, v, "frame %d should be unvoiced", i)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testSampleRate, DefaultConfig())
	assert.Empty(t, a.Analyze(nil))
}

func TestAnalyzeTracksSine(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testSampleRate, DefaultConfig())
	x := sine(150, 0.5, 5600)

	voiced := interiorVoiced(a.Analyze(x), 10)
	require.NotEmpty(t, voiced, "interior frames of a loud sine must be voiced")
	for _, f := range voiced {
		assert.InDelta(t, 150.0, f, 3.0) // within 2%
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testSampleRate, DefaultConfig())
	x := sine(220, 0.3, 5600)

	assert.Equal(t, a.Analyze(x), a.Analyze(x))
}

func TestFixIsolatedFrames(t *testing.T) {
	t.Parallel()

	t.Run("unvoiced_gap_is_interpolated", func(t *testing.T) {
		t.Parallel()
		f0 := []float64{100, 0, 120}
		fixIsolatedFrames(f0)
		assert.Equal(t, []float64{100, 110, 120}, f0)
	})

	t.Run("voiced_blip_is_dropped", func(t *testing.T) {
		t.Parallel()
		f0 := []float64{0, 100, 0}
		fixIsolatedFrames(f0)
		assert.Equal(t, []float64{0, 0, 0}, f0)
	})

	t.Run("runs_are_untouched", func(t *testing.T) {
		t.Parallel()
		f0 := []float64{0, 100, 110, 0, 0}
		fixIsolatedFrames(f0)
		assert.Equal(t, []float64{0, 100, 110, 0, 0}, f0)
	})
}
