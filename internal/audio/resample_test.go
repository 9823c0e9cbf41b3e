package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleLengthLaw(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		inLen    int
		fromRate int
		toRate   int
		expected int
	}{
		{name: "downsample_by_half", inLen: 100, fromRate: 16000, toRate: 8000, expected: 50},
		{name: "upsample_by_two", inLen: 100, fromRate: 8000, toRate: 16000, expected: 200},
		{name: "cd_to_dat", inLen: 441, fromRate: 44100, toRate: 48000, expected: 480},
		{name: "rounding_up", inLen: 3, fromRate: 2, toRate: 3, expected: 5}, // 4.5 rounds to 5
		{name: "single_sample", inLen: 1, fromRate: 48000, toRate: 16000, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := make([]float32, tt.inLen)
			assert.Len(t, Resample(in, tt.fromRate, tt.toRate), tt.expected)
		})
	}
}

func TestResampleIdentity(t *testing.T) {
	t.Parallel()

	in := []float32{0.1, -0.2, 0.3}
	out := Resample(in, 44100, 44100)
	require.Equal(t, in, out)

	// The copy is independent of the input.
	out[0] = 0.9
	assert.Equal(t, float32(0.1), in[0])
}

func TestResampleDegenerateRates(t *testing.T) {
	t.Parallel()

	in := []float32{0.1, 0.2}
	assert.Equal(t, in, Resample(in, 0, 44100))
	assert.Equal(t, in, Resample(in, 44100, -1))
	assert.Empty(t, Resample(nil, 8000, 16000))
}

func TestResampleLinearInterpolation(t *testing.T) {
	t.Parallel()

	out := Resample([]float32{0, 1}, 8000, 16000)
	require.Len(t, out, 4)
	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[1], 1e-6)
	// Positions past the last input sample clamp to it.
	assert.InDelta(t, 1.0, out[2], 1e-6)
	assert.InDelta(t, 1.0, out[3], 1e-6)
}

func TestResamplePreservesSineShape(t *testing.T) {
	t.Parallel()

	const freq = 440.0
	in := make([]float32, 4800)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / 48000))
	}

	out := Resample(in, 48000, 16000)
	require.Len(t, out, 1600)
	for i := 0; i < len(out)-1; i++ {
		want := math.Sin(2 * math.Pi * freq * float64(i) / 16000)
		assert.InDelta(t, want, float64(out[i]), 0.02)
	}
}

func TestResampleClip(t *testing.T) {
	t.Parallel()

	c := &Clip{SampleRate: 16000, Data: make([]float32, 1600)}
	out := ResampleClip(c, 8000)
	assert.Equal(t, 8000, out.SampleRate)
	assert.Len(t, out.Data, 800)
}
