package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat32ToS16LE(t *testing.T) {
	t.Parallel()

	src := []float32{0, 1.0, -1.0, 0.5}
	dst := make([]byte, len(src)*2)

	n := Float32ToS16LE(dst, src)
	require.Equal(t, 8, n)

	assert.Equal(t, []byte{0x00, 0x00}, dst[0:2])  // 0
	assert.Equal(t, []byte{0xFF, 0x7F}, dst[2:4])  // 32767
	assert.Equal(t, []byte{0x01, 0x80}, dst[4:6])  // -32767
	assert.Equal(t, []byte{0xFF, 0x3F}, dst[6:8])  // 16383
}

func TestFloat32ToS16LEClampsOutOfRange(t *testing.T) {
	t.Parallel()

	dst := make([]byte, 4)
	Float32ToS16LE(dst, []float32{2.5, -3.0})
	assert.Equal(t, []byte{0xFF, 0x7F}, dst[0:2])
	assert.Equal(t, []byte{0x01, 0x80}, dst[2:4])
}

func TestS16LEToFloat32(t *testing.T) {
	t.Parallel()

	src := []byte{
		0x00, 0x00, // 0
		0xFF, 0x7F, // 32767
		0x00, 0x80, // -32768
		0x00, 0x40, // 16384
	}

	out := S16LEToFloat32(src)
	require.Len(t, out, 4)
	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 0.999969, out[1], 1e-4)
	assert.InDelta(t, -1.0, out[2], 1e-6)
	assert.InDelta(t, 0.5, out[3], 1e-6)
}

func TestS16LEToFloat32IgnoresTrailingByte(t *testing.T) {
	t.Parallel()

	out := S16LEToFloat32([]byte{0x00, 0x40, 0x7F})
	assert.Len(t, out, 1)
}

func TestConvertRoundTrip(t *testing.T) {
	t.Parallel()

	src := []float32{0, 0.25, -0.25, 0.75, -0.75}
	dst := make([]byte, len(src)*2)
	Float32ToS16LE(dst, src)

	back := S16LEToFloat32(dst)
	require.Len(t, back, len(src))
	for i := range src {
		assert.InDelta(t, src[i], back[i], 1.0/32768.0)
	}
}
