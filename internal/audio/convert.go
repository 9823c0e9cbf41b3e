package audio

import "encoding/binary"

// Float32ToS16LE writes src as little-endian signed 16-bit PCM into dst,
// clamping out-of-range samples. dst must hold at least 2*len(src) bytes.
// Returns the number of bytes written.
func Float32ToS16LE(dst []byte, src []float32) int {
	for i, v := range src {
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		s := int16(v * 32767.0)
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
	return len(src) * 2
}

// S16LEToFloat32 converts little-endian signed 16-bit PCM bytes into
// normalized float32 samples. A trailing odd byte is ignored.
func S16LEToFloat32(src []byte) []float32 {
	n := len(src) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(src[i*2:]))
		out[i] = float32(s) / 32768.0
	}
	return out
}
