package audio

import "sync"

// PlaybackBuffer is an unbounded FIFO of mono samples shared between the
// synthesis side, which appends whole clips, and the output device
// callback, which drains a few hundred frames at a time. A single mutex
// guards all state; the callback never blocks longer than the memmove.
type PlaybackBuffer struct {
	mu   sync.Mutex
	data []float32
}

// NewPlaybackBuffer returns an empty buffer.
func NewPlaybackBuffer() *PlaybackBuffer {
	return &PlaybackBuffer{}
}

// Append queues samples for playback.
func (b *PlaybackBuffer) Append(samples []float32) {
	if len(samples) == 0 {
		return
	}
	b.mu.Lock()
	b.data = append(b.data, samples...)
	b.mu.Unlock()
}

// Len returns the number of buffered frames.
func (b *PlaybackBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Flush discards all buffered frames.
func (b *PlaybackBuffer) Flush() {
	b.mu.Lock()
	b.data = b.data[:0]
	b.mu.Unlock()
}

// Pull writes frames*channels samples into out, broadcasting each mono
// frame across all channels. If fewer than frames are buffered the rest of
// out is zero-filled; only frames actually copied are removed from the
// buffer. Returns the number of frames consumed.
func (b *PlaybackBuffer) Pull(out []float32, frames, channels int) int {
	b.mu.Lock()
	n := frames
	if n > len(b.data) {
		n = len(b.data)
	}

	for i := 0; i < n; i++ {
		v := b.data[i]
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = v
		}
	}
	for i := n * channels; i < frames*channels; i++ {
		out[i] = 0
	}

	b.data = b.data[:copy(b.data, b.data[n:])]
	b.mu.Unlock()
	return n
}
