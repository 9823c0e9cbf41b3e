package vocoder

// Spectrogram stores one row of fftSize/2+1 values per analysis frame in a
// single contiguous buffer. Frame count and bin count never change after
// allocation; Frame returns a view into the shared buffer, valid only as
// long as the Spectrogram itself.
type Spectrogram struct {
	frames int
	bins   int
	data   []float64
}

// NewSpectrogram allocates a zeroed frames-by-bins spectrogram.
func NewSpectrogram(frames, bins int) *Spectrogram {
	if frames < 0 {
		frames = 0
	}
	if bins < 0 {
		bins = 0
	}
	return &Spectrogram{
		frames: frames,
		bins:   bins,
		data:   make([]float64, frames*bins),
	}
}

// Frames returns the number of rows.
func (s *Spectrogram) Frames() int { return s.frames }

// Bins returns the number of values per row.
func (s *Spectrogram) Bins() int { return s.bins }

// Frame returns the i-th row as a mutable slice view.
func (s *Spectrogram) Frame(i int) []float64 {
	return s.data[i*s.bins : (i+1)*s.bins]
}

// Fill sets every value of every frame to v.
func (s *Spectrogram) Fill(v float64) {
	for i := range s.data {
		s.data[i] = v
	}
}
