package vocoder

import (
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// powerFloor keeps the envelope strictly positive so later square roots
// and divisions stay well defined even on silent frames.
const powerFloor = 1e-12

// EnvelopeModel estimates a smoothed spectral envelope for every analysis
// frame. The envelope is a one-sided power spectrum of fftSize/2+1 bins,
// pitch-adaptively windowed and smoothed in the frequency domain so the
// fine harmonic structure is stripped while the formant shape survives.
// Frames are index-aligned with the F0 contour the model is given.
type EnvelopeModel struct {
	sampleRate int
	cfg        Config
	fftSize    int
	plan       *algofft.Plan[complex128]

	window []float64
	buf    []complex128
	power  []float64
	smooth []float64
}

// NewEnvelopeModel creates an envelope model. The FFT size is derived from
// the sample rate and the F0 floor via FFTSizeFor; the same size must be
// handed to the synthesizer.
func NewEnvelopeModel(sampleRate int, cfg Config) (*EnvelopeModel, error) {
	cfg.normalize()
	fftSize := FFTSizeFor(sampleRate, cfg.F0Floor)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, err
	}
	bins := fftSize/2 + 1
	return &EnvelopeModel{
		sampleRate: sampleRate,
		cfg:        cfg,
		fftSize:    fftSize,
		plan:       plan,
		window:     make([]float64, fftSize),
		buf:        make([]complex128, fftSize),
		power:      make([]float64, bins),
		smooth:     make([]float64, bins),
	}, nil
}

// FFTSize returns the FFT size the model was planned for.
func (m *EnvelopeModel) FFTSize() int { return m.fftSize }

// Estimate computes one envelope frame per F0 contour entry. Unvoiced
// frames (contour value 0) fall back to a default estimate windowed at
// the F0 floor, so the result is smooth and positive everywhere.
func (m *EnvelopeModel) Estimate(x []float64, f0 []float64) (*Spectrogram, error) {
	bins := m.fftSize/2 + 1
	sg := NewSpectrogram(len(f0), bins)

	for i := range f0 {
		f := f0[i]
		if f <= 0 {
			f = m.cfg.F0Floor
		}
		center := int(float64(i) * m.cfg.FramePeriodMs * float64(m.sampleRate) / 1000.0)
		if err := m.estimateFrame(x, center, f, sg.Frame(i)); err != nil {
			return nil, err
		}
	}
	return sg, nil
}

func (m *EnvelopeModel) estimateFrame(x []float64, center int, f0 float64, out []float64) error {
	// Pitch-synchronous Hann window spanning three periods.
	winLen := int(3.0*float64(m.sampleRate)/f0 + 0.5)
	if winLen > m.fftSize {
		winLen = m.fftSize
	}
	if winLen < 4 {
		winLen = 4
	}

	for i := range m.buf {
		m.buf[i] = 0
	}
	half := winLen / 2
	for j := 0; j < winLen; j++ {
		idx := center - half + j
		if idx < 0 || idx >= len(x) {
			continue
		}
		w := 0.5 - 0.5*math.Cos(2.0*math.Pi*float64(j)/float64(winLen-1))
		m.buf[j] = complex(x[idx]*w, 0)
	}

	if err := m.plan.Forward(m.buf, m.buf); err != nil {
		return err
	}

	bins := len(out)
	for k := 0; k < bins; k++ {
		re := real(m.buf[k])
		im := imag(m.buf[k])
		m.power[k] = re*re + im*im + powerFloor
	}

	// Two passes of a moving average with a width of one third of the
	// fundamental removes the harmonic ripple without flattening formants.
	halfWidth := int(f0/3.0*float64(m.fftSize)/float64(m.sampleRate) + 0.5)
	if halfWidth < 1 {
		halfWidth = 1
	}
	movingAverage(m.power, m.smooth, halfWidth)
	movingAverage(m.smooth, out, halfWidth)
	return nil
}

// movingAverage writes the centered moving average of src into dst with
// edge clamping. len(dst) == len(src).
func movingAverage(src, dst []float64, halfWidth int) {
	n := len(src)
	for k := 0; k < n; k++ {
		lo := k - halfWidth
		if lo < 0 {
			lo = 0
		}
		hi := k + halfWidth
		if hi >= n {
			hi = n - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += src[j]
		}
		dst[k] = sum / float64(hi-lo+1)
	}
}
