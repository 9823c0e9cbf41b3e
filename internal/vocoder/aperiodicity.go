package vocoder

import "math"

// Aperiodicity bounds. Fully periodic frames still carry a little noise
// energy and fully noisy frames a little band-limited structure; clamping
// keeps the synthesizer's excitation mix away from degenerate extremes.
const (
	minAperiodicity = 0.001
	maxAperiodicity = 0.999
)

// AperiodicityModel estimates, per analysis frame and per frequency bin,
// the ratio of noise-like to total energy. The per-frame base value comes
// from the waveform's normalized autocorrelation at the pitch period; the
// per-bin profile rises towards Nyquist, where speech is breathier.
// Output frames are index-aligned with the F0 contour.
type AperiodicityModel struct {
	sampleRate int
	cfg        Config
	fftSize    int
}

// NewAperiodicityModel creates an aperiodicity model using the same FFT
// size derivation as the envelope model so the two stay bin-compatible.
func NewAperiodicityModel(sampleRate int, cfg Config) *AperiodicityModel {
	cfg.normalize()
	return &AperiodicityModel{
		sampleRate: sampleRate,
		cfg:        cfg,
		fftSize:    FFTSizeFor(sampleRate, cfg.F0Floor),
	}
}

// Estimate computes one aperiodicity frame per F0 contour entry. Unvoiced
// frames are treated as pure noise.
func (m *AperiodicityModel) Estimate(x []float64, f0 []float64) *Spectrogram {
	bins := m.fftSize/2 + 1
	sg := NewSpectrogram(len(f0), bins)

	for i := range f0 {
		out := sg.Frame(i)
		if f0[i] <= 0 {
			for k := range out {
				out[k] = maxAperiodicity
			}
			continue
		}
		base := m.frameBase(x, i, f0[i])
		fillProfile(out, base)
	}
	return sg
}

// frameBase returns the frame's noise floor as 1 minus the normalized
// autocorrelation at the pitch period lag.
func (m *AperiodicityModel) frameBase(x []float64, frame int, f0 float64) float64 {
	lag := int(float64(m.sampleRate)/f0 + 0.5)
	w := 2 * lag
	center := int(float64(frame) * m.cfg.FramePeriodMs * float64(m.sampleRate) / 1000.0)
	start := center - w/2

	var num, e0, e1 float64
	for j := 0; j < w; j++ {
		a := sampleAt(x, start+j)
		b := sampleAt(x, start+j+lag)
		num += a * b
		e0 += a * a
		e1 += b * b
	}
	den := math.Sqrt(e0 * e1)
	if den <= 0 {
		return maxAperiodicity
	}
	return clampAperiodicity(1.0 - num/den)
}

// fillProfile spreads the base value across bins with a quadratic rise
// towards Nyquist.
func fillProfile(out []float64, base float64) {
	n := len(out)
	for k := 0; k < n; k++ {
		r := float64(k) / float64(n-1)
		out[k] = clampAperiodicity(base + (maxAperiodicity-base)*r*r)
	}
}

func clampAperiodicity(v float64) float64 {
	if v < minAperiodicity {
		return minAperiodicity
	}
	if v > maxAperiodicity {
		return maxAperiodicity
	}
	return v
}

func sampleAt(x []float64, idx int) float64 {
	if idx < 0 || idx >= len(x) {
		return 0
	}
	return x[idx]
}
