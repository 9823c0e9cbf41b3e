package vocoder

import (
	"math"
	"math/rand"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// noiseSeed fixes the excitation noise sequence so synthesis is
// deterministic for identical inputs.
const noiseSeed = 1

// Synthesizer reconstructs a mono signal from an F0 contour plus the
// envelope and aperiodicity spectrograms. Voiced energy is generated as a
// pulse train shaped by the periodic part of the envelope; noise energy is
// generated per frame, spectrally shaped by the aperiodic part, and
// overlap-added with a Hann window. The output length is dictated by the
// caller, which is what makes duration-preserving pitch shifts possible.
type Synthesizer struct {
	sampleRate    int
	framePeriodMs float64
	fftSize       int
	plan          *algofft.Plan[complex128]

	spec  []complex128
	time  []complex128
	noise []complex128
}

// NewSynthesizer creates a synthesizer. fftSize must match the size the
// envelope and aperiodicity frames were computed with.
func NewSynthesizer(sampleRate int, framePeriodMs float64, fftSize int) (*Synthesizer, error) {
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, err
	}
	if framePeriodMs <= 0 {
		framePeriodMs = DefaultFramePeriodMs
	}
	return &Synthesizer{
		sampleRate:    sampleRate,
		framePeriodMs: framePeriodMs,
		fftSize:       fftSize,
		plan:          plan,
		spec:          make([]complex128, fftSize),
		time:          make([]complex128, fftSize),
		noise:         make([]complex128, fftSize),
	}, nil
}

// Synthesize produces exactly outLen samples. The three input arrays must
// be frame-aligned; envelope and aperiodicity rows must have fftSize/2+1
// bins. A degenerate contour (all unvoiced, or empty) yields noise-only or
// silent output, never an error.
func (s *Synthesizer) Synthesize(f0 []float64, envelope, aperiodicity *Spectrogram, outLen int) ([]float64, error) {
	y := make([]float64, outLen)
	if outLen == 0 || len(f0) == 0 {
		return y, nil
	}

	if err := s.addPulses(y, f0, envelope, aperiodicity); err != nil {
		return nil, err
	}
	if err := s.addNoise(y, f0, envelope, aperiodicity); err != nil {
		return nil, err
	}

	limit(y)
	return y, nil
}

// addPulses walks the output with a phase accumulator driven by the
// instantaneous F0 and stamps one spectral impulse response per period.
func (s *Synthesizer) addPulses(y, f0 []float64, envelope, aperiodicity *Spectrogram) error {
	frames := len(f0)
	phase := 1.0 // fire a pulse on the first voiced sample
	for n := range y {
		fi := frameIndexAt(n, s.sampleRate, s.framePeriodMs, frames)
		f := f0[fi]
		if f <= 0 {
			phase = 1.0
			continue
		}
		phase += f / float64(s.sampleRate)
		if phase < 1.0 {
			continue
		}
		phase -= 1.0
		// The accumulator crossed 1.0 between the previous sample and this
		// one; the overshoot locates the exact pulse instant. Without it,
		// fractional periods snap to the sample grid and the jitter reads
		// as a subharmonic.
		frac := phase * float64(s.sampleRate) / f
		if err := s.stampPulse(y, n, frac, f, envelope.Frame(fi), aperiodicity.Frame(fi)); err != nil {
			return err
		}
	}
	return nil
}

// stampPulse adds a linear-phase impulse response for the periodic part
// of the frame spectrum, centered frac samples before sample n. The
// phase term realizes the sub-sample pulse position the accumulator
// computed.
func (s *Synthesizer) stampPulse(y []float64, n int, frac, f0 float64, env, ap []float64) error {
	bins := len(env)
	for k := 0; k < bins; k++ {
		amp := math.Sqrt(env[k] * (1.0 - ap[k]))
		theta := 2.0 * math.Pi * float64(k) * frac / float64(s.fftSize)
		re, im := amp*math.Cos(theta), amp*math.Sin(theta)
		if k == 0 || k == bins-1 {
			// DC and Nyquist must stay real for a real output.
			s.spec[k] = complex(re, 0)
			continue
		}
		s.spec[k] = complex(re, im)
		s.spec[s.fftSize-k] = complex(re, -im)
	}
	if err := s.plan.Inverse(s.time, s.spec); err != nil {
		return err
	}

	// Energy of one period scales with the period length.
	gain := math.Sqrt(float64(s.sampleRate) / f0)
	half := s.fftSize / 2
	for m := -half; m < half; m++ {
		idx := n + m
		if idx < 0 || idx >= len(y) {
			continue
		}
		y[idx] += real(s.time[(m+s.fftSize)%s.fftSize]) * gain
	}
	return nil
}

// addNoise generates the aperiodic component frame by frame: white noise
// windowed to two frame periods, shaped by the noise part of the spectrum
// and overlap-added at the frame hop (50% overlap, unity Hann sum).
func (s *Synthesizer) addNoise(y, f0 []float64, envelope, aperiodicity *Spectrogram) error {
	rng := rand.New(rand.NewSource(noiseSeed))
	hop := s.framePeriodMs * float64(s.sampleRate) / 1000.0
	segLen := int(2.0*hop + 0.5)
	if segLen < 2 {
		segLen = 2
	}
	if segLen > s.fftSize {
		segLen = s.fftSize
	}

	for i := 0; i < len(f0); i++ {
		center := int(float64(i) * hop)
		if center-segLen/2 >= len(y) {
			break
		}

		for j := range s.noise {
			s.noise[j] = 0
		}
		for j := 0; j < segLen; j++ {
			w := 0.5 - 0.5*math.Cos(2.0*math.Pi*float64(j)/float64(segLen-1))
			s.noise[j] = complex((rng.Float64()*2.0-1.0)*w, 0)
		}
		if err := s.plan.Forward(s.noise, s.noise); err != nil {
			return err
		}

		env := envelope.Frame(i)
		ap := aperiodicity.Frame(i)
		bins := len(env)
		for k := 0; k < s.fftSize; k++ {
			bk := k
			if bk >= bins {
				bk = s.fftSize - k
			}
			amp := math.Sqrt(env[bk] * ap[bk])
			s.noise[k] *= complex(amp, 0)
		}
		if err := s.plan.Inverse(s.noise, s.noise); err != nil {
			return err
		}

		begin := center - segLen/2
		for j := 0; j < s.fftSize; j++ {
			idx := begin + j
			if idx < 0 || idx >= len(y) {
				continue
			}
			y[idx] += real(s.noise[j])
		}
	}
	return nil
}

// limit rescales the output if it exceeds the normalized amplitude range.
func limit(y []float64) {
	var peak float64
	for _, v := range y {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0.99 {
		scale := 0.99 / peak
		for i := range y {
			y[i] *= scale
		}
	}
}
