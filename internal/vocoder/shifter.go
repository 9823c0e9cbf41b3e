package vocoder

import (
	"log/slog"
	"math"

	"github.com/tphakala/singspeak/internal/logging"
)

// Defaults for pitch targeting. The base frequency is the speaking pitch
// the shift ratio is computed against; the semitone range bounds how far a
// single shift may go in either direction.
const (
	DefaultBaseFrequency = 150.0
	DefaultSemitoneRange = 36.0
)

// ratioIdentityEpsilon is the band around 1.0 inside which shifting is
// skipped and the input is returned unchanged.
const ratioIdentityEpsilon = 0.001

// Options configures a Shifter.
type Options struct {
	Config

	// BaseFrequency is the assumed natural pitch of the input voice in
	// Hz, used by RatioForFrequency to turn a target pitch into a ratio.
	BaseFrequency float64

	// SemitoneRange bounds the shift computed by RatioForFrequency to
	// plus or minus this many semitones.
	SemitoneRange float64
}

// DefaultOptions returns options with the default analysis configuration
// and pitch targeting values.
func DefaultOptions() Options {
	return Options{
		Config:        DefaultConfig(),
		BaseFrequency: DefaultBaseFrequency,
		SemitoneRange: DefaultSemitoneRange,
	}
}

func (o *Options) normalize() {
	o.Config.normalize()
	if o.BaseFrequency <= 0 {
		o.BaseFrequency = DefaultBaseFrequency
	}
	if o.SemitoneRange <= 0 {
		o.SemitoneRange = DefaultSemitoneRange
	}
}

// Shifter changes the pitch of a mono signal without changing its
// duration. The signal is decomposed into an F0 contour, a spectral
// envelope and an aperiodicity map; the contour is scaled and the signal
// resynthesized, so formants stay put while the pitch moves.
//
// A Shifter is bound to one sample rate and holds FFT scratch state, so it
// is not safe for concurrent use.
type Shifter struct {
	sampleRate int
	opts       Options

	analyzer     *Analyzer
	envelope     *EnvelopeModel
	aperiodicity *AperiodicityModel
	synth        *Synthesizer

	logger *slog.Logger
}

// NewShifter creates a shifter for signals at sampleRate.
func NewShifter(sampleRate int, opts Options) (*Shifter, error) {
	opts.normalize()
	envelope, err := NewEnvelopeModel(sampleRate, opts.Config)
	if err != nil {
		return nil, err
	}
	synth, err := NewSynthesizer(sampleRate, opts.Config.FramePeriodMs, envelope.FFTSize())
	if err != nil {
		return nil, err
	}
	return &Shifter{
		sampleRate:   sampleRate,
		opts:         opts,
		analyzer:     NewAnalyzer(sampleRate, opts.Config),
		envelope:     envelope,
		aperiodicity: NewAperiodicityModel(sampleRate, opts.Config),
		synth:        synth,
		logger:       logging.ForService("vocoder"),
	}, nil
}

// SampleRate returns the sample rate the shifter was built for.
func (s *Shifter) SampleRate() int { return s.sampleRate }

// RatioForFrequency converts a target pitch in Hz into a shift ratio
// relative to the configured base frequency, clamped to the configured
// semitone range. Non-positive targets map to the identity ratio.
func (s *Shifter) RatioForFrequency(target float64) float64 {
	if target <= 0 {
		return 1.0
	}
	semitones := semitonesPerOctave * math.Log2(target/s.opts.BaseFrequency)
	if semitones > s.opts.SemitoneRange {
		semitones = s.opts.SemitoneRange
	} else if semitones < -s.opts.SemitoneRange {
		semitones = -s.opts.SemitoneRange
	}
	return math.Pow(2.0, semitones/semitonesPerOctave)
}

// ShiftToFrequency shifts x so that its pitch lands near target Hz,
// assuming the input sits at the base frequency.
func (s *Shifter) ShiftToFrequency(x []float64, target float64) []float64 {
	return s.Shift(x, s.RatioForFrequency(target))
}

// Shift returns a pitch-shifted copy of x with exactly len(x) samples.
// A ratio at or below zero, a ratio within 0.001 of 1.0, or empty input
// all return an unmodified copy. Shift never fails on well formed input;
// if the internal transform does, the input is passed through and the
// incident logged.
func (s *Shifter) Shift(x []float64, ratio float64) []float64 {
	if len(x) == 0 || ratio <= 0 || math.Abs(ratio-1.0) < ratioIdentityEpsilon {
		return append([]float64(nil), x...)
	}

	f0 := s.analyzer.Analyze(x)
	envelope, err := s.envelope.Estimate(x, f0)
	if err != nil {
		s.logger.Warn("envelope estimation failed, passing input through", "error", err)
		return append([]float64(nil), x...)
	}
	aperiodicity := s.aperiodicity.Estimate(x, f0)

	scaleContour(f0, ratio, s.opts.F0Floor, s.opts.F0Ceil)

	y, err := s.synth.Synthesize(f0, envelope, aperiodicity, len(x))
	if err != nil {
		s.logger.Warn("resynthesis failed, passing input through", "error", err)
		return append([]float64(nil), x...)
	}
	return y
}

// scaleContour multiplies every voiced frame by ratio and clamps the
// result into the analysis band. Unvoiced frames stay unvoiced.
func scaleContour(f0 []float64, ratio, floor, ceil float64) {
	for i, f := range f0 {
		if f <= 0 {
			continue
		}
		f *= ratio
		if f < floor {
			f = floor
		} else if f > ceil {
			f = ceil
		}
		f0[i] = f
	}
}
