package vocoder

import "math"

// Default analysis parameters. These match common speech processing
// practice: a 5 ms frame period and a 50-800 Hz pitch search range.
const (
	DefaultFramePeriodMs    = 5.0
	DefaultF0Floor          = 50.0
	DefaultF0Ceil           = 800.0
	DefaultVoicingThreshold = 0.30
)

// Config holds the shared analysis parameters used by the pitch analyzer,
// the envelope model and the aperiodicity model. All three must be run
// with the same configuration so their frame grids line up.
type Config struct {
	FramePeriodMs    float64 // spacing between analysis frames in milliseconds
	F0Floor          float64 // lowest trackable fundamental, Hz
	F0Ceil           float64 // highest trackable fundamental, Hz
	VoicingThreshold float64 // minimum periodicity score for a voiced frame
}

// DefaultConfig returns the standard speech analysis configuration.
func DefaultConfig() Config {
	return Config{
		FramePeriodMs:    DefaultFramePeriodMs,
		F0Floor:          DefaultF0Floor,
		F0Ceil:           DefaultF0Ceil,
		VoicingThreshold: DefaultVoicingThreshold,
	}
}

// normalize clamps degenerate parameters to sane values. Guarding here at
// configuration time keeps the per-frame code free of mid-computation
// validity checks.
func (c *Config) normalize() {
	if c.FramePeriodMs <= 0 {
		c.FramePeriodMs = DefaultFramePeriodMs
	}
	if c.F0Floor <= 0 {
		c.F0Floor = DefaultF0Floor
	}
	if c.F0Ceil <= c.F0Floor {
		c.F0Ceil = c.F0Floor * 2
	}
	if c.VoicingThreshold <= 0 || c.VoicingThreshold >= 1 {
		c.VoicingThreshold = DefaultVoicingThreshold
	}
}

// FrameCount returns the number of analysis frames produced for an input
// of numSamples at sampleRate with the given frame period. Downstream
// envelope and aperiodicity arrays are allocated to exactly this count.
func FrameCount(numSamples, sampleRate int, framePeriodMs float64) int {
	if numSamples <= 0 || sampleRate <= 0 || framePeriodMs <= 0 {
		return 0
	}
	durationMs := 1000.0 * float64(numSamples) / float64(sampleRate)
	return int(math.Ceil(durationMs/framePeriodMs)) + 1
}

// FFTSizeFor returns the FFT size used for spectral analysis. It is the
// smallest power of two that can hold three periods of the lowest
// trackable pitch, so low fundamentals are still resolved.
func FFTSizeFor(sampleRate int, f0Floor float64) int {
	if sampleRate <= 0 || f0Floor <= 0 {
		return 2048
	}
	need := 3.0*float64(sampleRate)/f0Floor + 1.0
	size := 1
	for float64(size) < need {
		size <<= 1
	}
	return size
}

// frameIndexAt maps a sample position to the nearest analysis frame index,
// clamped to the valid range.
func frameIndexAt(sample, sampleRate int, framePeriodMs float64, frames int) int {
	idx := int(float64(sample)/float64(sampleRate)*1000.0/framePeriodMs + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= frames {
		idx = frames - 1
	}
	return idx
}
