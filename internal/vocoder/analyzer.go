package vocoder

import "math"

// silenceRMS is the frame energy below which no pitch candidate is
// considered at all.
const silenceRMS = 1e-5

// Analyzer extracts a fundamental frequency contour from a mono signal.
// It is a frame-based, candidate-scoring tracker: each frame is scored by
// normalized autocorrelation over the lag range corresponding to the
// configured search band, and frames without a sufficiently periodic
// candidate are marked unvoiced (0). The tracker is deterministic: the
// same input always yields the same contour.
type Analyzer struct {
	sampleRate int
	cfg        Config

	windowLen int // correlation window, two periods of the F0 floor
	lagMin    int
	lagMax    int
}

// NewAnalyzer creates an analyzer for signals at sampleRate. Degenerate
// configuration values are clamped up front.
func NewAnalyzer(sampleRate int, cfg Config) *Analyzer {
	cfg.normalize()
	a := &Analyzer{
		sampleRate: sampleRate,
		cfg:        cfg,
	}
	a.windowLen = int(2.0 * float64(sampleRate) / cfg.F0Floor)
	a.lagMin = int(float64(sampleRate)/cfg.F0Ceil + 0.5)
	if a.lagMin < 2 {
		a.lagMin = 2
	}
	a.lagMax = int(float64(sampleRate)/cfg.F0Floor + 0.5)
	if a.lagMax <= a.lagMin {
		a.lagMax = a.lagMin + 1
	}
	return a
}

// Analyze returns the F0 contour for x. The contour has exactly
// FrameCount(len(x), sampleRate, framePeriod) entries; unvoiced frames
// hold 0. An all-silence input yields an all-unvoiced contour, never an
// error.
func (a *Analyzer) Analyze(x []float64) []float64 {
	frames := FrameCount(len(x), a.sampleRate, a.cfg.FramePeriodMs)
	f0 := make([]float64, frames)
	if frames == 0 {
		return f0
	}

	segLen := a.windowLen + a.lagMax + 1
	seg := make([]float64, segLen)

	for i := 0; i < frames; i++ {
		center := int(float64(i) * a.cfg.FramePeriodMs * float64(a.sampleRate) / 1000.0)
		a.extract(x, center-a.windowLen/2, seg)
		f0[i] = a.trackFrame(seg)
	}

	fixIsolatedFrames(f0)
	return f0
}

// extract copies segLen samples starting at offset start into seg,
// zero-padding outside the signal bounds.
func (a *Analyzer) extract(x []float64, start int, seg []float64) {
	for j := range seg {
		idx := start + j
		if idx >= 0 && idx < len(x) {
			seg[j] = x[idx]
		} else {
			seg[j] = 0
		}
	}
}

// trackFrame scores all candidate lags for one frame and returns the
// refined F0 in Hz, or 0 if the frame is unvoiced.
func (a *Analyzer) trackFrame(seg []float64) float64 {
	w := a.windowLen

	// Prefix sums of squares let the per-lag normalization run in O(1).
	sumsq := make([]float64, len(seg)+1)
	for j, v := range seg {
		sumsq[j+1] = sumsq[j] + v*v
	}

	e0 := sumsq[w]
	if math.Sqrt(e0/float64(w)) < silenceRMS {
		return 0
	}

	score := func(lag int) float64 {
		var num float64
		for j := 0; j < w; j++ {
			num += seg[j] * seg[j+lag]
		}
		e1 := sumsq[w+lag] - sumsq[lag]
		den := math.Sqrt(e0 * e1)
		if den <= 0 {
			return 0
		}
		return num / den
	}

	scores := make([]float64, a.lagMax+2)
	for lag := a.lagMin; lag <= a.lagMax; lag++ {
		scores[lag] = score(lag)
	}

	// Only local maxima of the score curve are pitch candidates; lags on
	// a rising or falling flank sit between the true period and its
	// neighbours and must not win.
	isPeak := func(lag int) bool {
		return lag > a.lagMin && lag < a.lagMax &&
			scores[lag] > scores[lag-1] && scores[lag] >= scores[lag+1]
	}

	bestLag, bestScore := 0, 0.0
	for lag := a.lagMin + 1; lag < a.lagMax; lag++ {
		if isPeak(lag) && scores[lag] > bestScore {
			bestScore = scores[lag]
			bestLag = lag
		}
	}
	if bestLag == 0 || bestScore < a.cfg.VoicingThreshold {
		return 0
	}

	// A periodic signal scores near-equally at the true lag and its
	// multiples; prefer the shortest peak that comes close to the best
	// score to avoid subharmonic (octave-down) errors.
	for lag := a.lagMin + 1; lag < bestLag; lag++ {
		if isPeak(lag) && scores[lag] >= 0.85*bestScore && scores[lag] >= a.cfg.VoicingThreshold {
			bestLag = lag
			bestScore = scores[lag]
			break
		}
	}

	lag := refineLag(bestLag, scores, a.lagMin, a.lagMax)
	f0 := float64(a.sampleRate) / lag
	if f0 < a.cfg.F0Floor || f0 > a.cfg.F0Ceil {
		return 0
	}
	return f0
}

// refineLag applies parabolic interpolation around the winning integer lag
// for sub-sample pitch resolution.
func refineLag(lag int, scores []float64, lagMin, lagMax int) float64 {
	if lag <= lagMin || lag >= lagMax {
		return float64(lag)
	}
	sPrev := scores[lag-1]
	sNext := scores[lag+1]
	sCur := scores[lag]
	den := sPrev - 2*sCur + sNext
	if den == 0 {
		return float64(lag)
	}
	delta := 0.5 * (sPrev - sNext) / den
	if delta < -1 || delta > 1 {
		return float64(lag)
	}
	return float64(lag) + delta
}

// fixIsolatedFrames removes single-frame glitches from the contour: an
// unvoiced frame between two voiced neighbours is interpolated, and a
// voiced frame with unvoiced neighbours on both sides is dropped.
func fixIsolatedFrames(f0 []float64) {
	for i := 1; i < len(f0)-1; i++ {
		switch {
		case f0[i] == 0 && f0[i-1] > 0 && f0[i+1] > 0:
			f0[i] = 0.5 * (f0[i-1] + f0[i+1])
		case f0[i] > 0 && f0[i-1] == 0 && f0[i+1] == 0:
			f0[i] = 0
		}
	}
}
