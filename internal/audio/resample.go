package audio

import "math"

// Resample converts samples from fromRate to toRate by linear
// interpolation. The output has round(len(in) * toRate / fromRate)
// samples; positions past the last input sample clamp to it. Equal or
// degenerate rates return an unmodified copy.
func Resample(in []float32, fromRate, toRate int) []float32 {
	if len(in) == 0 || fromRate <= 0 || toRate <= 0 || fromRate == toRate {
		return append([]float32(nil), in...)
	}

	outLen := int(math.Round(float64(len(in)) * float64(toRate) / float64(fromRate)))
	out := make([]float32, outLen)
	if outLen == 0 {
		return out
	}

	step := float64(fromRate) / float64(toRate)
	last := len(in) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = in[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}

// ResampleClip returns a copy of the clip converted to toRate.
func ResampleClip(c *Clip, toRate int) *Clip {
	return &Clip{
		SampleRate: toRate,
		Data:       Resample(c.Data, c.SampleRate, toRate),
	}
}
