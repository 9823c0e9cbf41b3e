package audio

import "time"

// Clip is a mono audio snippet at a fixed sample rate. Data values are
// normalized to [-1, 1].
type Clip struct {
	SampleRate int
	Data       []float32
}

// Duration returns the playing time of the clip.
func (c *Clip) Duration() time.Duration {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Data)) / float64(c.SampleRate) * float64(time.Second))
}

// Samples64 returns the clip data widened to float64 for analysis code.
func (c *Clip) Samples64() []float64 {
	out := make([]float64, len(c.Data))
	for i, v := range c.Data {
		out[i] = float64(v)
	}
	return out
}

// ClipFromSamples64 narrows analysis output back into a clip.
func ClipFromSamples64(sampleRate int, samples []float64) *Clip {
	data := make([]float32, len(samples))
	for i, v := range samples {
		data[i] = float32(v)
	}
	return &Clip{SampleRate: sampleRate, Data: data}
}
