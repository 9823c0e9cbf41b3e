// Package tts turns text into spoken audio clips. The production engine
// drives espeak-ng as a subprocess; a noop engine keeps the rest of the
// pipeline running when speech synthesis is unavailable or disabled.
package tts

import (
	"context"

	"github.com/tphakala/singspeak/internal/audio"
)

// Synthesizer produces a mono clip for a piece of text. Implementations
// allow only one synthesis at a time; concurrent callers serialize.
type Synthesizer interface {
	// Synthesize speaks text and returns the rendered clip. Cancelling
	// the context aborts the in-flight synthesis.
	Synthesize(ctx context.Context, text string) (*audio.Clip, error)

	// SampleRate returns the native output rate of the engine.
	SampleRate() int

	// Close releases engine resources.
	Close() error
}

// Noop is a silent engine used when speech is disabled or the real engine
// failed to initialize. It returns empty clips so downstream stages see a
// well formed, zero-length utterance.
type Noop struct {
	Rate int
}

// NewNoop creates a silent engine reporting the given sample rate.
func NewNoop(sampleRate int) *Noop {
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	return &Noop{Rate: sampleRate}
}

// Synthesize returns an empty clip.
func (n *Noop) Synthesize(_ context.Context, _ string) (*audio.Clip, error) {
	return &audio.Clip{SampleRate: n.Rate}, nil
}

// SampleRate returns the configured rate.
func (n *Noop) SampleRate() int { return n.Rate }

// Close is a no-op.
func (n *Noop) Close() error { return nil }
