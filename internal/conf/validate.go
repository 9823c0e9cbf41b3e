package conf

import (
	"github.com/tphakala/singspeak/internal/logging"
)

// Analysis parameter bounds. Degenerate values are clamped rather than
// rejected so a bad config still produces sound.
const (
	minF0Floor      = 20.0
	maxF0Ceil       = 2000.0
	minFramePeriod  = 1.0
	maxFramePeriod  = 100.0
	maxSemitoneSpan = 60.0
)

// ValidateSettings clamps out-of-range values in place and logs every
// correction.
func ValidateSettings(s *Settings) {
	logger := logging.ForService("conf")

	clampFloat := func(name string, v *float64, lo, hi float64) {
		if *v < lo {
			logger.Warn("config value below minimum, clamping", "key", name, "value", *v, "min", lo)
			*v = lo
		} else if *v > hi {
			logger.Warn("config value above maximum, clamping", "key", name, "value", *v, "max", hi)
			*v = hi
		}
	}
	clampInt := func(name string, v *int, lo, hi int) {
		if *v < lo {
			logger.Warn("config value below minimum, clamping", "key", name, "value", *v, "min", lo)
			*v = lo
		} else if *v > hi {
			logger.Warn("config value above maximum, clamping", "key", name, "value", *v, "max", hi)
			*v = hi
		}
	}

	clampInt("audio.samplerate", &s.Audio.SampleRate, 8000, 192000)
	clampInt("audio.channels", &s.Audio.Channels, 1, 2)

	clampInt("tts.rate", &s.TTS.Rate, 80, 450)
	clampInt("tts.pitch", &s.TTS.Pitch, 0, 99)
	clampInt("tts.volume", &s.TTS.Volume, 0, 200)

	clampFloat("vocoder.f0floor", &s.Vocoder.F0Floor, minF0Floor, maxF0Ceil)
	clampFloat("vocoder.f0ceil", &s.Vocoder.F0Ceil, minF0Floor, maxF0Ceil)
	if s.Vocoder.F0Ceil <= s.Vocoder.F0Floor {
		logger.Warn("f0 ceiling at or below floor, resetting analysis range",
			"floor", s.Vocoder.F0Floor, "ceil", s.Vocoder.F0Ceil)
		s.Vocoder.F0Floor = 50.0
		s.Vocoder.F0Ceil = 800.0
	}
	clampFloat("vocoder.frameperiod", &s.Vocoder.FramePeriod, minFramePeriod, maxFramePeriod)
	clampFloat("vocoder.basefrequency", &s.Vocoder.BaseFrequency, minF0Floor, maxF0Ceil)
	clampFloat("vocoder.semitonerange", &s.Vocoder.SemitoneRange, 1.0, maxSemitoneSpan)

	clampInt("display.width", &s.Display.Width, 1, 1024)
	clampInt("display.height", &s.Display.Height, 1, 1024)
	clampInt("display.scale", &s.Display.Scale, 1, 8)

	clampInt("session.queuesize", &s.Session.QueueSize, 1, 1024)
}
