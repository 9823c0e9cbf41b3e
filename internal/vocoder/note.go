package vocoder

import "math"

// Equal-temperament reference tuning, A4 = MIDI note 69.
const (
	referenceFrequency = 440.0
	referenceNote      = 69
	semitonesPerOctave = 12.0
)

// NoteToFrequency converts a MIDI note number to its equal-temperament
// frequency in Hz. Fractional note numbers are valid and land between
// semitones.
func NoteToFrequency(note float64) float64 {
	return referenceFrequency * math.Pow(2.0, (note-referenceNote)/semitonesPerOctave)
}

// FrequencyToNote converts a frequency in Hz to a fractional MIDI note
// number. Non-positive frequencies have no pitch; the result is NaN.
func FrequencyToNote(freq float64) float64 {
	if freq <= 0 {
		return math.NaN()
	}
	return referenceNote + semitonesPerOctave*math.Log2(freq/referenceFrequency)
}
