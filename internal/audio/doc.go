// Package audio holds the playback side of the pipeline: the mono sample
// clip type, sample rate conversion, the shared playback buffer and the
// output device that drains it, plus WAV import and export.
package audio
