package audio

import (
	"bytes"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/singspeak/internal/errors"
)

// DecodeWAV reads a RIFF/WAV stream into a mono clip. Multi-channel input
// is downmixed by averaging; samples are normalized by the source bit
// depth.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, errors.Newf("input is not a valid WAV stream").
			Component("audio").
			Category(errors.CategoryFileParsing).
			Build()
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryFileParsing).
			Context("operation", "read_pcm").
			Build()
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	divisor := float32(int(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels

	data := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += float32(buf.Data[i*channels+ch]) / divisor
		}
		data[i] = sum / float32(channels)
	}

	return &Clip{SampleRate: int(decoder.SampleRate), Data: data}, nil
}

// DecodeWAVBytes decodes an in-memory WAV image, e.g. one produced by a
// speech synthesis subprocess.
func DecodeWAVBytes(b []byte) (*Clip, error) {
	return DecodeWAV(bytes.NewReader(b))
}

// SaveWAV writes the clip as a 16-bit mono WAV file.
func SaveWAV(path string, c *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Context("operation", "create_wav").
			Build()
	}
	defer f.Close()

	enc := wav.NewEncoder(f, c.SampleRate, 16, 1, 1)

	intSamples := make([]int, len(c.Data))
	for i, v := range c.Data {
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		intSamples[i] = int(v * 32767.0)
	}

	if err := enc.Write(&goaudio.IntBuffer{
		Data:   intSamples,
		Format: &goaudio.Format{SampleRate: c.SampleRate, NumChannels: 1},
	}); err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Context("operation", "write_pcm").
			Build()
	}

	if err := enc.Close(); err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Context("operation", "finalize_wav").
			Build()
	}
	return nil
}
