package tts

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/smallnest/ringbuffer"

	"github.com/tphakala/singspeak/internal/audio"
	"github.com/tphakala/singspeak/internal/errors"
	"github.com/tphakala/singspeak/internal/logging"
)

// espeak-ng parameter ranges. Values outside are clamped, matching the
// engine's own behavior.
const (
	DefaultVoice  = "en"
	DefaultRate   = 175 // words per minute
	DefaultPitch  = 50  // 0-99
	DefaultVolume = 100 // 0-200

	minRate   = 80
	maxRate   = 450
	minPitch  = 0
	maxPitch  = 99
	minVolume = 0
	maxVolume = 200

	// espeak-ng renders 22050 Hz mono WAV on stdout.
	espeakSampleRate = 22050
)

// pipeCapacity bounds the in-flight WAV data between the stdout reader
// and the collector.
const pipeCapacity = 64 * 1024

// ESpeakConfig configures the espeak-ng engine.
type ESpeakConfig struct {
	Binary string // espeak-ng executable, resolved via PATH when bare
	Voice  string
	Rate   int // words per minute
	Pitch  int
	Volume int
	Debug  bool
}

// DefaultESpeakConfig returns the engine defaults.
func DefaultESpeakConfig() ESpeakConfig {
	return ESpeakConfig{
		Binary: "espeak-ng",
		Voice:  DefaultVoice,
		Rate:   DefaultRate,
		Pitch:  DefaultPitch,
		Volume: DefaultVolume,
	}
}

func (c *ESpeakConfig) normalize() {
	if c.Binary == "" {
		c.Binary = "espeak-ng"
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	c.Rate = clampInt(c.Rate, minRate, maxRate)
	c.Pitch = clampInt(c.Pitch, minPitch, maxPitch)
	c.Volume = clampInt(c.Volume, minVolume, maxVolume)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ESpeak synthesizes speech by running espeak-ng with --stdout and
// decoding the WAV stream it emits. One synthesis runs at a time; the
// engine-level lock makes that explicit rather than relying on callers.
type ESpeak struct {
	cfg    ESpeakConfig
	logger *slog.Logger

	mu sync.Mutex // serializes syntheses

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// NewESpeak creates an espeak-ng engine. It fails if the binary cannot be
// found so callers can fall back to the Noop engine.
func NewESpeak(cfg ESpeakConfig) (*ESpeak, error) {
	cfg.normalize()
	path, err := exec.LookPath(cfg.Binary)
	if err != nil {
		return nil, errors.New(err).
			Component("tts").
			Category(errors.CategorySpeechSynthesis).
			Context("binary", cfg.Binary).
			Build()
	}
	cfg.Binary = path
	return &ESpeak{
		cfg:    cfg,
		logger: logging.ForService("tts"),
	}, nil
}

// SampleRate returns espeak-ng's native output rate.
func (e *ESpeak) SampleRate() int { return espeakSampleRate }

// Synthesize runs one espeak-ng invocation and decodes its WAV output
// into a mono clip. Empty text yields an empty clip without spawning a
// process.
func (e *ESpeak) Synthesize(ctx context.Context, text string) (*audio.Clip, error) {
	if text == "" {
		return &audio.Clip{SampleRate: espeakSampleRate}, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	e.cancelMu.Lock()
	e.cancel = cancel
	e.cancelMu.Unlock()
	defer func() {
		cancel()
		e.cancelMu.Lock()
		e.cancel = nil
		e.cancelMu.Unlock()
	}()

	start := time.Now()
	wavData, err := e.run(ctx, text)
	if err != nil {
		return nil, err
	}

	clip, err := audio.DecodeWAVBytes(wavData)
	if err != nil {
		return nil, errors.New(err).
			Component("tts").
			Category(errors.CategorySpeechSynthesis).
			Context("operation", "decode_wav").
			Context("bytes", len(wavData)).
			Build()
	}

	e.logger.Debug("synthesized utterance",
		"chars", len(text),
		"samples", len(clip.Data),
		"duration_ms", time.Since(start).Milliseconds())
	return clip, nil
}

// run spawns espeak-ng and collects its stdout through a bounded ring
// buffer: a reader goroutine moves process output into the ring, the
// collector drains it, so a stalled consumer backpressures the process
// instead of growing without bound.
func (e *ESpeak) run(ctx context.Context, text string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.cfg.Binary,
		"--stdout",
		"-v", e.cfg.Voice,
		"-s", strconv.Itoa(e.cfg.Rate),
		"-p", strconv.Itoa(e.cfg.Pitch),
		"-a", strconv.Itoa(e.cfg.Volume),
		text,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.New(err).
			Component("tts").
			Category(errors.CategorySpeechSynthesis).
			Context("operation", "stdout_pipe").
			Build()
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.New(err).
			Component("tts").
			Category(errors.CategorySpeechSynthesis).
			Context("operation", "start_process").
			Build()
	}

	rb := ringbuffer.New(pipeCapacity)
	readDone := make(chan error, 1)
	go func() {
		readDone <- pumpToRing(rb, stdout)
	}()

	var wavData bytes.Buffer
	chunk := make([]byte, 4096)
	drain := func() {
		for {
			n, _ := rb.Read(chunk)
			if n == 0 {
				return
			}
			wavData.Write(chunk[:n])
		}
	}

	var readErr error
collect:
	for {
		select {
		case readErr = <-readDone:
			drain()
			break collect
		default:
			drain()
			time.Sleep(time.Millisecond)
		}
	}

	waitErr := cmd.Wait()
	switch {
	case ctx.Err() != nil:
		return nil, errors.New(ctx.Err()).
			Component("tts").
			Category(errors.CategoryCancellation).
			Build()
	case waitErr != nil:
		return nil, errors.New(waitErr).
			Component("tts").
			Category(errors.CategorySpeechSynthesis).
			Context("operation", "wait_process").
			Build()
	case readErr != nil:
		return nil, errors.New(readErr).
			Component("tts").
			Category(errors.CategorySpeechSynthesis).
			Context("operation", "read_stdout").
			Build()
	}

	return wavData.Bytes(), nil
}

// pumpToRing copies r into the ring buffer, retrying short writes while
// the collector catches up. Returns nil on EOF.
func pumpToRing(rb *ringbuffer.RingBuffer, r io.Reader) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending := buf[:n]
			for len(pending) > 0 {
				w, werr := rb.Write(pending)
				pending = pending[w:]
				if werr != nil {
					if errors.Is(werr, ringbuffer.ErrIsFull) {
						time.Sleep(time.Millisecond)
						continue
					}
					return werr
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Stop aborts the in-flight synthesis, if any. Queued callers are not
// affected.
func (e *ESpeak) Stop() {
	// Deliberately not taking e.mu: the point is to interrupt the holder.
	e.cancelMu.Lock()
	cancel := e.cancel
	e.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close aborts any in-flight synthesis and releases the engine.
func (e *ESpeak) Close() error {
	e.Stop()
	return nil
}
