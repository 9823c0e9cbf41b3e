// Package session wires the note pipeline together: a triggered MIDI
// note looks up its syllable, speaks it, pitch-shifts the utterance to
// the note's frequency and appends the result to the playback buffer.
// One worker goroutine runs the blocking stages so triggers return
// immediately; the audio device only ever touches the playback buffer.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/tphakala/singspeak/internal/audio"
	"github.com/tphakala/singspeak/internal/errors"
	"github.com/tphakala/singspeak/internal/logging"
	"github.com/tphakala/singspeak/internal/mapping"
	"github.com/tphakala/singspeak/internal/observability/metrics"
	"github.com/tphakala/singspeak/internal/tts"
	"github.com/tphakala/singspeak/internal/vocoder"
)

const (
	defaultQueueSize = 16
	defaultCacheTTL  = 5 * time.Minute
)

// TextDisplay shows the syllable being sung. Implementations must not
// block for long; errors are logged and never reach the audio path.
type TextDisplay interface {
	ShowText(text string) error
	Close() error
}

// Config tunes a session.
type Config struct {
	// SampleRate is the playback device rate utterances are resampled to.
	SampleRate int

	// QueueSize bounds the trigger queue; triggers beyond it are dropped.
	// Zero means the default of 16.
	QueueSize int

	// CacheTTL is how long rendered utterances stay cached. Zero means
	// five minutes.
	CacheTTL time.Duration

	// ExportDir, when set, receives one WAV file per rendered utterance.
	ExportDir string

	// PitchShift disables the vocoder stage when false; the raw spoken
	// clip plays at the speech engine's natural pitch.
	PitchShift bool

	// Vocoder tunes the pitch shifter. Zero fields fall back to the
	// vocoder defaults.
	Vocoder vocoder.Options
}

// Dependencies are the collaborators a session binds. Mapping, TTS and
// Buffer are required; Display and the metrics may be nil.
type Dependencies struct {
	Mapping  *mapping.Mapping
	TTS      tts.Synthesizer
	Buffer   *audio.PlaybackBuffer
	Display  TextDisplay
	Metrics  *metrics.SessionMetrics
	Playback *metrics.PlaybackMetrics
}

type noteRequest struct {
	id       uuid.UUID
	note     int
	syllable string
	queued   time.Time
}

// Session owns the trigger queue and its worker. Create one per device,
// pass it by reference and Close it when done.
type Session struct {
	cfg     Config
	deps    Dependencies
	shifter *vocoder.Shifter
	cache   *gocache.Cache
	logger  *slog.Logger

	queue  chan noteRequest
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New validates the dependencies, builds the pitch shifter at the speech
// engine's native rate and starts the worker.
func New(cfg Config, deps Dependencies) (*Session, error) {
	if deps.Mapping == nil || deps.TTS == nil || deps.Buffer == nil {
		return nil, errors.Newf("session requires mapping, tts and buffer").
			Component("session").
			Category(errors.CategoryValidation).
			Build()
	}
	if cfg.SampleRate <= 0 {
		return nil, errors.Newf("invalid sample rate %d", cfg.SampleRate).
			Component("session").
			Category(errors.CategoryValidation).
			Build()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	shifter, err := vocoder.NewShifter(deps.TTS.SampleRate(), cfg.Vocoder)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:     cfg,
		deps:    deps,
		shifter: shifter,
		cache:   gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:  logging.ForService("session"),
		queue:   make(chan noteRequest, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	s.wg.Add(1)
	go s.worker()
	return s, nil
}

// TriggerNote enqueues a note for synthesis and returns immediately.
// Unmapped notes and a full queue are reported as errors; both leave the
// pipeline untouched.
func (s *Session) TriggerNote(note int) error {
	syllable, ok := s.deps.Mapping.SyllableForNote(note)
	if !ok {
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordNote("unmapped")
		}
		return errors.Newf("no syllable mapped to note %d", note).
			Component("session").
			Category(errors.CategoryNotFound).
			Build()
	}

	req := noteRequest{
		id:       uuid.New(),
		note:     note,
		syllable: syllable,
		queued:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Newf("session is closed").
			Component("session").
			Category(errors.CategoryState).
			Build()
	}

	select {
	case s.queue <- req:
		if s.deps.Metrics != nil {
			s.deps.Metrics.UpdateQueueDepth(len(s.queue))
		}
		return nil
	default:
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordDroppedNote()
		}
		s.logger.Warn("trigger queue full, dropping note",
			"note", note, "syllable", syllable)
		return errors.Newf("trigger queue full").
			Component("session").
			Category(errors.CategoryLimit).
			Build()
	}
}

// Flush discards all buffered but unplayed audio.
func (s *Session) Flush() {
	s.deps.Buffer.Flush()
}

// Stop aborts the in-flight synthesis, if any. Queued notes still play.
func (s *Session) Stop() {
	type stopper interface{ Stop() }
	if st, ok := s.deps.TTS.(stopper); ok {
		st.Stop()
	}
}

// Close stops the worker and waits for it. Queued notes are discarded.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	return nil
}

func (s *Session) worker() {
	defer s.wg.Done()
	for req := range s.queue {
		if s.ctx.Err() != nil {
			return
		}
		s.process(req)
		if s.deps.Metrics != nil {
			s.deps.Metrics.UpdateQueueDepth(len(s.queue))
		}
	}
}

func (s *Session) process(req noteRequest) {
	start := time.Now()
	logger := s.logger.With("utterance", req.id.String(),
		"note", req.note, "syllable", req.syllable)

	if s.deps.Display != nil {
		if err := s.deps.Display.ShowText(req.syllable); err != nil {
			logger.Warn("display update failed", "error", err)
		}
	}

	samples, err := s.render(req, logger)
	if err != nil {
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordNote("failed")
		}
		logger.Error("note synthesis failed", "error", err)
		return
	}

	s.deps.Buffer.Append(samples)
	s.deps.Playback.AddFramesAppended(len(samples))

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordNote("played")
		s.deps.Metrics.RecordNoteDuration(time.Since(start).Seconds())
	}
	logger.Debug("note rendered",
		"samples", len(samples),
		"queue_wait_ms", start.Sub(req.queued).Milliseconds(),
		"render_ms", time.Since(start).Milliseconds())
}

// render produces device-rate samples for a note, consulting the
// utterance cache first.
func (s *Session) render(req noteRequest, logger *slog.Logger) ([]float32, error) {
	key := fmt.Sprintf("%s|%d|%t", req.syllable, req.note, s.cfg.PitchShift)
	if cached, ok := s.cache.Get(key); ok {
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordCacheHit()
		}
		return cached.([]float32), nil
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordCacheMiss()
	}

	synthStart := time.Now()
	clip, err := s.deps.TTS.Synthesize(s.ctx, req.syllable)
	if s.deps.Metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.deps.Metrics.RecordSynthesis(status, time.Since(synthStart).Seconds())
	}
	if err != nil {
		return nil, err
	}

	if s.cfg.PitchShift && len(clip.Data) > 0 {
		shiftStart := time.Now()
		target := vocoder.NoteToFrequency(float64(req.note))
		shifted := s.shifter.ShiftToFrequency(clip.Samples64(), target)
		clip = audio.ClipFromSamples64(clip.SampleRate, shifted)
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordShift("success", time.Since(shiftStart).Seconds())
		}
	}

	out := audio.ResampleClip(clip, s.cfg.SampleRate)

	if s.cfg.ExportDir != "" {
		path := filepath.Join(s.cfg.ExportDir,
			fmt.Sprintf("utterance_%s.wav", req.id.String()))
		if err := audio.SaveWAV(path, out); err != nil {
			logger.Warn("utterance export failed", "path", path, "error", err)
		}
	}

	s.cache.Set(key, out.Data, gocache.DefaultExpiration)
	return out.Data, nil
}
