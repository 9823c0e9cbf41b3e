package audio

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/tphakala/singspeak/internal/errors"
	"github.com/tphakala/singspeak/internal/logging"
	"github.com/tphakala/singspeak/internal/observability/metrics"
)

// maxCallbackFrames sizes the preallocated callback scratch. Callbacks
// requesting more frames than this grow the scratch outside the usual
// path; typical period sizes are well below it.
const maxCallbackFrames = 8192

// PlayerConfig configures the output device.
type PlayerConfig struct {
	SampleRate int
	Channels   int
	Debug      bool
}

// Player owns a malgo playback device that drains a PlaybackBuffer. The
// device callback broadcasts buffered mono samples to every output
// channel and converts them to signed 16-bit PCM in place, zero-filling
// whenever the buffer runs dry.
type Player struct {
	cfg     PlayerConfig
	buffer  *PlaybackBuffer
	metrics *metrics.PlaybackMetrics
	logger  *slog.Logger

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	mu      sync.Mutex
	started bool

	scratch []float32
}

// NewPlayer creates a player draining buffer. metrics may be nil.
func NewPlayer(buffer *PlaybackBuffer, cfg PlayerConfig, playbackMetrics *metrics.PlaybackMetrics) (*Player, error) {
	if cfg.SampleRate <= 0 {
		return nil, errors.Newf("invalid sample rate %d", cfg.SampleRate).
			Component("audio").
			Category(errors.CategoryValidation).
			Build()
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	p := &Player{
		cfg:     cfg,
		buffer:  buffer,
		metrics: playbackMetrics,
		logger:  logging.ForService("audio-player"),
		scratch: make([]float32, maxCallbackFrames*cfg.Channels),
	}

	ctx, err := malgo.InitContext([]malgo.Backend{platformBackend()}, malgo.ContextConfig{}, func(message string) {
		if cfg.Debug {
			fmt.Print(message)
		}
	})
	if err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioDevice).
			Context("operation", "init_context").
			Build()
	}
	p.ctx = ctx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: p.onSendFrames,
		Stop: p.onStopDevice,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioDevice).
			Context("operation", "init_device").
			Context("sample_rate", cfg.SampleRate).
			Context("channels", cfg.Channels).
			Build()
	}
	p.device = device

	return p, nil
}

// platformBackend picks the native audio backend for the host OS and lets
// malgo auto-select elsewhere.
func platformBackend() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

// onSendFrames fills one device period from the playback buffer.
func (p *Player) onSendFrames(pOutput, pInput []byte, framecount uint32) {
	start := time.Now()
	frames := int(framecount)
	channels := p.cfg.Channels

	if need := frames * channels; need > len(p.scratch) {
		p.scratch = make([]float32, need)
	}
	samples := p.scratch[:frames*channels]

	consumed := p.buffer.Pull(samples, frames, channels)
	Float32ToS16LE(pOutput, samples)

	p.metrics.AddFramesPulled(consumed)
	if consumed < frames {
		p.metrics.RecordUnderrun(frames - consumed)
	}
	p.metrics.UpdateBufferedFrames(p.buffer.Len())
	p.metrics.RecordCallbackDuration(time.Since(start).Seconds())
}

// onStopDevice is called when the device stops, either via Stop or
// unexpectedly (device unplugged, backend error).
func (p *Player) onStopDevice() {
	p.mu.Lock()
	wasStarted := p.started
	p.mu.Unlock()
	if wasStarted {
		p.logger.Warn("output device stopped unexpectedly")
	}
}

// Start begins pulling audio from the buffer.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.device.Start(); err != nil {
		p.metrics.RecordDeviceStart("error")
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioDevice).
			Context("operation", "start_device").
			Build()
	}
	p.started = true
	p.metrics.RecordDeviceStart("success")
	p.logger.Info("output device started",
		"sample_rate", p.cfg.SampleRate,
		"channels", p.cfg.Channels)
	return nil
}

// Stop halts playback without releasing the device.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	p.started = false
	if err := p.device.Stop(); err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioDevice).
			Context("operation", "stop_device").
			Build()
	}
	return nil
}

// Close stops the device and releases the backend context.
func (p *Player) Close() error {
	err := p.Stop()
	p.device.Uninit()
	if uerr := p.ctx.Uninit(); uerr != nil && err == nil {
		err = uerr
	}
	p.ctx.Free()
	return err
}
