// Package play implements the interactive keyboard-to-note command.
package play

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/tphakala/singspeak/internal/audio"
	"github.com/tphakala/singspeak/internal/conf"
	"github.com/tphakala/singspeak/internal/display"
	"github.com/tphakala/singspeak/internal/logging"
	"github.com/tphakala/singspeak/internal/mapping"
	"github.com/tphakala/singspeak/internal/observability"
	"github.com/tphakala/singspeak/internal/observability/metrics"
	"github.com/tphakala/singspeak/internal/session"
	"github.com/tphakala/singspeak/internal/tts"
	"github.com/tphakala/singspeak/internal/vocoder"
)

// Command creates the play command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Trigger notes from the keyboard and sing them",
		Long:  "Map keyboard keys to MIDI notes, speak the mapped syllable for each key press and play it pitch-shifted to the note.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().BoolVar(&settings.Display.Enabled, "display", viper.GetBool("display.enabled"), "Show syllables on the LED matrix")
	cmd.Flags().BoolVar(&settings.Audio.Export.Enabled, "export", viper.GetBool("audio.export.enabled"), "Write each rendered utterance to a WAV file")
	cmd.Flags().BoolVar(&settings.Metrics.Enabled, "metrics", viper.GetBool("metrics.enabled"), "Enable Prometheus metrics endpoint")
	cmd.Flags().StringVar(&settings.Metrics.Listen, "listen", viper.GetString("metrics.listen"), "Listen address of the metrics endpoint")
	return viper.BindPFlags(cmd.Flags())
}

// keyToMIDINote maps keyboard keys to notes: digits cover C3 to A3,
// letters C4 upward.
func keyToMIDINote(key byte) int {
	switch {
	case key >= '0' && key <= '9':
		return 48 + int(key-'0')
	case key >= 'A' && key <= 'Z':
		return 60 + int(key-'A')
	case key >= 'a' && key <= 'z':
		return 60 + int(key-'a')
	default:
		return -1
	}
}

func run(settings *conf.Settings) error {
	logger := logging.ForService("play")

	noteMap, err := loadMapping(settings)
	if err != nil {
		return err
	}

	var metricsBundle *observability.Metrics
	var wg sync.WaitGroup
	quit := make(chan struct{})
	if settings.Metrics.Enabled {
		metricsBundle, err = observability.NewMetrics()
		if err != nil {
			return err
		}
		observability.NewEndpoint(settings.Metrics.Listen, metricsBundle).Start(&wg, quit)
	}
	defer func() {
		close(quit)
		wg.Wait()
	}()

	engine := buildTTS(settings)
	defer engine.Close()

	buffer := audio.NewPlaybackBuffer()
	playerCfg := audio.PlayerConfig{
		SampleRate: settings.Audio.SampleRate,
		Channels:   settings.Audio.Channels,
		Debug:      settings.Debug,
	}
	player, err := audio.NewPlayer(buffer, playerCfg, playbackMetricsOf(metricsBundle))
	if err != nil {
		return err
	}
	defer player.Close()
	if err := player.Start(); err != nil {
		return err
	}
	defer func() { _ = player.Stop() }()

	sessionCfg := session.Config{
		SampleRate: settings.Audio.SampleRate,
		QueueSize:  settings.Session.QueueSize,
		PitchShift: settings.Vocoder.Enabled,
		Vocoder: vocoder.Options{
			Config: vocoder.Config{
				F0Floor:       settings.Vocoder.F0Floor,
				F0Ceil:        settings.Vocoder.F0Ceil,
				FramePeriodMs: settings.Vocoder.FramePeriod,
			},
			BaseFrequency: settings.Vocoder.BaseFrequency,
			SemitoneRange: settings.Vocoder.SemitoneRange,
		},
	}
	if settings.Audio.Export.Enabled {
		if err := os.MkdirAll(settings.Audio.Export.Path, 0o755); err != nil {
			return err
		}
		sessionCfg.ExportDir = settings.Audio.Export.Path
	}

	deps := session.Dependencies{
		Mapping: noteMap,
		TTS:     engine,
		Buffer:  buffer,
		Display: buildDisplay(settings),
	}
	if deps.Display != nil {
		defer deps.Display.Close()
	}
	if metricsBundle != nil {
		deps.Metrics = metricsBundle.Session
		deps.Playback = metricsBundle.Playback
	}

	sess, err := session.New(sessionCfg, deps)
	if err != nil {
		return err
	}
	defer sess.Close()

	printUsage(noteMap)
	return keyLoop(sess, logger)
}

// loadMapping reads the configured mapping file or falls back to the
// built-in do-re-mi scale.
func loadMapping(settings *conf.Settings) (*mapping.Mapping, error) {
	if settings.Mapping.Path == "" {
		return mapping.Default(), nil
	}
	return mapping.Load(settings.Mapping.Path)
}

// buildTTS creates the speech engine, degrading to the silent engine
// when espeak-ng is unavailable so the pipeline still runs.
func buildTTS(settings *conf.Settings) tts.Synthesizer {
	logger := logging.ForService("play")
	if !settings.TTS.Enabled {
		return tts.NewNoop(0)
	}
	engine, err := tts.NewESpeak(tts.ESpeakConfig{
		Voice:  settings.TTS.Voice,
		Rate:   settings.TTS.Rate,
		Pitch:  settings.TTS.Pitch,
		Volume: settings.TTS.Volume,
		Debug:  settings.Debug,
	})
	if err != nil {
		logger.Warn("speech engine unavailable, continuing without speech", "error", err)
		return tts.NewNoop(0)
	}
	return engine
}

// buildDisplay connects the LED panel when enabled; failures are logged
// and the session runs without a display.
func buildDisplay(settings *conf.Settings) session.TextDisplay {
	if !settings.Display.Enabled {
		return nil
	}
	logger := logging.ForService("play")
	d := settings.Display
	panel, err := display.NewPanel(display.PanelConfig{
		Client: display.ClientConfig{
			Host:           d.Host,
			Port:           d.Port,
			Width:          d.Width,
			Height:         d.Height,
			OffsetX:        d.OffsetX,
			OffsetY:        d.OffsetY,
			Layer:          d.Layer,
			FlipHorizontal: d.FlipHorizontal,
		},
		Scale:       d.Scale,
		MirrorGlyph: d.MirrorGlyph,
		Color:       display.White,
		Background:  display.Black,
	})
	if err != nil {
		logger.Warn("display unavailable, continuing without it", "error", err)
		return nil
	}
	return panel
}

func playbackMetricsOf(m *observability.Metrics) *metrics.PlaybackMetrics {
	if m == nil {
		return nil
	}
	return m.Playback
}

func printUsage(noteMap *mapping.Mapping) {
	fmt.Println("Keys 0-9 trigger MIDI 48-57, letters trigger MIDI 60 and up.")
	fmt.Println("Press ESC or Ctrl-C to quit.")
	fmt.Println()
	fmt.Println("Mapped notes:")
	for _, nm := range noteMap.Notes {
		if s := noteMap.SyllableByID(nm.SyllableID); s != nil {
			fmt.Printf("  MIDI %d -> %q\n", nm.MIDINote, s.Text)
		}
	}
	fmt.Println()
}

// keyLoop reads single key presses in raw mode until ESC or a signal.
func keyLoop(sess *session.Session, logger *slog.Logger) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("cannot switch terminal to raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				close(keys)
				return
			}
			keys <- buf[0]
		}
	}()

	for {
		select {
		case <-sigChan:
			return nil
		case key, ok := <-keys:
			if !ok || key == 27 || key == 3 { // ESC or Ctrl-C
				return nil
			}
			note := keyToMIDINote(key)
			if note < 0 {
				continue
			}
			if err := sess.TriggerNote(note); err != nil {
				logger.Debug("trigger rejected", "note", note, "error", err)
			}
		}
	}
}
