// Package speak implements the one-shot text-to-sung-speech command.
package speak

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/singspeak/internal/audio"
	"github.com/tphakala/singspeak/internal/conf"
	"github.com/tphakala/singspeak/internal/tts"
	"github.com/tphakala/singspeak/internal/vocoder"
)

// Command creates the speak command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		note    int
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Speak text pitch-shifted to a note, to a WAV file or the speakers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, strings.Join(args, " "), note, outFile)
		},
	}

	cmd.Flags().IntVar(&note, "note", 69, "MIDI note to sing at (69 = A4, 440 Hz)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write a WAV file instead of playing")
	cmd.Flags().IntVar(&settings.TTS.Rate, "rate", viper.GetInt("tts.rate"), "Speech rate in words per minute")
	cmd.Flags().StringVar(&settings.TTS.Voice, "voice", viper.GetString("tts.voice"), "espeak-ng voice")
	if err := viper.BindPFlag("tts.rate", cmd.Flags().Lookup("rate")); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

func run(settings *conf.Settings, text string, note int, outFile string) error {
	engine, err := tts.NewESpeak(tts.ESpeakConfig{
		Voice:  settings.TTS.Voice,
		Rate:   settings.TTS.Rate,
		Pitch:  settings.TTS.Pitch,
		Volume: settings.TTS.Volume,
		Debug:  settings.Debug,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	clip, err := engine.Synthesize(context.Background(), text)
	if err != nil {
		return err
	}

	if settings.Vocoder.Enabled && len(clip.Data) > 0 {
		shifter, err := vocoder.NewShifter(clip.SampleRate, vocoder.Options{
			Config: vocoder.Config{
				F0Floor:       settings.Vocoder.F0Floor,
				F0Ceil:        settings.Vocoder.F0Ceil,
				FramePeriodMs: settings.Vocoder.FramePeriod,
			},
			BaseFrequency: settings.Vocoder.BaseFrequency,
			SemitoneRange: settings.Vocoder.SemitoneRange,
		})
		if err != nil {
			return err
		}
		target := vocoder.NoteToFrequency(float64(note))
		clip = audio.ClipFromSamples64(clip.SampleRate,
			shifter.ShiftToFrequency(clip.Samples64(), target))
	}

	out := audio.ResampleClip(clip, settings.Audio.SampleRate)

	if outFile != "" {
		if err := audio.SaveWAV(outFile, out); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d samples at %d Hz)\n", outFile, len(out.Data), out.SampleRate)
		return nil
	}
	return playClip(settings, out)
}

// playClip plays the clip through the default device and waits for the
// buffer to drain.
func playClip(settings *conf.Settings, clip *audio.Clip) error {
	buffer := audio.NewPlaybackBuffer()
	player, err := audio.NewPlayer(buffer, audio.PlayerConfig{
		SampleRate: clip.SampleRate,
		Channels:   settings.Audio.Channels,
		Debug:      settings.Debug,
	}, nil)
	if err != nil {
		return err
	}
	defer player.Close()

	buffer.Append(clip.Data)
	if err := player.Start(); err != nil {
		return err
	}
	defer func() { _ = player.Stop() }()

	deadline := time.Now().Add(clip.Duration() + 2*time.Second)
	for buffer.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	// Let the last device period play out.
	time.Sleep(100 * time.Millisecond)
	return nil
}
