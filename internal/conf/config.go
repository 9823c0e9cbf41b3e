// Package conf loads and validates the application configuration from
// config.yaml, environment-specific paths and built-in defaults.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tphakala/singspeak/internal/errors"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig controls the optional application log file.
type LogConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	Rotation string `yaml:"rotation"` // daily, weekly or size
	MaxSize  int    `yaml:"maxsize"`  // max size in MB for size rotation
}

// MainSettings carries application-wide settings.
type MainSettings struct {
	Name string    `yaml:"name"`
	Log  LogConfig `yaml:"log"`
}

// ExportSettings controls per-utterance WAV export.
type ExportSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AudioSettings selects the playback device and output format.
type AudioSettings struct {
	SampleRate int            `yaml:"samplerate"`
	Channels   int            `yaml:"channels"`
	Export     ExportSettings `yaml:"export"`
}

// TTSSettings configures the speech engine.
type TTSSettings struct {
	Enabled bool   `yaml:"enabled"`
	Voice   string `yaml:"voice"`
	Rate    int    `yaml:"rate"`   // words per minute
	Pitch   int    `yaml:"pitch"`  // 0-99
	Volume  int    `yaml:"volume"` // 0-200
}

// VocoderSettings tunes pitch analysis and shifting.
type VocoderSettings struct {
	Enabled       bool    `yaml:"enabled"`
	F0Floor       float64 `yaml:"f0floor"`
	F0Ceil        float64 `yaml:"f0ceil"`
	FramePeriod   float64 `yaml:"frameperiod"` // milliseconds
	BaseFrequency float64 `yaml:"basefrequency"`
	SemitoneRange float64 `yaml:"semitonerange"`
}

// MappingSettings locates the note-to-syllable mapping file. An empty
// path selects the built-in do-re-mi mapping.
type MappingSettings struct {
	Path string `yaml:"path"`
}

// DisplaySettings configures the optional LED matrix.
type DisplaySettings struct {
	Enabled        bool   `yaml:"enabled"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	OffsetX        int    `yaml:"offsetx"`
	OffsetY        int    `yaml:"offsety"`
	Layer          int    `yaml:"layer"`
	Scale          int    `yaml:"scale"`
	FlipHorizontal bool   `yaml:"fliphorizontal"`
	MirrorGlyph    bool   `yaml:"mirrorglyph"`
}

// SessionSettings tunes the trigger pipeline.
type SessionSettings struct {
	QueueSize int `yaml:"queuesize"`
}

// MetricsSettings configures the optional Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Settings is the root configuration.
type Settings struct {
	Debug bool `yaml:"debug"`

	Main    MainSettings    `yaml:"main"`
	Audio   AudioSettings   `yaml:"audio"`
	TTS     TTSSettings     `yaml:"tts"`
	Vocoder VocoderSettings `yaml:"vocoder"`
	Mapping MappingSettings `yaml:"mapping"`
	Display DisplaySettings `yaml:"display"`
	Session SessionSettings `yaml:"session"`
	Metrics MetricsSettings `yaml:"metrics"`
}

// Load reads the configuration file and returns validated settings.
// When no config file exists, the embedded default is written to the
// first config path and loaded from there.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryFileParsing).
			Build()
	}

	ValidateSettings(settings)
	return settings, nil
}

// initViper initializes viper with default values and reads the
// configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// createDefaultConfig writes the embedded default config file to the
// first config path and reads it back.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig returns the embedded default configuration.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading embedded config file: %v", err)
	}
	return string(data)
}
