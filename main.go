package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tphakala/singspeak/cmd"
	"github.com/tphakala/singspeak/internal/conf"
	"github.com/tphakala/singspeak/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init()
	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	if settings.Main.Log.Enabled {
		fileLogger, closer, err := logging.NewFileLogger(
			settings.Main.Log.Path,
			settings.Main.Name,
			currentLevel(settings),
			logging.FileConfig{
				Rotation:  logging.Rotation(settings.Main.Log.Rotation),
				MaxSizeMB: settings.Main.Log.MaxSize,
			},
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()
		slog.SetDefault(fileLogger)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func currentLevel(settings *conf.Settings) slog.Level {
	if settings.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
