// Package cmd assembles the command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/singspeak/cmd/devices"
	"github.com/tphakala/singspeak/cmd/play"
	"github.com/tphakala/singspeak/cmd/speak"
	"github.com/tphakala/singspeak/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "singspeak",
		Short: "SingSpeak sings spoken syllables at the pitch of triggered notes",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		play.Command(settings),
		speak.Command(settings),
		devices.Command(),
		configCommand(settings),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().IntVar(&settings.Audio.SampleRate, "samplerate", viper.GetInt("audio.samplerate"), "Playback sample rate")
	rootCmd.PersistentFlags().StringVar(&settings.Mapping.Path, "mapping", viper.GetString("mapping.path"), "Note-to-syllable mapping XML file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
		os.Exit(1)
	}
}

// configCommand prints the effective configuration.
func configCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return conf.Dump(cmd.OutOrStdout(), settings)
		},
	}
}
