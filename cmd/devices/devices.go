// Package devices implements the playback device listing command.
package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/singspeak/internal/audio"
)

// Command creates the devices command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio playback devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := audio.ListPlaybackDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No playback devices found.")
				return nil
			}
			for _, d := range devices {
				marker := " "
				if d.IsDefault {
					marker = "*"
				}
				fmt.Printf("%s %d: %s (%s)\n", marker, d.Index, d.Name, d.ID)
			}
			return nil
		},
	}
}
