package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"panelcode-go/can"
)

var (
	provisionSSID string
	provisionGap  time.Duration
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Send WiFi credentials to every panel on the bus",
	Long: `Send a provisioning session: Start, SSID chunks, password chunks and End
with the XOR checksum. Panels persist the credentials when the checksum
matches.

The password is read from PANEL_WIFI_PASSWORD, or prompted for when unset.`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&provisionSSID, "ssid", "", "Network name (at most 32 bytes)")
	provisionCmd.Flags().DurationVar(&provisionGap, "gap", 5*time.Millisecond, "Delay between frames")
	_ = provisionCmd.MarkFlagRequired("ssid")
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	pw, err := Secret(envWifiPassword, "WiFi password")
	if err != nil {
		return err
	}
	frames, err := can.WifiCredentialFrames(provisionSSID, pw)
	if err != nil {
		return err
	}

	tr, info, err := OpenTransport(cmd.Context())
	if err != nil {
		return err
	}
	defer tr.Close()
	fmt.Fprintln(os.Stderr, "Connected:", info)

	if err := sendAll(tr, frames, provisionGap); err != nil {
		return err
	}
	fmt.Printf("Sent %d frames for %q\n", len(frames), provisionSSID)
	return nil
}

func sendAll(tr can.Transport, frames []can.Frame, gap time.Duration) error {
	for i, f := range frames {
		if i > 0 && gap > 0 {
			time.Sleep(gap)
		}
		if err := tr.Send(f); err != nil {
			return fmt.Errorf("frame %d (%s): %w", i, f, err)
		}
	}
	return nil
}
