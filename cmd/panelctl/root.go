package main

import (
	"github.com/spf13/cobra"
)

var (
	// SocketCAN
	ifaceName string

	// SLCAN serial adapter
	portName    string
	baudRate    int
	bitrateKbps int

	// Websocket gateway
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "panelctl",
	Short: "Wall panel CAN controller",
	Long: `panelctl - send and watch wall panel traffic on a CAN bus.

Connection modes:
  SocketCAN: --iface can0
  SLCAN:     --port /dev/ttyACM0 [--baud 115200] [--bitrate 500]
  Gateway:   --url ws://host/can [--username user]

For gateway authentication the password is read from PANEL_GW_PASSWORD, or
prompted for when unset. WiFi passwords for "provision" come from
PANEL_WIFI_PASSWORD or a hidden prompt.`,
	SilenceUsage: true,
	Version:      "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&ifaceName, "iface", "i", "", "SocketCAN interface")

	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "SLCAN serial device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")
	rootCmd.PersistentFlags().IntVar(&bitrateKbps, "bitrate", 500, "CAN bitrate in kbit/s (serial only)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "Gateway URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
