package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"panelcode-go/can"
)

var otaCmd = &cobra.Command{
	Use:   "ota <hostname|suffix>",
	Short: "Put one panel into OTA update mode",
	Long: `Send an OTA trigger addressed to one panel. The target is either its host
name (e.g. panel-A1B2C3) or the six hex digits of its device suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: runOTA,
}

func init() {
	rootCmd.AddCommand(otaCmd)
}

// ParseSuffix extracts the 3-byte device suffix from a host name or a bare
// hex suffix.
func ParseSuffix(arg string) ([3]byte, error) {
	var s [3]byte
	if i := strings.LastIndexByte(arg, '-'); i >= 0 {
		arg = arg[i+1:]
	}
	if len(arg) != 6 {
		return s, fmt.Errorf("suffix %q: want 6 hex digits", arg)
	}
	if _, err := hex.Decode(s[:], []byte(arg)); err != nil {
		return s, fmt.Errorf("suffix %q: %w", arg, err)
	}
	return s, nil
}

func runOTA(cmd *cobra.Command, args []string) error {
	s, err := ParseSuffix(args[0])
	if err != nil {
		return err
	}
	tr, _, err := OpenTransport(cmd.Context())
	if err != nil {
		return err
	}
	defer tr.Close()
	f := can.OTATrigger(s)
	if err := tr.Send(f); err != nil {
		return err
	}
	fmt.Println("Sent", f)
	return nil
}
