package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"panelcode-go/can"
)

var ledsCmd = &cobra.Command{
	Use:   "leds <mask|8 values>",
	Short: "Broadcast LED state to all panels",
	Long: `Broadcast an LED state frame. The state is given as one of:
  a bit string, LED 0 first:   10100001
  a hex mask, bit i = LED i:   0x85
  eight on/off values:         on off on off off off off on`,
	Args: cobra.RangeArgs(1, can.Channels),
	RunE: runLEDs,
}

func init() {
	rootCmd.AddCommand(ledsCmd)
}

// ParseLEDs accepts the argument forms listed in the leds help.
func ParseLEDs(args []string) ([can.Channels]bool, error) {
	var on [can.Channels]bool
	switch {
	case len(args) == can.Channels:
		for i, a := range args {
			v, err := parseOnOff(a)
			if err != nil {
				return on, fmt.Errorf("led %d: %w", i, err)
			}
			on[i] = v
		}
		return on, nil

	case len(args) != 1:
		return on, fmt.Errorf("want 1 or %d values, got %d", can.Channels, len(args))

	case strings.HasPrefix(args[0], "0x") || strings.HasPrefix(args[0], "0X"):
		m, err := strconv.ParseUint(args[0][2:], 16, 8)
		if err != nil {
			return on, fmt.Errorf("mask %q: %w", args[0], err)
		}
		for i := range on {
			on[i] = m&(1<<i) != 0
		}
		return on, nil

	case len(args[0]) == can.Channels:
		for i, c := range args[0] {
			switch c {
			case '0':
			case '1':
				on[i] = true
			default:
				return on, fmt.Errorf("bits %q: only 0 and 1 allowed", args[0])
			}
		}
		return on, nil
	}
	return on, fmt.Errorf("cannot parse %q", args[0])
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "on", "true":
		return true, nil
	case "0", "off", "false":
		return false, nil
	}
	return false, fmt.Errorf("%q is not on/off", s)
}

func runLEDs(cmd *cobra.Command, args []string) error {
	on, err := ParseLEDs(args)
	if err != nil {
		return err
	}
	tr, _, err := OpenTransport(cmd.Context())
	if err != nil {
		return err
	}
	defer tr.Close()
	f := can.LEDState(on)
	if err := tr.Send(f); err != nil {
		return err
	}
	fmt.Println("Sent", f)
	return nil
}
