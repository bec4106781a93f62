package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"panelcode-go/can"
	"panelcode-go/services/ota"
	"panelcode-go/types"
)

// Describe decodes a panel protocol frame. Frames outside the protocol get
// an empty description.
func Describe(f can.Frame, prefix string) string {
	if f.Extended {
		return ""
	}
	switch f.ID {
	case can.IDToggle:
		if ch, ok := can.ParseToggle(f); ok {
			return "toggle ch=" + strconv.Itoa(int(ch))
		}
	case can.IDBrightness:
		if ch, lvl, ok := can.ParseBrightness(f); ok {
			return fmt.Sprintf("brightness ch=%d level=%d", ch, lvl)
		}
	case can.IDLEDState:
		if on, ok := can.ParseLEDState(f); ok {
			return "leds " + types.LEDState{On: on}.String()
		}
		return "leds (short)"
	case can.IDOTATrigger:
		if s, ok := can.ParseOTATrigger(f); ok {
			return "ota " + ota.HostNameFromSuffix(prefix, s)
		}
		return "ota (short)"
	case can.IDWifiConfig:
		return describeWifi(f)
	}
	return ""
}

func describeWifi(f can.Frame) string {
	p := f.Payload()
	if len(p) == 0 {
		return "wifi (empty)"
	}
	switch p[0] {
	case can.WifiStart:
		if len(p) < 3 {
			return "wifi start (short)"
		}
		return fmt.Sprintf("wifi start ssid=%d pass=%d", p[1], p[2])
	case can.WifiSSID:
		if len(p) < can.ChunkHeaderLen {
			return "wifi ssid (short)"
		}
		return fmt.Sprintf("wifi ssid[%d] %q", p[1], p[can.ChunkHeaderLen:])
	case can.WifiPassword:
		if len(p) < can.ChunkHeaderLen {
			return "wifi pass (short)"
		}
		return fmt.Sprintf("wifi pass[%d] (%d bytes)", p[1], len(p)-can.ChunkHeaderLen)
	case can.WifiEnd:
		if len(p) < 2 {
			return "wifi end (short)"
		}
		return "wifi end xor=" + hex.EncodeToString(p[1:2])
	}
	return fmt.Sprintf("wifi subtype %#02x", p[0])
}
