package panel

import (
	"strconv"

	"panelcode-go/bus"
)

// Button event names under panel/button/<channel>/.
const (
	EvToggle        = "toggle"
	EvBrightness    = "brightness"
	EvBrightnessEnd = "brightness_end"
)

var (
	TopicRoot    = bus.T("panel")
	TopicMode    = bus.T("panel", "mode")         // retained types.Mode
	TopicLED     = bus.T("panel", "led", "state") // retained types.LEDState
	TopicWifi    = bus.T("panel", "wifi", "state")
	TopicOTA     = bus.T("panel", "ota", "state")
	TopicTxError = bus.T("panel", "can", "tx_error")
	TopicAlert   = bus.T("panel", "can", "alert")
	TopicStartup = bus.T("panel", "startup")
)

func TopicButton(ch uint8, ev string) bus.Topic {
	return bus.T("panel", "button", strconv.Itoa(int(ch)), ev)
}
