package types

import "strconv"

// ---- Buttons (event, not retained) ----

type ToggleEvent struct {
	Channel uint8 `json:"channel"`
}

type BrightnessEvent struct {
	Channel uint8 `json:"channel"`
	Level   uint8 `json:"level"`
}

// BrightnessEnd closes a press-and-hold session; Level is the last value sent.
type BrightnessEnd struct {
	Channel uint8 `json:"channel"`
	Level   uint8 `json:"level"`
}

func (e ToggleEvent) String() string { return "ch=" + strconv.Itoa(int(e.Channel)) }

func (e BrightnessEvent) String() string {
	return "ch=" + strconv.Itoa(int(e.Channel)) + " level=" + strconv.Itoa(int(e.Level))
}

func (e BrightnessEnd) String() string {
	return "ch=" + strconv.Itoa(int(e.Channel)) + " last=" + strconv.Itoa(int(e.Level))
}

// ---- LEDs (retained) ----

type LEDState struct {
	On [8]bool `json:"on"`
}

// String renders LED 0 first, e.g. "10100001".
func (s LEDState) String() string {
	b := make([]byte, len(s.On))
	for i, on := range s.On {
		b[i] = '0'
		if on {
			b[i] = '1'
		}
	}
	return string(b)
}

// ---- WiFi provisioning ----

type WifiCredentials struct {
	SSID     string `json:"ssid" cbor:"ssid"`
	Password string `json:"password" cbor:"password"`
}

// Valid reports whether both fields are present.
func (c WifiCredentials) Valid() bool { return c.SSID != "" && c.Password != "" }

type WifiPhase string

const (
	WifiStarted   WifiPhase = "started"
	WifiCommitted WifiPhase = "committed"
	WifiRejected  WifiPhase = "rejected"
)

type WifiState struct {
	Phase WifiPhase `json:"phase"`
	SSID  string    `json:"ssid,omitempty"` // committed only; the password is never published
	Error string    `json:"error,omitempty"`
}

func (s WifiState) String() string {
	out := string(s.Phase)
	if s.SSID != "" {
		out += " ssid=" + strconv.Quote(s.SSID)
	}
	if s.Error != "" {
		out += " err=" + s.Error
	}
	return out
}

// ---- OTA ----

type OTAPhase string

const (
	OTAStarted OTAPhase = "started"
	OTADone    OTAPhase = "done"
	OTAFailed  OTAPhase = "failed"
	OTASkipped OTAPhase = "skipped" // matched, but nothing to connect with
)

type OTAState struct {
	Phase  OTAPhase `json:"phase"`
	Target string   `json:"target"`
	Error  string   `json:"error,omitempty"`
}

func (s OTAState) String() string {
	out := string(s.Phase) + " target=" + s.Target
	if s.Error != "" {
		out += " err=" + s.Error
	}
	return out
}

// Mode is the panel's run state (retained).
type Mode string

const (
	ModeBoot Mode = "boot"
	ModeRun  Mode = "run"
	ModeOTA  Mode = "ota"
)

func (m Mode) String() string { return string(m) }
