package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (same value placed in ctx under CtxBoardKey)
// Val: raw JSON overrides applied over Default()
// -----------------------------------------------------------------------------

// EmbeddedConfigLookup allows overriding how board configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

const cfgPico = `{
  "buttons": {"pins": [2, 3, 4, 5, 6, 7, 8, 9], "active_low": true},
  "leds": {"pins": [10, 11, 12, 13, 14, 15, 26, 27], "active_low": false},
  "timing_ms": {"debounce": 200, "hold": 700, "step": 100, "poll": 10},
  "ota": {"timeout_s": 180, "hostname_prefix": "panel-"},
  "can": {
    "driver": "mcp2515",
    "sck": 18, "sdo": 19, "sdi": 16, "cs": 17,
    "spi_hz": 4000000, "bitrate_kbps": 500, "crystal_mhz": 8
  }
}`

// Pico with a USB-less SLCAN adapter on uart1 instead of an MCP2515.
const cfgPicoSLCAN = `{
  "can": {"driver": "slcan", "uart": "uart1", "tx": 20, "rx": 21, "baud": 115200, "bitrate_kbps": 500}
}`

// Active-low LED sinks (LED cathodes to the GPIO).
const cfgPicoSink = `{
  "leds": {"active_low": true}
}`

var embeddedConfigs = map[string][]byte{
	"pico":       []byte(cfgPico),
	"pico-slcan": []byte(cfgPicoSLCAN),
	"pico-sink":  []byte(cfgPicoSink),
}
