package config

import (
	"context"
	"strconv"
	"time"

	"panelcode-go/bus"
	"panelcode-go/errcode"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxBoardKey  = "board" // context key used for the board name
)

// Timing drives the button state machine. All values are measured from the
// press edge except Step, which is measured from the previous step.
type Timing struct {
	Debounce time.Duration
	Hold     time.Duration
	Step     time.Duration
}

// CAN selects and wires the bus interface of the firmware build.
type CAN struct {
	Driver string // "mcp2515" | "slcan"

	// mcp2515 on SPI0
	SCK, SDO, SDI, CS int
	SPIHz             uint32
	BitrateKbps       int
	CrystalMHz        int

	// slcan on a UART bridge
	UART   string // "uart0" | "uart1"
	TX, RX int
	Baud   uint32
}

type Panel struct {
	ButtonPins      [8]int
	LEDPins         [8]int
	ButtonActiveLow bool
	LEDActiveLow    bool

	Timing       Timing
	PollInterval time.Duration

	OTATimeout     time.Duration
	HostNamePrefix string

	RxQueueLen  int
	BusQueueLen int
	StartupShow bool

	CAN CAN
}

// Default is the Pico wiring: buttons on GP2..GP9 with pull-ups, LEDs on
// GP10..GP15, GP26, GP27 and an MCP2515 (8 MHz crystal) on SPI0.
func Default() Panel {
	return Panel{
		ButtonPins:      [8]int{2, 3, 4, 5, 6, 7, 8, 9},
		LEDPins:         [8]int{10, 11, 12, 13, 14, 15, 26, 27},
		ButtonActiveLow: true,
		LEDActiveLow:    false,
		Timing: Timing{
			Debounce: 200 * time.Millisecond,
			Hold:     700 * time.Millisecond,
			Step:     100 * time.Millisecond,
		},
		PollInterval:   10 * time.Millisecond,
		OTATimeout:     180 * time.Second,
		HostNamePrefix: "panel-",
		RxQueueLen:     32,
		BusQueueLen:    16,
		StartupShow:    true,
		CAN: CAN{
			Driver:      "mcp2515",
			SCK:         18,
			SDO:         19,
			SDI:         16,
			CS:          17,
			SPIHz:       4_000_000,
			BitrateKbps: 500,
			CrystalMHz:  8,
			UART:        "uart1",
			TX:          20,
			RX:          21,
			Baud:        115200,
		},
	}
}

// Validate checks the invariants the panel relies on.
func (p Panel) Validate() error {
	seen := make(map[int]string, 16)
	for i, n := range p.ButtonPins {
		if err := claimPin(seen, n, "button"+strconv.Itoa(i)); err != nil {
			return err
		}
	}
	for i, n := range p.LEDPins {
		if err := claimPin(seen, n, "led"+strconv.Itoa(i)); err != nil {
			return err
		}
	}
	t := p.Timing
	switch {
	case t.Debounce <= 0:
		return invalid("timing.debounce", "must be positive")
	case t.Hold <= t.Debounce:
		return invalid("timing.hold", "must exceed debounce")
	case t.Step <= 0:
		return invalid("timing.step", "must be positive")
	case p.PollInterval <= 0 || p.PollInterval > t.Debounce:
		return invalid("poll_interval", "must be in (0, debounce]")
	case p.OTATimeout <= 0:
		return invalid("ota_timeout", "must be positive")
	case p.HostNamePrefix == "":
		return invalid("hostname_prefix", "empty")
	case p.RxQueueLen <= 0:
		return invalid("rx_queue_len", "must be positive")
	}
	switch p.CAN.Driver {
	case "mcp2515":
		switch p.CAN.BitrateKbps {
		case 125, 250, 500, 1000:
		default:
			return invalid("can.bitrate", strconv.Itoa(p.CAN.BitrateKbps))
		}
		if p.CAN.CrystalMHz != 8 && p.CAN.CrystalMHz != 16 {
			return invalid("can.crystal", strconv.Itoa(p.CAN.CrystalMHz))
		}
	case "slcan":
		if p.CAN.UART != "uart0" && p.CAN.UART != "uart1" {
			return invalid("can.uart", p.CAN.UART)
		}
	default:
		return invalid("can.driver", p.CAN.Driver)
	}
	return nil
}

func claimPin(seen map[int]string, n int, who string) error {
	if n < 0 || n > 29 {
		return invalid(who, "GP"+strconv.Itoa(n)+" out of range")
	}
	if prev, ok := seen[n]; ok {
		return invalid(who, "GP"+strconv.Itoa(n)+" already used by "+prev)
	}
	seen[n] = who
	return nil
}

func invalid(field, msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: field + ": " + msg}
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// Resolve returns the validated config for the board named in ctx.
func (s *ConfigService) Resolve(ctx context.Context) (Panel, error) {
	board, _ := ctx.Value(CtxBoardKey).(string)
	if board == "" {
		return Panel{}, invalid("board", "missing board name in context")
	}
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return Panel{}, invalid("board", "no embedded config for board: "+board)
	}
	p, err := Decode(raw)
	if err != nil {
		return Panel{}, err
	}
	return p, p.Validate()
}

// Publish places the active config on the bus as a retained message.
func (s *ConfigService) Publish(conn *bus.Connection, p Panel) {
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "panel"), p, true))
}
