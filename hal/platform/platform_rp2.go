//go:build rp2040 || rp2350

package platform

import (
	"context"
	"io"
	"machine"
	"os"
	"strconv"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"panelcode-go/can"
	"panelcode-go/can/mcp2515"
	"panelcode-go/can/slcan"
	"panelcode-go/errcode"
	"panelcode-go/hal"
	"panelcode-go/services/config"
	"panelcode-go/services/store"
)

type rp2Pins struct{}

type rp2Pin struct {
	p machine.Pin
	n int
}

// Pins returns the factory for the chip's GPIO bank.
func Pins() hal.PinFactory { return rp2Pins{} }

func (rp2Pins) ByNumber(n int) (hal.GPIOPin, bool) {
	if n < 0 || n > MaxPin {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

func (r *rp2Pin) ConfigureInput(p hal.Pull) error {
	var mode machine.PinMode
	switch p {
	case hal.PullUp:
		mode = machine.PinInputPullup
	case hal.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(b bool)  { r.p.Set(b) }
func (r *rp2Pin) Get() bool   { return r.p.Get() }
func (r *rp2Pin) Number() int { return r.n }

// DeviceID is the unique ID of the board's QSPI flash.
func DeviceID() []byte { return machine.DeviceID() }

// LogWriter copies log lines to USB serial and to a UART on GP0/GP1,
// unless the CAN bridge already owns uart0.
func LogWriter(c config.CAN) io.Writer {
	if c.Driver == "slcan" && c.UART == "uart0" {
		return os.Stdout
	}
	if err := uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	}); err != nil {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, uartx.UART0)
}

// OpenStore opens the persistent store in the flash data region.
func OpenStore() (*store.KV, error) { return store.OpenFlash(machine.Flash) }

// OpenCAN brings up the configured bus interface.
func OpenCAN(c config.CAN) (can.Transport, error) {
	switch c.Driver {
	case "mcp2515":
		spi := machine.SPI0
		err := spi.Configure(machine.SPIConfig{
			Frequency: c.SPIHz,
			SCK:       machine.Pin(c.SCK),
			SDO:       machine.Pin(c.SDO),
			SDI:       machine.Pin(c.SDI),
			Mode:      0,
		})
		if err != nil {
			return nil, errcode.Wrap(errcode.TransportInit, "spi0", err)
		}
		return mcp2515.Open(spi, machine.Pin(c.CS), c.BitrateKbps, c.CrystalMHz)
	case "slcan":
		var hw *uartx.UART
		switch c.UART {
		case "uart0":
			hw = uartx.UART0
		case "uart1":
			hw = uartx.UART1
		default:
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "slcan", Msg: "uart " + c.UART}
		}
		if err := hw.Configure(uartx.UARTConfig{
			BaudRate: c.Baud,
			TX:       machine.Pin(c.TX),
			RX:       machine.Pin(c.RX),
		}); err != nil {
			return nil, errcode.Wrap(errcode.TransportInit, c.UART, err)
		}
		return slcan.Open(newUARTStream(hw), slcan.Options{BitrateKbps: c.BitrateKbps})
	}
	return nil, &errcode.E{C: errcode.Unsupported, Op: "can", Msg: "driver " + strconv.Quote(c.Driver)}
}

// uartStream gives uartx the io.ReadWriteCloser shape slcan expects. Close
// cancels any blocked read.
type uartStream struct {
	u      *uartx.UART
	ctx    context.Context
	cancel context.CancelFunc
}

func newUARTStream(u *uartx.UART) *uartStream {
	ctx, cancel := context.WithCancel(context.Background())
	return &uartStream{u: u, ctx: ctx, cancel: cancel}
}

func (s *uartStream) Read(b []byte) (int, error)  { return s.u.RecvSomeContext(s.ctx, b) }
func (s *uartStream) Write(b []byte) (int, error) { return s.u.Write(b) }
func (s *uartStream) Close() error                { s.cancel(); return nil }
