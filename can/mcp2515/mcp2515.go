//go:build rp2040 || rp2350

// Package mcp2515 adapts the TinyGo MCP2515 driver to can.Transport.
package mcp2515

import (
	"context"
	"machine"
	"strconv"
	"sync"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/mcp2515"

	"panelcode-go/can"
	"panelcode-go/errcode"
)

const pollEvery = time.Millisecond

var speeds = map[int]byte{
	50:   mcp2515.CAN50kBps,
	100:  mcp2515.CAN100kBps,
	125:  mcp2515.CAN125kBps,
	250:  mcp2515.CAN250kBps,
	500:  mcp2515.CAN500kBps,
	1000: mcp2515.CAN1000kBps,
}

// Transport owns the controller. The SPI bus is not shared, so one mutex
// serialises Send against the receive poll.
type Transport struct {
	mu     sync.Mutex
	dev    *mcp2515.Device
	closed bool
}

// Open resets the controller and enters normal mode at the given bitrate.
// spi must already be configured.
func Open(spi drivers.SPI, cs machine.Pin, bitrateKbps, crystalMHz int) (*Transport, error) {
	speed, ok := speeds[bitrateKbps]
	if !ok {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "mcp2515", Msg: "bitrate " + strconv.Itoa(bitrateKbps)}
	}
	var clock byte
	switch crystalMHz {
	case 8:
		clock = mcp2515.Clock8MHz
	case 16:
		clock = mcp2515.Clock16MHz
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "mcp2515", Msg: "crystal " + strconv.Itoa(crystalMHz)}
	}
	dev := mcp2515.New(spi, cs)
	dev.Configure()
	if err := dev.Begin(speed, clock); err != nil {
		return nil, errcode.Wrap(errcode.TransportInit, "mcp2515", err)
	}
	return &Transport{dev: dev}, nil
}

// Send transmits a standard data frame. The driver has no extended or remote
// frame support.
func (t *Transport) Send(f can.Frame) error {
	if f.Extended || f.RTR {
		return &errcode.E{C: errcode.Unsupported, Op: "mcp2515.tx", Msg: f.String()}
	}
	if err := f.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errcode.Closed
	}
	if err := t.dev.Tx(f.ID, f.Len, f.Payload()); err != nil {
		return errcode.Wrap(errcode.TxFailed, "mcp2515.tx", err)
	}
	return nil
}

func (t *Transport) Recv(ctx context.Context) (can.Frame, error) {
	for {
		f, ok, err := t.poll()
		if err != nil || ok {
			return f, err
		}
		select {
		case <-ctx.Done():
			return can.Frame{}, ctx.Err()
		case <-time.After(pollEvery):
		}
	}
}

func (t *Transport) poll() (can.Frame, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return can.Frame{}, false, errcode.Closed
	}
	if !t.dev.Received() {
		return can.Frame{}, false, nil
	}
	m, err := t.dev.Rx()
	if err != nil {
		return can.Frame{}, false, errcode.Wrap(errcode.RxFailed, "mcp2515.rx", err)
	}
	// m is reused by the driver; copy out before unlocking.
	f := can.Frame{ID: m.ID, Extended: m.Ext, RTR: m.Rtr, Len: m.Dlc}
	if f.Len > can.MaxDataLen {
		f.Len = can.MaxDataLen
	}
	copy(f.Data[:], m.Data)
	return f, true, nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}
