// Package slcan speaks the Lawicel ASCII protocol used by USB and UART CAN
// adapters. Frames travel as lines such as "t0180103\r".
package slcan

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"sync"

	"panelcode-go/can"
	"panelcode-go/errcode"
	"panelcode-go/x/conv"
)

// 'T', ext id, dlc, data, optional timestamp. Longer lines are dropped.
const maxLine = 1 + 8 + 1 + 16 + 4

// Bitrate command suffixes, S0..S8.
var bitrates = map[int]byte{
	10: '0', 20: '1', 50: '2', 100: '3', 125: '4',
	250: '5', 500: '6', 800: '7', 1000: '8',
}

type Options struct {
	BitrateKbps int  // default 500
	ListenOnly  bool // open with "L" instead of "O"
	RxQueue     int  // default 64
}

type Transport struct {
	rw io.ReadWriter

	wmu sync.Mutex
	rx  chan can.Frame

	once sync.Once
	done chan struct{}
	err  error // set before done is closed
}

// Open configures the adapter and starts the reader. rw is closed by Close
// when it implements io.Closer.
func Open(rw io.ReadWriter, o Options) (*Transport, error) {
	if o.BitrateKbps == 0 {
		o.BitrateKbps = 500
	}
	if o.RxQueue <= 0 {
		o.RxQueue = 64
	}
	code, ok := bitrates[o.BitrateKbps]
	if !ok {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "slcan.open", Msg: "bitrate " + strconv.Itoa(o.BitrateKbps)}
	}
	t := &Transport{rw: rw, rx: make(chan can.Frame, o.RxQueue), done: make(chan struct{})}

	open := "O\r"
	if o.ListenOnly {
		open = "L\r"
	}
	// Close first in case the adapter was left open; its NACK is harmless.
	for _, cmd := range []string{"C\r", "S" + string(code) + "\r", open} {
		if err := t.write([]byte(cmd)); err != nil {
			return nil, errcode.Wrap(errcode.TransportInit, "slcan.open", err)
		}
	}
	go t.readLoop()
	return t, nil
}

func (t *Transport) write(b []byte) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	_, err := t.rw.Write(b)
	return err
}

func (t *Transport) Send(f can.Frame) error {
	select {
	case <-t.done:
		return errcode.Closed
	default:
	}
	b, err := Encode(f)
	if err != nil {
		return err
	}
	if err := t.write(b); err != nil {
		return errcode.Wrap(errcode.TxFailed, "slcan.send", err)
	}
	return nil
}

func (t *Transport) Recv(ctx context.Context) (can.Frame, error) {
	select {
	case f := <-t.rx:
		return f, nil
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case <-t.done:
		return can.Frame{}, t.err
	}
}

func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		_ = t.write([]byte("C\r"))
		t.err = errcode.Closed
		close(t.done)
		if c, ok := t.rw.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

func (t *Transport) fail(err error) {
	t.once.Do(func() {
		t.err = &errcode.E{C: errcode.Closed, Op: "slcan.read", Err: err}
		close(t.done)
	})
}

func (t *Transport) readLoop() {
	br := bufio.NewReader(t.rw)
	line := make([]byte, 0, maxLine)
	over := false // current line exceeded maxLine; skip to its terminator
	for {
		b, err := br.ReadByte()
		if err != nil {
			t.fail(err)
			return
		}
		switch b {
		case '\r', '\n':
			if len(line) > 0 && !over {
				if f, err := Decode(line); err == nil {
					select {
					case t.rx <- f:
					case <-t.done:
						return
					}
				}
			}
			line, over = line[:0], false
		case '\a':
			line, over = line[:0], false
		default:
			if len(line) < maxLine {
				line = append(line, b)
			} else {
				over = true
			}
		}
	}
}

// Encode renders f as one command line including the trailing CR.
func Encode(f can.Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var cmd byte
	digits := 3
	switch {
	case f.Extended && f.RTR:
		cmd, digits = 'R', 8
	case f.Extended:
		cmd, digits = 'T', 8
	case f.RTR:
		cmd = 'r'
	default:
		cmd = 't'
	}
	out := make([]byte, 0, maxLine+1)
	out = append(out, cmd)
	out = conv.AppendHexU32(out, f.ID, digits)
	out = append(out, '0'+f.Len)
	if !f.RTR {
		out = conv.AppendHex(out, f.Payload())
	}
	return append(out, '\r'), nil
}

// Decode parses a received frame line without its terminator. Adapter
// acknowledgements ("z", "Z") and other replies are InvalidFrame.
func Decode(line []byte) (can.Frame, error) {
	if len(line) == 0 {
		return can.Frame{}, errcode.InvalidFrame
	}
	var f can.Frame
	digits := 3
	switch line[0] {
	case 't':
	case 'r':
		f.RTR = true
	case 'T':
		f.Extended, digits = true, 8
	case 'R':
		f.Extended, f.RTR, digits = true, true, 8
	default:
		return can.Frame{}, errcode.InvalidFrame
	}
	if len(line) < 1+digits+1 {
		return can.Frame{}, errcode.InvalidLength
	}
	id, err := strconv.ParseUint(string(line[1:1+digits]), 16, 32)
	if err != nil {
		return can.Frame{}, errcode.InvalidID
	}
	f.ID = uint32(id)
	dlc := line[1+digits]
	if dlc < '0' || dlc > '8' {
		return can.Frame{}, errcode.InvalidLength
	}
	f.Len = dlc - '0'
	data := line[2+digits:]
	if !f.RTR {
		// Some adapters append a 4-digit timestamp; ignore anything past
		// the payload.
		if len(data) < 2*int(f.Len) {
			return can.Frame{}, errcode.InvalidLength
		}
		for i := 0; i < int(f.Len); i++ {
			v, err := strconv.ParseUint(string(data[2*i:2*i+2]), 16, 8)
			if err != nil {
				return can.Frame{}, errcode.InvalidFrame
			}
			f.Data[i] = byte(v)
		}
	}
	return f, f.Validate()
}
