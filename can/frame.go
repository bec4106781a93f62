// Package can defines the classical CAN frame value used throughout the panel,
// the fixed message identifiers of the panel protocol, and the transport
// contract that concrete bus drivers implement.
package can

import (
	"context"

	"panelcode-go/errcode"
	"panelcode-go/x/conv"
)

// MaxDataLen is the classical CAN payload limit.
const MaxDataLen = 8

// Identifier limits.
const (
	MaxStdID = 0x7FF
	MaxExtID = 0x1FFFFFFF
)

// Frame is a classical CAN 2.0A/B frame. Treat it as an immutable value.
type Frame struct {
	ID       uint32 // 11-bit (std) or 29-bit (ext)
	Extended bool
	RTR      bool // remote transmission request
	Len      uint8
	Data     [MaxDataLen]byte
}

// New builds a standard data frame. It fails when the payload exceeds eight
// bytes or the identifier does not fit in 11 bits.
func New(id uint32, data ...byte) (Frame, error) {
	if len(data) > MaxDataLen {
		return Frame{}, errcode.InvalidLength
	}
	f := Frame{ID: id, Len: uint8(len(data))}
	copy(f.Data[:], data)
	return f, f.Validate()
}

// MustNew is New for compile-time constant frames. It panics on invalid input.
func MustNew(id uint32, data ...byte) Frame {
	f, err := New(id, data...)
	if err != nil {
		panic(err)
	}
	return f
}

// Validate returns an error if the frame is not valid.
func (f Frame) Validate() error {
	if f.Len > MaxDataLen {
		return errcode.InvalidLength
	}
	if f.Extended {
		if f.ID > MaxExtID {
			return errcode.InvalidID
		}
	} else if f.ID > MaxStdID {
		return errcode.InvalidID
	}
	return nil
}

// Payload returns the valid data bytes from a copy of the frame.
func (f Frame) Payload() []byte {
	n := f.Len
	if n > MaxDataLen {
		n = MaxDataLen
	}
	return f.Data[:n]
}

// String renders the frame in candump compact form, e.g. "018#03" or "01B#R".
func (f Frame) String() string {
	buf := make([]byte, 0, 26)
	width := 3
	if f.Extended {
		width = 8
	}
	buf = conv.AppendHexU32(buf, f.ID, width)
	buf = append(buf, '#')
	if f.RTR {
		return string(append(buf, 'R'))
	}
	return string(conv.AppendHex(buf, f.Payload()))
}

// Transport moves frames to and from the physical bus. Implementations own
// their I/O goroutines; Recv blocks until a frame arrives, ctx is done or the
// transport is closed.
type Transport interface {
	Send(f Frame) error
	Recv(ctx context.Context) (Frame, error)
	Close() error
}
