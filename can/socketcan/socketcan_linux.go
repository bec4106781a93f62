//go:build linux && !tinygo

// Package socketcan is a raw Linux SocketCAN transport.
package socketcan

import (
	"context"
	"net"
	"sync"

	"golang.org/x/sys/unix"

	"panelcode-go/can"
	"panelcode-go/errcode"
)

const pollMs = 100

type Transport struct {
	fd int

	wmu    sync.Mutex
	rmu    sync.Mutex
	mu     sync.Mutex
	closed bool
}

// Options narrow what the kernel delivers. With no IDs every standard and
// extended frame is received.
type Options struct {
	IDs []uint32 // exact 11-bit identifiers to accept
}

// Open binds a raw CAN socket to the named interface, e.g. "can0".
func Open(iface string, o Options) (*Transport, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, errcode.Wrap(errcode.TransportInit, "socketcan."+iface, err)
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, errcode.Wrap(errcode.TransportInit, "socketcan.socket", err)
	}
	if len(o.IDs) > 0 {
		fs := make([]unix.CanFilter, 0, len(o.IDs))
		for _, id := range o.IDs {
			fs = append(fs, unix.CanFilter{Id: id, Mask: unix.CAN_EFF_FLAG | unix.CAN_RTR_FLAG | unix.CAN_SFF_MASK})
		}
		if err := unix.SetsockoptCanRawFilter(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, fs); err != nil {
			unix.Close(fd)
			return nil, errcode.Wrap(errcode.TransportInit, "socketcan.filter", err)
		}
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, errcode.Wrap(errcode.TransportInit, "socketcan.bind", err)
	}
	return &Transport{fd: fd}, nil
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Transport) Send(f can.Frame) error {
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	if t.isClosed() {
		return errcode.Closed
	}
	t.wmu.Lock()
	defer t.wmu.Unlock()
	n, err := unix.Write(t.fd, b)
	switch {
	case err != nil:
		return errcode.Wrap(errcode.TxFailed, "socketcan.write", err)
	case n != can.WireSize:
		return &errcode.E{C: errcode.TxFailed, Op: "socketcan.write", Msg: "short write"}
	}
	return nil
}

// Recv polls in short slices so ctx and Close are honoured promptly.
func (t *Transport) Recv(ctx context.Context) (can.Frame, error) {
	t.rmu.Lock()
	defer t.rmu.Unlock()
	buf := make([]byte, can.WireSize)
	for {
		if err := ctx.Err(); err != nil {
			return can.Frame{}, err
		}
		if t.isClosed() {
			return can.Frame{}, errcode.Closed
		}
		pfd := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(pfd, pollMs)
		if err == unix.EINTR || n == 0 {
			continue
		}
		if err != nil {
			return can.Frame{}, errcode.Wrap(errcode.RxFailed, "socketcan.poll", err)
		}
		m, err := unix.Read(t.fd, buf)
		if err != nil {
			return can.Frame{}, errcode.Wrap(errcode.RxFailed, "socketcan.read", err)
		}
		var f can.Frame
		if m < can.WireSize || f.UnmarshalBinary(buf) != nil {
			continue // error frames and CAN FD frames are skipped
		}
		return f, nil
	}
}

func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()
	// Wait for an in-flight Recv to notice before releasing the fd.
	t.rmu.Lock()
	defer t.rmu.Unlock()
	return unix.Close(t.fd)
}
