//go:build !linux || tinygo

// Package socketcan is a raw Linux SocketCAN transport.
package socketcan

import (
	"context"

	"panelcode-go/can"
	"panelcode-go/errcode"
)

type Options struct {
	IDs []uint32
}

type Transport struct{}

func Open(iface string, o Options) (*Transport, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "socketcan." + iface, Msg: "linux only"}
}

func (*Transport) Send(can.Frame) error { return errcode.Unsupported }

func (*Transport) Recv(context.Context) (can.Frame, error) { return can.Frame{}, errcode.Unsupported }

func (*Transport) Close() error { return nil }
