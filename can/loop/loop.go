// Package loop is an in-memory CAN bus segment: every frame sent by one
// endpoint is delivered to all others.
package loop

import (
	"context"
	"sync"

	"panelcode-go/can"
	"panelcode-go/errcode"
)

type Bus struct {
	mu    sync.Mutex
	ports []*Port
	depth int
}

// New returns a segment whose endpoints buffer depth frames each. A full
// endpoint loses the frame, like a controller with a full RX FIFO.
func New(depth int) *Bus {
	if depth <= 0 {
		depth = 64
	}
	return &Bus{depth: depth}
}

// Pair is a two-node segment.
func Pair(depth int) (*Port, *Port) {
	b := New(depth)
	return b.Attach(), b.Attach()
}

func (b *Bus) Attach() *Port {
	p := &Port{bus: b, rx: make(chan can.Frame, b.depth), done: make(chan struct{})}
	b.mu.Lock()
	b.ports = append(b.ports, p)
	b.mu.Unlock()
	return p
}

type Port struct {
	bus  *Bus
	rx   chan can.Frame
	once sync.Once
	done chan struct{}
}

func (p *Port) Send(f can.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	select {
	case <-p.done:
		return errcode.Closed
	default:
	}
	p.bus.mu.Lock()
	defer p.bus.mu.Unlock()
	for _, q := range p.bus.ports {
		if q == p {
			continue
		}
		select {
		case q.rx <- f:
		default:
		}
	}
	return nil
}

func (p *Port) Recv(ctx context.Context) (can.Frame, error) {
	select {
	case f := <-p.rx:
		return f, nil
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case <-p.done:
		return can.Frame{}, errcode.Closed
	}
}

func (p *Port) Close() error {
	p.once.Do(func() {
		close(p.done)
		p.bus.mu.Lock()
		for i, q := range p.bus.ports {
			if q == p {
				p.bus.ports = append(p.bus.ports[:i], p.bus.ports[i+1:]...)
				break
			}
		}
		p.bus.mu.Unlock()
	})
	return nil
}
