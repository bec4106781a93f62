//go:build !rp2040 && !rp2350

// Package platform supplies concrete pins, the device identity and the CAN
// and storage backends for the build target.
package platform

import (
	"net"
	"sync"

	"panelcode-go/hal"
)

// FakePin is an in-memory GPIO used by the simulator and host tests.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	pull    hal.Pull
	modeOut bool
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

// ConfigureInput lets the pin float to its pull level.
func (p *FakePin) ConfigureInput(pull hal.Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.pull = pull
	p.level = pull == hal.PullUp
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Number() int { return p.number }

// IsOutput reports whether ConfigureOutput was the last configuration.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// HostPins hands out one FakePin per GP number, the same pin on every call.
type HostPins struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func NewHostPins() *HostPins { return &HostPins{pins: make(map[int]*FakePin)} }

func (h *HostPins) ByNumber(n int) (hal.GPIOPin, bool) {
	p, ok := h.Pin(n)
	if !ok {
		return nil, false
	}
	return p, true
}

// Pin is ByNumber with the concrete type, for tests and the simulator.
func (h *HostPins) Pin(n int) (*FakePin, bool) {
	if n < 0 || n > MaxPin {
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pins[n]
	if p == nil {
		p = NewFakePin(n)
		h.pins[n] = p
	}
	return p, true
}

// DeviceID is the first hardware address found on the host, or zeros.
func DeviceID() []byte {
	ifs, err := net.Interfaces()
	if err == nil {
		for _, ifi := range ifs {
			if len(ifi.HardwareAddr) >= 3 && ifi.Flags&net.FlagLoopback == 0 {
				return append([]byte(nil), ifi.HardwareAddr...)
			}
		}
	}
	return make([]byte, 6)
}
