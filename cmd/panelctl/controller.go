package main

import (
	"context"

	"panelcode-go/can"
)

// controller stands in for the building controller on a loopback bus: it
// flips an LED on every toggle and broadcasts the new state.
type controller struct {
	tr   can.Transport
	leds [can.Channels]bool
}

// step applies one inbound frame and returns the frame to broadcast, if any.
func (c *controller) step(f can.Frame) (can.Frame, bool) {
	ch, ok := can.ParseToggle(f)
	if !ok || int(ch) >= can.Channels {
		return can.Frame{}, false
	}
	c.leds[ch] = !c.leds[ch]
	return can.LEDState(c.leds), true
}

func (c *controller) run(ctx context.Context) {
	for {
		f, err := c.tr.Recv(ctx)
		if err != nil {
			return
		}
		if out, ok := c.step(f); ok {
			_ = c.tr.Send(out)
		}
	}
}
