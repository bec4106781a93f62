package panel

import "panelcode-go/can"

// Output is a logical on/off line.
type Output interface {
	Drive(on bool)
}

// LEDSink mirrors controller LED broadcasts onto the indicator lines.
type LEDSink struct {
	lines []Output
	state [can.Channels]bool
}

func NewLEDSink(lines []Output) *LEDSink {
	return &LEDSink{lines: lines}
}

// Apply drives the lines from an LED state frame. Frames with fewer than
// eight data bytes are ignored and reported as not applied.
func (l *LEDSink) Apply(f can.Frame) bool {
	on, ok := can.ParseLEDState(f)
	if !ok {
		return false
	}
	l.Set(on)
	return true
}

func (l *LEDSink) Set(on [can.Channels]bool) {
	for i, line := range l.lines {
		if i < len(on) {
			line.Drive(on[i])
		}
	}
	l.state = on
}

// SetMask drives LED i from bit i.
func (l *LEDSink) SetMask(mask uint8) {
	var on [can.Channels]bool
	for i := range on {
		on[i] = mask&(1<<i) != 0
	}
	l.Set(on)
}

func (l *LEDSink) State() [can.Channels]bool { return l.state }
