package can

// Fixed panel protocol identifiers (standard frames).
const (
	IDOTATrigger uint32 = 0x00 // in:  3-byte device suffix
	IDWifiConfig uint32 = 0x01 // in:  subtype-tagged credential chunks
	IDBrightness uint32 = 0x15 // out: channel, brightness
	IDToggle     uint32 = 0x18 // out: channel
	IDLEDState   uint32 = 0x1B // in:  8 per-LED bytes
)

// Channels is the number of button/LED pairs on a panel.
const Channels = 8

// Toggle is the short-press frame for channel ch.
func Toggle(ch uint8) Frame {
	return MustNew(IDToggle, ch)
}

// Brightness carries a brightness step for channel ch.
func Brightness(ch, level uint8) Frame {
	return MustNew(IDBrightness, ch, level)
}

// LEDState is the controller broadcast of all indicator states.
func LEDState(on [Channels]bool) Frame {
	var data [Channels]byte
	for i, v := range on {
		if v {
			data[i] = 0xFF
		}
	}
	return MustNew(IDLEDState, data[:]...)
}

// OTATrigger addresses the panel whose device suffix is s.
func OTATrigger(s [3]byte) Frame {
	return MustNew(IDOTATrigger, s[0], s[1], s[2])
}

// ParseToggle returns the channel of a toggle frame.
func ParseToggle(f Frame) (ch uint8, ok bool) {
	if f.ID != IDToggle || f.RTR || f.Len < 1 {
		return 0, false
	}
	return f.Data[0], true
}

// ParseBrightness returns channel and level of a brightness frame.
func ParseBrightness(f Frame) (ch, level uint8, ok bool) {
	if f.ID != IDBrightness || f.RTR || f.Len < 2 {
		return 0, 0, false
	}
	return f.Data[0], f.Data[1], true
}

// ParseLEDState decodes an LED broadcast. Frames shorter than eight bytes and
// remote frames carry no usable state.
func ParseLEDState(f Frame) (on [Channels]bool, ok bool) {
	if f.ID != IDLEDState || f.RTR || f.Len < Channels {
		return on, false
	}
	for i := range on {
		on[i] = f.Data[i] != 0
	}
	return on, true
}

// ParseOTATrigger returns the 3-byte device suffix of a trigger frame.
func ParseOTATrigger(f Frame) (s [3]byte, ok bool) {
	if f.ID != IDOTATrigger || f.RTR || f.Len < 3 {
		return s, false
	}
	copy(s[:], f.Data[:3])
	return s, true
}
