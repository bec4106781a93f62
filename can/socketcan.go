package can

import (
	"encoding/binary"

	"panelcode-go/errcode"
)

// WireSize is the size of a Linux "struct can_frame".
const WireSize = 16

// Flags in the can_id word of struct can_frame.
const (
	effFlag = 0x80000000
	rtrFlag = 0x40000000
	errFlag = 0x20000000
	effMask = 0x1FFFFFFF
	sffMask = 0x7FF
)

// MarshalBinary encodes the frame in the SocketCAN can_frame layout:
//
//	0..3  can_id with EFF/RTR flags (little-endian)
//	4     can_dlc
//	5..7  padding
//	8..15 data
func (f Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	id := f.ID
	if f.Extended {
		id |= effFlag
	}
	if f.RTR {
		id |= rtrFlag
	}
	buf := make([]byte, WireSize)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.Len
	copy(buf[8:16], f.Data[:])
	return buf, nil
}

// UnmarshalBinary decodes a SocketCAN can_frame. Error frames are rejected.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < WireSize {
		return errcode.InvalidLength
	}
	id := binary.LittleEndian.Uint32(data[0:4])
	if id&errFlag != 0 {
		return errcode.InvalidFrame
	}
	f.Extended = id&effFlag != 0
	f.RTR = id&rtrFlag != 0
	if f.Extended {
		f.ID = id & effMask
	} else {
		f.ID = id & sffMask
	}
	f.Len = data[4]
	copy(f.Data[:], data[8:16])
	return f.Validate()
}
