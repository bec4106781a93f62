package panel

import (
	"panelcode-go/can"
	"panelcode-go/errcode"
	"panelcode-go/types"
)

type Outcome uint8

const (
	OutcomeNone Outcome = iota // stray or malformed frame, no state change
	OutcomeStarted
	OutcomeChunk
	OutcomeCommit
	OutcomeReject
)

// Result of feeding one provisioning frame to a Session. Creds is set for
// OutcomeCommit; Err for OutcomeReject.
type Result struct {
	Outcome Outcome
	Creds   types.WifiCredentials
	Err     errcode.Code
}

// Session reassembles WiFi credentials from chunked frames. The zero value
// is idle.
type Session struct {
	collecting bool

	ssidLen, passLen   uint8
	ssidRecv, passRecv uint8

	ssid [can.MaxSSIDLen + 1]byte
	pass [can.MaxPasswordLen + 1]byte
}

func (s *Session) Collecting() bool { return s.collecting }

// Progress reports received and expected byte counts.
func (s *Session) Progress() (ssidRecv, ssidLen, passRecv, passLen uint8) {
	return s.ssidRecv, s.ssidLen, s.passRecv, s.passLen
}

// Handle advances the session with one frame on the provisioning identifier.
func (s *Session) Handle(f can.Frame) Result {
	if f.RTR || f.Len == 0 {
		return Result{}
	}
	d := f.Payload()
	switch d[0] {
	case can.WifiStart:
		if len(d) < 3 {
			return Result{}
		}
		*s = Session{collecting: true, ssidLen: d[1], passLen: d[2]}
		return Result{Outcome: OutcomeStarted}

	case can.WifiSSID:
		if !s.collecting {
			return Result{}
		}
		s.ssidRecv = appendChunk(s.ssid[:can.MaxSSIDLen], s.ssidRecv, s.ssidLen, d)
		return Result{Outcome: OutcomeChunk}

	case can.WifiPassword:
		if !s.collecting {
			return Result{}
		}
		s.passRecv = appendChunk(s.pass[:can.MaxPasswordLen], s.passRecv, s.passLen, d)
		return Result{Outcome: OutcomeChunk}

	case can.WifiEnd:
		if !s.collecting {
			return Result{}
		}
		s.collecting = false
		ssid, pass := s.ssid[:s.ssidRecv], s.pass[:s.passRecv]
		if len(d) < 2 || can.Checksum(ssid, pass) != d[1] {
			return Result{Outcome: OutcomeReject, Err: errcode.ChecksumMismatch}
		}
		if s.ssidRecv != s.ssidLen || s.passRecv != s.passLen {
			return Result{Outcome: OutcomeReject, Err: errcode.LengthMismatch}
		}
		return Result{
			Outcome: OutcomeCommit,
			Creds:   types.WifiCredentials{SSID: string(ssid), Password: string(pass)},
		}
	}
	return Result{}
}

// appendChunk copies up to the remaining expected bytes of a chunk frame into
// buf and returns the new received count. A chunk that would overflow buf is
// dropped whole.
func appendChunk(buf []byte, recv, want uint8, d []byte) uint8 {
	if len(d) <= can.ChunkHeaderLen || recv >= want {
		return recv
	}
	n := len(d) - can.ChunkHeaderLen
	if rem := int(want - recv); n > rem {
		n = rem
	}
	if int(recv)+n > len(buf) {
		return recv
	}
	copy(buf[recv:], d[can.ChunkHeaderLen:can.ChunkHeaderLen+n])
	return recv + uint8(n)
}
