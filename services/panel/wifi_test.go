package panel

import (
	"testing"

	"panelcode-go/can"
	"panelcode-go/errcode"
)

func wf(data ...byte) can.Frame { return can.MustNew(can.IDWifiConfig, data...) }

func feed(s *Session, frames ...can.Frame) Result {
	var r Result
	for _, f := range frames {
		r = s.Handle(f)
	}
	return r
}

func helloABC(end byte) []can.Frame {
	return []can.Frame{
		wf(can.WifiStart, 5, 3, 1, 1),
		wf(can.WifiSSID, 0, 'h', 'e', 'l', 'l', 'o'),
		wf(can.WifiPassword, 0, 'a', 'b', 'c'),
		wf(can.WifiEnd, end),
	}
}

func TestSessionCommitsHelloABC(t *testing.T) {
	var s Session
	r := feed(&s, helloABC(0x02)...)
	if r.Outcome != OutcomeCommit {
		t.Fatalf("outcome = %v err = %q, want commit", r.Outcome, r.Err)
	}
	if r.Creds.SSID != "hello" || r.Creds.Password != "abc" {
		t.Fatalf("creds = %+v", r.Creds)
	}
	if s.Collecting() {
		t.Fatal("still collecting after End")
	}
}

func TestSessionChecksumOffByOneBit(t *testing.T) {
	var s Session
	r := feed(&s, helloABC(0x02^0x01)...)
	if r.Outcome != OutcomeReject || r.Err != errcode.ChecksumMismatch {
		t.Fatalf("result = %+v, want checksum reject", r)
	}
	if r.Creds.Valid() {
		t.Fatal("credentials returned on reject")
	}
	if s.Collecting() {
		t.Fatal("still collecting after failed End")
	}
}

func TestSessionStraysWhileIdle(t *testing.T) {
	var s Session
	for _, f := range []can.Frame{
		wf(can.WifiSSID, 0, 'x'),
		wf(can.WifiPassword, 0, 'y'),
		wf(can.WifiEnd, 0),
		wf(0x7F, 1, 2),
		{ID: can.IDWifiConfig, RTR: true},
	} {
		if r := s.Handle(f); r.Outcome != OutcomeNone {
			t.Fatalf("%v: outcome %v, want none", f, r.Outcome)
		}
	}
	if s.Collecting() {
		t.Fatal("strays started a session")
	}
	if a, b, c, d := s.Progress(); a|b|c|d != 0 {
		t.Fatal("strays changed counters")
	}
}

func TestSessionRestartDiscardsPriorBytes(t *testing.T) {
	var s Session
	r := feed(&s,
		wf(can.WifiStart, 5, 3, 1, 1),
		wf(can.WifiSSID, 0, 'h', 'e', 'l'),
		wf(can.WifiStart, 2, 1, 1, 1),
		wf(can.WifiSSID, 0, 'h', 'i'),
		wf(can.WifiPassword, 0, 'x'),
		wf(can.WifiEnd, can.Checksum([]byte("hi"), []byte("x"))),
	)
	if r.Outcome != OutcomeCommit || r.Creds.SSID != "hi" || r.Creds.Password != "x" {
		t.Fatalf("result = %+v, want commit hi/x", r)
	}
}

func TestSessionLengthMismatch(t *testing.T) {
	var s Session
	r := feed(&s,
		wf(can.WifiStart, 5, 3, 1, 1),
		wf(can.WifiSSID, 0, 'h', 'e', 'l'),
		wf(can.WifiPassword, 0, 'a', 'b', 'c'),
		wf(can.WifiEnd, can.Checksum([]byte("hel"), []byte("abc"))),
	)
	if r.Outcome != OutcomeReject || r.Err != errcode.LengthMismatch {
		t.Fatalf("result = %+v, want length reject", r)
	}
}

func TestSessionClampsToExpectedLength(t *testing.T) {
	var s Session
	feed(&s,
		wf(can.WifiStart, 3, 0, 1, 0),
		wf(can.WifiSSID, 0, 'a', 'b', 'c', 'd', 'e', 'f'),
		wf(can.WifiSSID, 1, 'g'),
	)
	if recv, _, _, _ := s.Progress(); recv != 3 {
		t.Fatalf("ssid received = %d, want 3", recv)
	}
}

func TestSessionDropsOverflowingChunk(t *testing.T) {
	var s Session
	frames := []can.Frame{wf(can.WifiStart, 40, 1, 7, 1)}
	for i := byte(0); i < 6; i++ {
		frames = append(frames, wf(can.WifiSSID, i, 'a', 'a', 'a', 'a', 'a', 'a'))
	}
	feed(&s, frames...)
	if recv, _, _, _ := s.Progress(); recv != 30 {
		t.Fatalf("ssid received = %d, want 30 (sixth chunk dropped)", recv)
	}
	r := feed(&s, wf(can.WifiPassword, 0, 'p'), wf(can.WifiEnd, 'p'))
	if r.Outcome != OutcomeReject || r.Err != errcode.LengthMismatch {
		t.Fatalf("result = %+v, want length reject", r)
	}
}

func TestSessionMalformedFrames(t *testing.T) {
	var s Session
	if r := s.Handle(wf(can.WifiStart, 5)); r.Outcome != OutcomeNone || s.Collecting() {
		t.Fatal("two-byte Start accepted")
	}
	feed(&s, wf(can.WifiStart, 0, 0, 0, 0))
	if r := s.Handle(wf(can.WifiEnd)); r.Outcome != OutcomeReject || r.Err != errcode.ChecksumMismatch {
		t.Fatalf("one-byte End = %+v, want checksum reject", r)
	}
}

func TestSessionAcceptsEncodedFrames(t *testing.T) {
	frames, err := can.WifiCredentialFrames("a-rather-long-network-name-32ch", "correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	var s Session
	r := feed(&s, frames...)
	if r.Outcome != OutcomeCommit {
		t.Fatalf("outcome = %v err = %q", r.Outcome, r.Err)
	}
	if r.Creds.SSID != "a-rather-long-network-name-32ch" || r.Creds.Password != "correct horse battery staple" {
		t.Fatalf("creds = %+v", r.Creds)
	}
}
