package slcan

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"panelcode-go/can"
	"panelcode-go/errcode"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		f    can.Frame
		want string
	}{
		{can.Toggle(3), "t018103\r"},
		{can.Brightness(1, 0xA0), "t0152" + "01A0\r"},
		{can.Frame{ID: 0x1B, RTR: true, Len: 8}, "r01B8\r"},
		{can.Frame{ID: 0x12345, Extended: true, Len: 1, Data: [8]byte{0xFF}}, "T000123451FF\r"},
		{can.Frame{ID: 0x12345, Extended: true, RTR: true}, "R000123450\r"},
	}
	for _, tt := range tests {
		got, err := Encode(tt.f)
		if err != nil {
			t.Fatalf("Encode(%v): %v", tt.f, err)
		}
		if string(got) != tt.want {
			t.Errorf("Encode(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	f, err := Decode([]byte("t01B8FF00FF000000000001"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	on, ok := can.ParseLEDState(f)
	if !ok || !on[0] || on[1] || !on[2] {
		t.Fatalf("decoded %v -> %v %v", f, on, ok)
	}

	// Trailing timestamp is ignored.
	f, err = Decode([]byte("t0003A2B3C11234"))
	if err != nil || f != can.OTATrigger([3]byte{0xA2, 0xB3, 0xC1}) {
		t.Fatalf("Decode with timestamp = %v, %v", f, err)
	}

	for _, bad := range []string{"z", "t01", "t0189", "t01812", "tXYZ0", "t8001AA"} {
		if _, err := Decode([]byte(bad)); err == nil {
			t.Errorf("Decode(%q) succeeded", bad)
		}
	}
	if _, err := Decode([]byte("t8001AA")); errcode.Of(err) != errcode.InvalidID {
		t.Errorf("11-bit overflow: %v", err)
	}
}

// pipeRW is an adapter stand-in: writes are captured, reads come from r.
type pipeRW struct {
	r *io.PipeReader

	mu  sync.Mutex
	out bytes.Buffer
}

func (p *pipeRW) Read(b []byte) (int, error) { return p.r.Read(b) }
func (p *pipeRW) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}
func (p *pipeRW) Close() error { return p.r.Close() }
func (p *pipeRW) written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

func TestTransport(t *testing.T) {
	pr, pw := io.Pipe()
	rw := &pipeRW{r: pr}
	tr, err := Open(rw, Options{BitrateKbps: 250})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := rw.written(); got != "C\rS5\rO\r" {
		t.Fatalf("init = %q", got)
	}

	if err := tr.Send(can.Toggle(7)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := rw.written(); got != "C\rS5\rO\rt018107\r" {
		t.Fatalf("after send = %q", got)
	}

	go func() {
		_, _ = pw.Write([]byte("\rz\r\at0003A1B2C3\r"))
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f, err := tr.Recv(ctx)
	if err != nil || f != can.OTATrigger([3]byte{0xA1, 0xB2, 0xC3}) {
		t.Fatalf("Recv = %v, %v", f, err)
	}

	_ = tr.Close()
	if _, err := tr.Recv(ctx); errcode.Of(err) != errcode.Closed {
		t.Fatalf("Recv after Close: %v", err)
	}
	if err := tr.Send(can.Toggle(1)); err != errcode.Closed {
		t.Fatalf("Send after Close: %v", err)
	}
}

func TestOpenRejectsBitrate(t *testing.T) {
	pr, _ := io.Pipe()
	if _, err := Open(&pipeRW{r: pr}, Options{BitrateKbps: 300}); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err = %v", err)
	}
}

func TestOverlongLineDropped(t *testing.T) {
	pr, pw := io.Pipe()
	tr, err := Open(&pipeRW{r: pr}, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	// The prefix of the long line is itself a valid frame; it must not be
	// delivered.
	long := "t0018" + strings.Repeat("11", 8) + strings.Repeat("0", 20)
	go func() {
		_, _ = pw.Write([]byte(long + "\rt0003A1B2C3\r"))
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f, err := tr.Recv(ctx)
	if err != nil || f != can.OTATrigger([3]byte{0xA1, 0xB2, 0xC3}) {
		t.Fatalf("Recv = %v, %v", f, err)
	}
	short, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if f, err := tr.Recv(short); err == nil {
		t.Fatalf("unexpected frame %v", f)
	}
}
