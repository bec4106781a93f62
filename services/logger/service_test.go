package logger

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"panelcode-go/bus"
	"panelcode-go/types"
)

type syncBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuf) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuf) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func waitFor(t *testing.T, buf *syncBuf, want string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("output %q does not contain %q", buf.String(), want)
}

func TestLoggerFormatsEvents(t *testing.T) {
	b := bus.NewBus(16)
	buf := &syncBuf{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Retained state published before start is replayed on subscribe.
	pub := b.NewConnection("panel")
	pub.Publish(pub.NewMessage(bus.T("panel", "led", "state"), types.LEDState{On: [8]bool{true}}, true))

	_ = (&Service{W: buf}).Start(ctx, b.NewConnection("logger"))
	waitFor(t, buf, "[led] state 10000000\n")

	pub.Publish(pub.NewMessage(bus.T("panel", "button", "3", "toggle"), types.ToggleEvent{Channel: 3}, false))
	waitFor(t, buf, "[button] 3/toggle ch=3\n")

	pub.Publish(pub.NewMessage(bus.T("panel", "can", "alert"), types.CANAlert{Kind: types.AlertRxQueueFull, Dropped: 4}, false))
	waitFor(t, buf, "[can] alert rx_queue_full dropped=4\n")

	pub.Publish(pub.NewMessage(bus.T("other", "topic"), "ignored", false))
	pub.Publish(pub.NewMessage(bus.T("panel", "startup"), "show played", false))
	waitFor(t, buf, "[startup] show played\n")
	if strings.Contains(buf.String(), "ignored") {
		t.Fatal("logged a non-panel topic")
	}
}

func TestLoggerHeartbeat(t *testing.T) {
	b := bus.NewBus(4)
	buf := &syncBuf{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = (&Service{W: buf, Heartbeat: 10 * time.Millisecond}).Start(ctx, b.NewConnection("logger"))
	waitFor(t, buf, "[heartbeat] up ")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{types.ModeOTA, "ota"},
		{"text", "text"},
		{true, "true"},
		{42, "42"},
		{struct{}{}, "?"},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
