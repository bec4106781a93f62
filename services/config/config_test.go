package config

import (
	"context"
	"testing"
	"time"

	"panelcode-go/bus"
	"panelcode-go/errcode"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestEmbeddedConfigsValid(t *testing.T) {
	for name, raw := range embeddedConfigs {
		p, err := Decode(raw)
		if err != nil {
			t.Fatalf("board %q: decode: %v", name, err)
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("board %q: %v", name, err)
		}
	}
}

func TestEmbeddedPicoMatchesDefault(t *testing.T) {
	p, err := Decode(embeddedConfigs["pico"])
	if err != nil {
		t.Fatal(err)
	}
	if p != Default() {
		t.Fatalf("pico config drifted from Default():\n got %+v\nwant %+v", p, Default())
	}
}

func TestDecodeOverrides(t *testing.T) {
	p, err := Decode([]byte(`{"leds": {"active_low": true}, "timing_ms": {"hold": 900}, "queues": {"rx": 8}, "startup_show": false}`))
	if err != nil {
		t.Fatal(err)
	}
	switch {
	case !p.LEDActiveLow:
		t.Fatal("leds.active_low not applied")
	case p.Timing.Hold != 900*time.Millisecond:
		t.Fatalf("hold = %v", p.Timing.Hold)
	case p.RxQueueLen != 8:
		t.Fatalf("rx queue = %d", p.RxQueueLen)
	case p.StartupShow:
		t.Fatal("startup_show not applied")
	case p.ButtonPins != Default().ButtonPins:
		t.Fatal("absent keys should keep defaults")
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[1, 2, 3]`},
		{"unknown key", `{"colour": "red"}`},
		{"unknown nested key", `{"can": {"speed": 500}}`},
		{"string for number", `{"timing_ms": {"debounce": "fast"}}`},
		{"fractional number", `{"queues": {"rx": 1.5}}`},
		{"short pin list", `{"buttons": {"pins": [2, 3]}}`},
		{"number for bool", `{"startup_show": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.doc)); errcode.Of(err) != errcode.InvalidParams {
				t.Fatalf("Decode(%s) = %v, want invalid_params", tt.doc, err)
			}
		})
	}
}

func TestResolveRejectsBadOverride(t *testing.T) {
	orig := EmbeddedConfigLookup
	t.Cleanup(func() { EmbeddedConfigLookup = orig })

	ctx := context.WithValue(context.Background(), CtxBoardKey, "test")
	for _, doc := range []string{
		`{"timing_ms": {"debounce": "soon"}}`,
		`{"leds": {"pins": [2, 11, 12, 13, 14, 15, 26, 27]}}`, // GP2 is a button
	} {
		EmbeddedConfigLookup = func(string) ([]byte, bool) { return []byte(doc), true }
		if _, err := NewConfigService().Resolve(ctx); errcode.Of(err) != errcode.InvalidParams {
			t.Fatalf("Resolve with %s = %v, want invalid_params", doc, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Panel)
	}{
		{"duplicate pin", func(p *Panel) { p.LEDPins[0] = p.ButtonPins[3] }},
		{"pin out of range", func(p *Panel) { p.ButtonPins[0] = 30 }},
		{"hold not above debounce", func(p *Panel) { p.Timing.Hold = p.Timing.Debounce }},
		{"zero step", func(p *Panel) { p.Timing.Step = 0 }},
		{"poll slower than debounce", func(p *Panel) { p.PollInterval = time.Second }},
		{"empty prefix", func(p *Panel) { p.HostNamePrefix = "" }},
		{"no rx queue", func(p *Panel) { p.RxQueueLen = 0 }},
		{"unknown driver", func(p *Panel) { p.CAN.Driver = "twai" }},
		{"bad bitrate", func(p *Panel) { p.CAN.BitrateKbps = 800 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mut(&p)
			if err := p.Validate(); errcode.Of(err) != errcode.InvalidParams {
				t.Fatalf("Validate() = %v, want invalid_params", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	svc := NewConfigService()

	if _, err := svc.Resolve(context.Background()); err == nil {
		t.Fatal("expected error for missing board name, got nil")
	}

	ctx := context.WithValue(context.Background(), CtxBoardKey, "unknown-board")
	if _, err := svc.Resolve(ctx); err == nil {
		t.Fatal("expected error for unknown board, got nil")
	}

	ctx = context.WithValue(context.Background(), CtxBoardKey, "pico-slcan")
	p, err := svc.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.CAN.Driver != "slcan" {
		t.Fatalf("driver = %q, want slcan", p.CAN.Driver)
	}
}

func TestPublishRetained(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-config")
	NewConfigService().Publish(conn, Default())

	// Subscribe afterwards; the retained message should arrive immediately.
	sub := conn.Subscribe(bus.T(configPrefix, "#"))
	select {
	case m := <-sub.Channel():
		p, ok := m.Payload.(Panel)
		if !ok {
			t.Fatalf("payload type %T, want Panel", m.Payload)
		}
		if p.HostNamePrefix != "panel-" {
			t.Fatalf("prefix = %q", p.HostNamePrefix)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no retained config message")
	}
}
