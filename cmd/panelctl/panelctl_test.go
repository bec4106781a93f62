package main

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"panelcode-go/bus"
	"panelcode-go/can"
	"panelcode-go/can/loop"
	"panelcode-go/hal"
	"panelcode-go/hal/platform"
	"panelcode-go/services/panel"
	"panelcode-go/types"
)

func TestDescribe(t *testing.T) {
	wifi, err := can.WifiCredentialFrames("hello", "abc")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		f    can.Frame
		want string
	}{
		{can.Toggle(3), "toggle ch=3"},
		{can.Brightness(1, 254), "brightness ch=1 level=254"},
		{can.LEDState([8]bool{true, false, true}), "leds 10100000"},
		{can.MustNew(can.IDLEDState, 1, 2), "leds (short)"},
		{can.OTATrigger([3]byte{0xA1, 0xB2, 0xC3}), "ota panel-A1B2C3"},
		{wifi[0], "wifi start ssid=5 pass=3"},
		{wifi[1], `wifi ssid[0] "hello"`},
		{wifi[2], "wifi pass[0] (3 bytes)"},
		{wifi[3], "wifi end xor=02"},
		{can.MustNew(0x123, 1), ""},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			if got := Describe(tt.f, "panel-"); got != tt.want {
				t.Fatalf("Describe(%s) = %q, want %q", tt.f, got, tt.want)
			}
		})
	}
}

func TestParseSuffix(t *testing.T) {
	for _, in := range []string{"panel-A1B2C3", "a1b2c3", "esp32-A1B2C3"} {
		s, err := ParseSuffix(in)
		if err != nil {
			t.Fatalf("ParseSuffix(%q): %v", in, err)
		}
		if s != [3]byte{0xA1, 0xB2, 0xC3} {
			t.Fatalf("ParseSuffix(%q) = %x", in, s)
		}
	}
	for _, in := range []string{"", "panel-", "A1B2", "ZZZZZZ", "A1B2C3D4"} {
		if _, err := ParseSuffix(in); err == nil {
			t.Fatalf("ParseSuffix(%q) should fail", in)
		}
	}
}

func TestParseLEDs(t *testing.T) {
	want := [8]bool{true, false, true, false, false, false, false, true}
	tests := []struct {
		name string
		args []string
	}{
		{"bits", []string{"10100001"}},
		{"hex", []string{"0x85"}},
		{"values", []string{"on", "off", "1", "0", "false", "off", "0", "TRUE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLEDs(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}

	for _, bad := range [][]string{{"1010"}, {"1010000x"}, {"0x1FF"}, {"on", "off"}, {"on", "off", "on", "off", "on", "off", "on", "maybe"}} {
		if _, err := ParseLEDs(bad); err == nil {
			t.Fatalf("ParseLEDs(%q) should fail", bad)
		}
	}
}

func TestControllerEchoesToggles(t *testing.T) {
	c := &controller{}
	out, ok := c.step(can.Toggle(2))
	if !ok {
		t.Fatal("toggle should produce LED state")
	}
	on, _ := can.ParseLEDState(out)
	if !on[2] {
		t.Fatalf("LED 2 should be on: %v", on)
	}
	out, _ = c.step(can.Toggle(2))
	if on, _ = can.ParseLEDState(out); on[2] {
		t.Fatal("second toggle should turn LED 2 off")
	}
	if _, ok := c.step(can.Brightness(2, 9)); ok {
		t.Fatal("brightness frames are not echoed")
	}
	if _, ok := c.step(can.Toggle(8)); ok {
		t.Fatal("channel out of range should be ignored")
	}
}

func TestControllerRunLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	panelSide, ctlSide := loop.Pair(8)
	go (&controller{tr: ctlSide}).run(ctx)

	if err := panelSide.Send(can.Toggle(0)); err != nil {
		t.Fatal(err)
	}
	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	f, err := panelSide.Recv(rctx)
	if err != nil {
		t.Fatal(err)
	}
	if on, ok := can.ParseLEDState(f); !ok || !on[0] {
		t.Fatalf("got %s, want LED 0 on", f)
	}
}

func newTestModel(t *testing.T, ctl can.Transport) (simModel, []hal.Line) {
	t.Helper()
	buttons, err := hal.Inputs(platform.NewHostPins(), []int{2, 3, 4, 5, 6, 7, 8, 9}, true)
	if err != nil {
		t.Fatal(err)
	}
	return simModel{name: "panel-A1B2C3", buttons: buttons, ctl: ctl, keys: defaultSimKeys}, buttons
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSimKeysLatchButtons(t *testing.T) {
	m, buttons := newTestModel(t, nil)

	next, _ := m.Update(keyPress("3"))
	m = next.(simModel)
	if !m.pressed[2] || !buttons[2].Active() {
		t.Fatal("key 3 should latch button 2")
	}
	next, _ = m.Update(keyPress("3"))
	m = next.(simModel)
	if m.pressed[2] || buttons[2].Active() {
		t.Fatal("second key 3 should release button 2")
	}

	next, _ = m.Update(keyPress("1"))
	next, _ = next.(simModel).Update(keyPress("0"))
	m = next.(simModel)
	for i, b := range buttons {
		if b.Active() {
			t.Fatalf("button %d still active after release all", i)
		}
	}
}

func TestSimAppliesBusEvents(t *testing.T) {
	m, _ := newTestModel(t, nil)
	on := [8]bool{false, true}
	next, _ := m.Update(busMsg{&bus.Message{Topic: panel.TopicLED, Payload: types.LEDState{On: on}}})
	next, _ = next.(simModel).Update(busMsg{&bus.Message{Topic: panel.TopicMode, Payload: types.ModeRun}})
	next, _ = next.(simModel).Update(busMsg{&bus.Message{Topic: panel.TopicButton(1, panel.EvToggle), Payload: types.ToggleEvent{Channel: 1}}})
	m = next.(simModel)

	if m.leds != on {
		t.Fatalf("leds = %v, want %v", m.leds, on)
	}
	if m.mode != types.ModeRun {
		t.Fatalf("mode = %v", m.mode)
	}
	if len(m.log) != 1 || m.log[0] != "[button] 1/toggle ch=1" {
		t.Fatalf("log = %q", m.log)
	}
}

func TestSimSendsOTAToSelf(t *testing.T) {
	a, b := loop.Pair(8)
	m, _ := newTestModel(t, a)
	m.Update(keyPress("o"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f, err := b.Recv(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := can.ParseOTATrigger(f); !ok || s != [3]byte{0xA1, 0xB2, 0xC3} {
		t.Fatalf("got %s", f)
	}
}
