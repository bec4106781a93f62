package hal

import (
	"testing"

	"panelcode-go/errcode"
)

// ---- fakes ----

type fakePin struct {
	level bool
	mode  string // "input" or "output"
	pull  Pull
	num   int
}

func (p *fakePin) ConfigureInput(pull Pull) error { p.mode, p.pull = "input", pull; return nil }
func (p *fakePin) ConfigureOutput(initial bool) error {
	p.mode = "output"
	p.level = initial
	return nil
}
func (p *fakePin) Set(level bool) { p.level = level }
func (p *fakePin) Get() bool      { return p.level }
func (p *fakePin) Number() int    { return p.num }

type fakeFactory map[int]*fakePin

func (f fakeFactory) ByNumber(n int) (GPIOPin, bool) {
	p, ok := f[n]
	return p, ok
}

// ---- tests ----

func TestInputsActiveLow(t *testing.T) {
	f := fakeFactory{2: {num: 2, level: true}, 3: {num: 3, level: true}}
	lines, err := Inputs(f, []int{2, 3}, true)
	if err != nil {
		t.Fatalf("Inputs: %v", err)
	}
	if f[2].mode != "input" || f[2].pull != PullUp {
		t.Fatalf("pin 2 mode=%s pull=%d, want input/pull-up", f[2].mode, f[2].pull)
	}
	if lines[0].Active() {
		t.Fatal("idle high line reported active")
	}
	f[2].level = false
	if !lines[0].Active() {
		t.Fatal("pulled-low line not reported active")
	}
}

func TestOutputsStartOff(t *testing.T) {
	f := fakeFactory{10: {num: 10}, 11: {num: 11}}
	lines, err := Outputs(f, []int{10, 11}, true)
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}
	if !f[10].level || !f[11].level {
		t.Fatal("active-low outputs should idle high")
	}
	lines[1].Drive(true)
	if f[11].level {
		t.Fatal("Drive(true) on active-low line should pull low")
	}
}

func TestUnknownPin(t *testing.T) {
	_, err := Outputs(fakeFactory{}, []int{40}, false)
	if errcode.Of(err) != errcode.UnknownPin {
		t.Fatalf("err = %v, want unknown_pin", err)
	}
}
