package timex

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	var c Fake
	if c.NowMs() != 0 {
		t.Fatalf("zero value NowMs = %d", c.NowMs())
	}
	if got := c.Advance(150 * time.Millisecond); got != 150 {
		t.Fatalf("Advance = %d, want 150", got)
	}
	c.Set(1000)
	if c.NowMs() != 1000 {
		t.Fatalf("NowMs = %d after Set(1000)", c.NowMs())
	}
}

func TestElapsed(t *testing.T) {
	if Elapsed(299, 100, 200*time.Millisecond) {
		t.Fatal("199ms counted as 200ms")
	}
	if !Elapsed(300, 100, 200*time.Millisecond) {
		t.Fatal("exact boundary not counted")
	}
}

func TestMonoMonotonic(t *testing.T) {
	m := NewMono()
	a := m.NowMs()
	time.Sleep(2 * time.Millisecond)
	if b := m.NowMs(); b < a {
		t.Fatalf("clock went backwards: %d then %d", a, b)
	}
}
