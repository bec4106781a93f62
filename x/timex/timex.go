package timex

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond source. Values are only meaningful
// relative to each other.
type Clock interface {
	NowMs() int64
}

// Mono reads the runtime monotonic clock relative to its creation.
type Mono struct{ start time.Time }

// NewMono returns a clock starting at zero.
func NewMono() *Mono { return &Mono{start: time.Now()} }

func (m *Mono) NowMs() int64 { return time.Since(m.start).Milliseconds() }

// Fake is a manually advanced clock for tests and the simulator.
type Fake struct{ ms atomic.Int64 }

func (f *Fake) NowMs() int64 { return f.ms.Load() }

// Set jumps to an absolute time.
func (f *Fake) Set(ms int64) { f.ms.Store(ms) }

// Advance moves the clock forward by d and returns the new time.
func (f *Fake) Advance(d time.Duration) int64 { return f.ms.Add(d.Milliseconds()) }

// Elapsed reports whether at least d has passed between since and now,
// tolerating a clock that never goes backwards.
func Elapsed(now, since int64, d time.Duration) bool {
	return now-since >= d.Milliseconds()
}
