// Package clock provides time abstractions for production and testing.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source used for timestamps and retry delays.
type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

// System is the production clock.
type System struct{}

// After returns a channel that sends the current time after d.
func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now()
}

// Fake is a deterministic clock. After fires immediately and advances the
// fake time by d; every requested delay is recorded.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	delays []time.Duration
}

// NewFake returns a Fake starting at now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// After records d, advances the clock and returns a fired channel.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	f.now = f.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- f.now
	return ch
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Delays returns the delays requested so far.
func (f *Fake) Delays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.delays))
	copy(out, f.delays)
	return out
}
