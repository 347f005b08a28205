package clock

import "time"

// FakeClock is a manually driven Clock for tests. It only ever moves when
// told to, so time-dependent assertions stay deterministic.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward (or backward, with a negative duration)
// relative to its current instant.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Set pins the clock to an absolute instant.
func (c *FakeClock) Set(t time.Time) {
	c.now = t.UTC()
}
