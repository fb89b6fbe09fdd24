package core

import (
	"github.com/benbjohnson/clock"
)

// Clock is the injected monotonic time source spec §6 requires: seconds
// since epoch, non-decreasing, production-backed by host block time,
// test-backed by a fake. Thin wrapper over benbjohnson/clock so callers
// get Unix-seconds u32 directly instead of re-deriving it everywhere.
type Clock interface {
	NowUnix() uint32
}

// realClock wraps clock.Clock (production: clock.New(), tests:
// clock.NewMock()) the way the rest of the Go ecosystem injects fakeable
// time.
type realClock struct {
	c clock.Clock
}

// NewClock returns a Clock backed by the real wall clock.
func NewClock() Clock { return realClock{c: clock.New()} }

// NewClockFrom wraps an existing benbjohnson/clock.Clock, letting tests
// pass a *clock.Mock and advance it deterministically.
func NewClockFrom(c clock.Clock) Clock { return realClock{c: c} }

func (r realClock) NowUnix() uint32 {
	return uint32(r.c.Now().Unix())
}
