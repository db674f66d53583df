package pubsite

import "time"

// Clock supplies wall-clock time to rendering.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Useful for reproducible
// exports and tests.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
