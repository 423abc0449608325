package clock

import "time"

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func NewClock() Clock {
	return &realClock{}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// NewFixedClock returns a clock that always reports t, for repositories under test.
func NewFixedClock(t time.Time) Clock {
	return fixedClock{t: t}
}
