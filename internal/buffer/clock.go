package buffer

import "time"

// Clock supplies the instants used to measure quiescence. Readings are only
// ever subtracted from one another, never interpreted as calendar time; the
// monotonic component carried by time.Time makes the elapsed computation
// immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
