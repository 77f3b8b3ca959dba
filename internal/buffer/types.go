package buffer

import "time"

// Event is one buffered status transition: the job it belongs to paired with
// the status it moved to at the moment it was accepted.
type Event[J, S any] struct {
	Job    J
	Status S
}

// FlushFunc receives the entire pending batch in insertion order. A non-nil
// error means the batch was not persisted; the buffer keeps it and retries on
// the next flush, possibly with newer events appended after it.
type FlushFunc[J, S any] func(events []Event[J, S]) error

// Stats provides a snapshot of buffer counters
type Stats struct {
	BufferedEvents int
	AcceptedEvents int64
	Flushes        int64
	FlushFailures  int64
	LastEventAt    time.Time
}
