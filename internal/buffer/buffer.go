package buffer

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Buffer accumulates job status events and hands them to a flush sink as a
// single ordered batch, either when Capacity events are pending or when
// FlushTimeout elapses without a new arrival. It amortizes the cost of the
// downstream bulk write while bounding worst-case latency via the timeout.
//
// All state transitions, including the sink invocation itself, are serialized
// by one mutex, so concurrent producers are totally ordered and that order is
// what the sink sees.
type Buffer[J, S any] struct {
	// Configuration
	config Config
	sink   FlushFunc[J, S]
	logger *slog.Logger
	clock  Clock

	// Event buffering, guarded by mu
	mu          sync.Mutex
	events      []Event[J, S]
	lastEventAt time.Time
	accepted    int64
	flushes     int64
	failures    int64

	// Control
	running atomic.Bool
}

// New creates a new buffer with the specified configuration and flush sink
func New[J, S any](config Config, sink FlushFunc[J, S], logger *slog.Logger) (*Buffer[J, S], error) {
	return NewWithClock(config, sink, logger, systemClock{})
}

// NewWithClock is New with an injected clock, used by tests to drive the
// quiescence check deterministically
func NewWithClock[J, S any](config Config, sink FlushFunc[J, S], logger *slog.Logger, clock Clock) (*Buffer[J, S], error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("flush sink must not be nil")
	}
	if clock == nil {
		clock = systemClock{}
	}

	b := &Buffer[J, S]{
		config:      config,
		sink:        sink,
		logger:      logger,
		clock:       clock,
		events:      make([]Event[J, S], 0, config.Capacity),
		lastEventAt: clock.Now(),
	}
	b.running.Store(true)
	return b, nil
}

// Add accepts one event. If the buffer reaches capacity the pending batch is
// flushed before Add returns; a sink failure propagates to this caller and
// the batch is retained for a later retry.
func (b *Buffer[J, S]) Add(job J, status S) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, Event[J, S]{Job: job, Status: status})
	b.lastEventAt = b.clock.Now()
	b.accepted++

	if len(b.events) >= b.config.Capacity {
		return b.flushLocked()
	}

	return nil
}

// Flush forces an immediate flush attempt of whatever is pending. An empty
// buffer is a no-op and never reaches the sink.
//
// The sink runs while the buffer lock is held, so a slow sink stalls
// concurrent producers and the monitor for its duration. That serialization
// is the backpressure mechanism: nothing can grow or reorder the batch while
// it is being written.
func (b *Buffer[J, S]) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked()
}

// flushLocked hands the sink the entire pending batch in insertion order.
// The batch is cleared only after the sink succeeds; on failure it stays put
// and the next flush resends it, giving at-least-once delivery. A sink that
// keeps failing therefore lets the buffer grow past Capacity: the capacity
// check triggers attempts, not reductions. Callers must hold b.mu.
func (b *Buffer[J, S]) flushLocked() error {
	if len(b.events) == 0 {
		return nil
	}

	if err := b.sink(b.events); err != nil {
		b.failures++
		return fmt.Errorf("flush of %d buffered events failed: %w", len(b.events), err)
	}

	b.logger.Debug("flushed buffered events", "count", len(b.events))
	b.flushes++

	// The sink may retain the slice it was handed, so start a fresh one
	// rather than reslicing.
	b.events = make([]Event[J, S], 0, b.config.Capacity)
	return nil
}

// Monitor flushes the buffer whenever FlushTimeout passes without a new
// event. It blocks until Stop is called and is meant to be run as a
// goroutine, one per buffer. Sink failures on this path have no caller to
// propagate to and are logged instead.
//
// Stop is observed once per sleep cycle: an in-flight sleep is not
// interrupted, so the monitor can lag Stop by up to one FlushTimeout and may
// perform one last timed flush in that window.
func (b *Buffer[J, S]) Monitor() {
	for b.running.Load() {
		time.Sleep(b.config.FlushTimeout)

		b.mu.Lock()
		if b.clock.Now().Sub(b.lastEventAt) >= b.config.FlushTimeout {
			if err := b.flushLocked(); err != nil {
				b.logger.Error("timed flush failed",
					"buffered", len(b.events),
					"error", err)
			}
		}
		b.mu.Unlock()
	}

	b.logger.Debug("buffer monitor stopped")
}

// Stop tells the monitor to exit after its current sleep cycle. Add and
// Flush remain callable afterwards; there is no closed state.
func (b *Buffer[J, S]) Stop() {
	b.running.Store(false)
}

// Running reports whether the monitor has been asked to keep going
func (b *Buffer[J, S]) Running() bool {
	return b.running.Load()
}

// Len returns the number of pending events
func (b *Buffer[J, S]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Stats returns current buffer statistics
func (b *Buffer[J, S]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		BufferedEvents: len(b.events),
		AcceptedEvents: b.accepted,
		Flushes:        b.flushes,
		FlushFailures:  b.failures,
		LastEventAt:    b.lastEventAt,
	}
}
