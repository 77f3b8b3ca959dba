package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/janbjorge/QuickQPG/internal/buffer"
)

// MockSink records the batches a buffer flushes into it
type MockSink[J, S any] struct {
	mu         sync.Mutex
	batches    [][]buffer.Event[J, S]
	flushError error
	flushDelay time.Duration
}

func NewMockSink[J, S any]() *MockSink[J, S] {
	return &MockSink[J, S]{
		batches: make([][]buffer.Event[J, S], 0),
	}
}

// SetFlushError makes subsequent Flush calls fail with err. Pass nil to
// restore success.
func (m *MockSink[J, S]) SetFlushError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushError = err
}

// SetFlushDelay makes subsequent Flush calls block for delay, simulating a
// slow downstream write
func (m *MockSink[J, S]) SetFlushDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushDelay = delay
}

// Flush satisfies buffer.FlushFunc. Failed calls record nothing.
func (m *MockSink[J, S]) Flush(events []buffer.Event[J, S]) error {
	m.mu.Lock()
	delay := m.flushDelay
	err := m.flushError
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	batch := make([]buffer.Event[J, S], len(events))
	copy(batch, events)
	m.batches = append(m.batches, batch)
	return nil
}

// Batches returns a copy of every successfully flushed batch, oldest first
func (m *MockSink[J, S]) Batches() [][]buffer.Event[J, S] {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([][]buffer.Event[J, S], len(m.batches))
	copy(result, m.batches)
	return result
}

// LastBatch returns the most recently flushed batch, or nil if none
func (m *MockSink[J, S]) LastBatch() []buffer.Event[J, S] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.batches) == 0 {
		return nil
	}
	return m.batches[len(m.batches)-1]
}

// CountBatches returns the number of successful flushes
func (m *MockSink[J, S]) CountBatches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

// CountEvents returns the total number of events across all flushed batches
func (m *MockSink[J, S]) CountEvents() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, batch := range m.batches {
		total += len(batch)
	}
	return total
}

// MockClock provides controllable time for testing
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{
		current: start,
	}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// TestLogger provides a logger that captures logs for testing
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

func NewTestLogger() *TestLogger {
	return &TestLogger{
		entries: make([]LogEntry, 0),
	}
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

// GetEntriesByLevel returns captured entries with the given level ("DEBUG",
// "INFO", "WARN", "ERROR")
func (l *TestLogger) GetEntriesByLevel(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]LogEntry, 0)
	for _, entry := range l.entries {
		if entry.Level == level {
			result = append(result, entry)
		}
	}
	return result
}

// HasError reports whether any ERROR entry was captured
func (l *TestLogger) HasError() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.Level == "ERROR" {
			return true
		}
	}
	return false
}

// Logger returns a *slog.Logger that writes to this TestLogger
func (l *TestLogger) Logger() *slog.Logger {
	return slog.New(&testLogHandler{logger: l})
}

// testLogHandler implements slog.Handler for TestLogger
type testLogHandler struct {
	logger *TestLogger
	attrs  []slog.Attr
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, r.NumAttrs()+len(h.attrs))
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})
	for _, attr := range h.attrs {
		fields[attr.Key] = attr.Value.Any()
	}

	h.logger.record(r.Level.String(), r.Message, fields)
	return nil
}

func (h *testLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	newAttrs = append(newAttrs, attrs...)
	return &testLogHandler{logger: h.logger, attrs: newAttrs}
}

func (h *testLogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// TestingT is a minimal interface for testing
type TestingT interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// WaitFor waits for a condition to be true with timeout
func WaitFor(t TestingT, condition func() bool, timeout time.Duration, msgAndArgs ...interface{}) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return true
		}

		<-ticker.C
		if time.Now().After(deadline) {
			t.Errorf("timeout waiting for condition: %v", fmt.Sprint(msgAndArgs...))
			return false
		}
	}
}
