package buffer

import (
	"fmt"
	"time"
)

// Config defines the flush triggers for a Buffer
type Config struct {
	// Number of pending events that triggers an immediate flush from Add
	Capacity int `toml:"capacity"`

	// Quiet period after which the monitor flushes whatever is pending.
	// Also the monitor's wakeup granularity.
	FlushTimeout time.Duration `toml:"flush_timeout"`
}

// DefaultConfig returns OLTP-friendly buffer defaults: small enough batches
// to keep status rows fresh, large enough to amortize the bulk write
func DefaultConfig() Config {
	return Config{
		Capacity:     100,
		FlushTimeout: 1 * time.Second,
	}
}

// validateConfig validates buffer configuration and returns error if invalid
func validateConfig(config Config) error {
	if config.Capacity <= 0 {
		return fmt.Errorf("Capacity must be positive, got %d", config.Capacity)
	}

	if config.FlushTimeout <= 0 {
		return fmt.Errorf("FlushTimeout must be positive, got %v", config.FlushTimeout)
	}

	return nil
}
