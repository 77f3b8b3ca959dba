package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/janbjorge/QuickQPG/internal/buffer"
	"github.com/janbjorge/QuickQPG/internal/config"
	"github.com/janbjorge/QuickQPG/internal/db"
	"github.com/janbjorge/QuickQPG/internal/job"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "", "Path to configuration file (TOML)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(newLogHandler(cfg.Logging))
	slog.SetDefault(logger)

	slog.Info("starting quickqpg status buffer", "config_file", *configFile)
	slog.Info("database configuration",
		"driver", cfg.Database.Driver,
		"dsn", cfg.Database.DSN)

	// Open database connection with pool settings
	database, err := db.OpenWithConfig(cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.EnsureSchema(); err != nil {
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database schema ready")

	// The buffer's flush sink is the bulk status-log insert
	buf, err := buffer.New[*job.Job, job.Status](cfg.Buffer, database.InsertStatusBatch, logger)
	if err != nil {
		slog.Error("failed to create status buffer", "error", err)
		os.Exit(1)
	}

	go buf.Monitor()

	slog.Info("quickqpg is running",
		"capacity", cfg.Buffer.Capacity,
		"flush_timeout", cfg.Buffer.FlushTimeout)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down gracefully")

	// Stop the monitor (it exits within one flush interval) and drain
	// whatever is still pending.
	buf.Stop()
	if err := buf.Flush(); err != nil {
		slog.Error("final flush failed", "error", err, "buffered", buf.Len())
		os.Exit(1)
	}

	stats := buf.Stats()
	slog.Info("buffer drained",
		"accepted", stats.AcceptedEvents,
		"flushes", stats.Flushes,
		"flush_failures", stats.FlushFailures)
}

// newLogHandler builds the slog handler described by the logging config
func newLogHandler(cfg config.LoggingConfig) slog.Handler {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}
