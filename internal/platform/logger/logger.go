// Package logger provides structured logging functionality for the application.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/lumberjack/v2"
	"github.com/petcare/catalog-api/internal/config"
)

// Rotation limits for the optional log file.
const (
	logFileMaxSizeMB  = 100
	logFileMaxBackups = 5
)

// nopCloser is returned by Setup when no log file is configured.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger with the
// appropriate log level and sets it as the default logger for the application.
//
// When cfg.LogFile is set, every line is also written to that file, rotated
// by size. The returned io.Closer releases the file and must be closed on
// shutdown.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.ServerConfig, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(cfg.LogLevel)

	var (
		out    = stdout
		closer io.Closer = nopCloser{}
	)
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, err
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			Compress:   true,
		}
		out = io.MultiWriter(stdout, rotated)
		closer = rotated
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	// Set this logger as the default for the application
	slog.SetDefault(logger)

	if !isKnownLevel(cfg.LogLevel) {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}
	return logger, closer, nil
}

// ParseLevel maps a configured level name (case-insensitive) onto a slog
// level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isKnownLevel(name string) bool {
	switch strings.ToLower(name) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
