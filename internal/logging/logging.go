// Package logging builds the zap logger shared by the command line tool and
// the server, and the per-component and per-session views of it.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iwvelando/payout-quote/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sessionIDLength is how much of a session ID is written to the log.
const sessionIDLength = 8

// New creates the root logger for app from configuration and a CLI level
// override. Every entry carries the app name.
func New(loggingConfig config.LoggingConfig, logLevelOverride, app string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg, err := baseConfig(loggingConfig.Format)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if app != "" {
		cfg.InitialFields = map[string]interface{}{"app": app}
	}

	if path := loggingConfig.OutputFile; path != "" {
		if err := prepareFile(path); err != nil {
			return nil, err
		}
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}

	return cfg.Build()
}

func baseConfig(format string) (zap.Config, error) {
	switch format {
	case "", "json":
		return zap.NewProductionConfig(), nil
	case "console":
		return zap.NewDevelopmentConfig(), nil
	default:
		return zap.Config{}, fmt.Errorf("invalid log format: %s", format)
	}
}

// prepareFile creates the log directory and checks the file is writable.
func prepareFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file.Close()
}

// ParseLevel maps a level name to its zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// Component returns the logger for one part of the tool, named after it.
// A nil logger yields a no-op logger.
func Component(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(name)
}

// Session is the log field identifying a session. Only a prefix of the ID is
// written.
func Session(id string) zap.Field {
	if len(id) > sessionIDLength {
		id = id[:sessionIDLength]
	}
	return zap.String("session", id)
}
