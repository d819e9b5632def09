// Package logging builds the zap loggers used by the aim command.
package logging

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels accepted by Config.Level besides the zap level names.
const (
	LevelNone  = "none"
	LevelInfo  = "info"
	LevelDebug = "debug"
)

// Console encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects where log entries go. Console receives entries in Format;
// File, when set, always receives JSON lines.
type Config struct {
	Level   string
	Format  string
	Console io.Writer
	File    io.Writer
}

// New returns a logger writing to the configured sinks. Level "none" or a
// config without sinks yields a no-op logger.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.Level == LevelNone || (cfg.Console == nil && cfg.File == nil) {
		return zap.NewNop(), nil
	}
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if cfg.Console != nil {
		var enc zapcore.Encoder
		switch cfg.Format {
		case "", FormatConsole:
			enc = zapcore.NewConsoleEncoder(encCfg)
		case FormatJSON:
			enc = zapcore.NewJSONEncoder(encCfg)
		default:
			return nil, fmt.Errorf("unknown log format %q", cfg.Format)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(cfg.Console), level))
	}
	if cfg.File != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(cfg.File), level))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

// SessionID returns a time ordered identifier for one command invocation.
func SessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
