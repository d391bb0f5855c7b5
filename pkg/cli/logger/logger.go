// Package logger builds the zap logger shared by the CLI, the TUI and the
// monitor. The TUI owns the terminal, so logs go to a file by default.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where and how to log.
type Options struct {
	// Dir receives one timestamped file per process. Empty means stderr.
	Dir string
	// Name prefixes the log file, e.g. "cli" or "monitor".
	Name        string
	Development bool
	now         func() time.Time
}

// New builds a logger writing to a file under opts.Dir. When the directory
// cannot be created the logger falls back to stderr.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if path, ok := logFile(opts); ok {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

func logFile(opts Options) (string, bool) {
	if opts.Dir == "" {
		return "", false
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return "", false
	}

	name := opts.Name
	if name == "" {
		name = "cli"
	}
	now := time.Now
	if opts.now != nil {
		now = opts.now
	}
	return filepath.Join(opts.Dir, fmt.Sprintf("%s-%s.log", name, now().Format("20060102-150405"))), true
}
