// Package logging builds the pak's zap logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level and sinks.
type Config struct {
	Level string
	// FilePath is the log file on the card. Empty disables the file sink.
	FilePath string
	// Stderr forces the stderr sink; otherwise it is used only on a terminal.
	Stderr bool
}

// New returns a logger tagged with a fresh run id. The file gets plain level
// names; colour is used on stderr only.
func New(cfg Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	enabled := zap.NewAtomicLevelAt(level)

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000000")

	var cores []zapcore.Core
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		sink, _, err := zap.Open(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, enabled))
	}
	if cfg.Stderr || isTerminal(os.Stderr.Fd()) {
		colorCfg := encCfg
		colorCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(colorCfg), zapcore.Lock(os.Stderr), enabled))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	return logger.Named("moflex").With(zap.String("run", uuid.NewString())), nil
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
