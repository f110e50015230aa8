package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where log records go. Stdout is never used: it carries the
// transcription protocol.
type Options struct {
	Level   string
	Format  string
	File    string
	Verbose bool
}

// NewLogger creates the process logger. Without a file and without Verbose
// it returns a no-op logger so stderr only carries protocol diagnostics.
func NewLogger(opts Options) (*zap.Logger, error) {
	if opts.File == "" && !opts.Verbose {
		return zap.NewNop(), nil
	}

	var config zap.Config
	if opts.Verbose {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Sampling = nil
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if opts.Level != "" {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		if !opts.Verbose {
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}
	if opts.Format != "" && !opts.Verbose {
		config.Encoding = opts.Format
		if opts.Format == "console" {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		config.OutputPaths = []string{opts.File}
		if opts.Verbose {
			config.OutputPaths = append(config.OutputPaths, "stderr")
		}
	}

	return config.Build()
}
