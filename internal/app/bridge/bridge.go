package bridge

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stt-bridge/internal/app/api/provider"
	"stt-bridge/internal/app/errors"
)

// Options toggles optional behavior on top of the plain line protocol.
type Options struct {
	// ReportSkipped writes "SKIP: <path>" for paths that are not regular files.
	ReportSkipped bool
	// RemoveProcessed deletes each input file after it has been processed.
	RemoveProcessed bool
}

// Bridge reads audio file paths line by line and streams the transcription of
// each file as text lines. One request is processed at a time.
type Bridge struct {
	model   provider.Model
	decode  provider.DecodeOptions
	out     *Output
	metrics *Metrics
	opts    Options
	logger  *zap.Logger
}

// NewBridge creates a bridge around an already loaded model.
func NewBridge(model provider.Model, decode provider.DecodeOptions, out *Output, metrics *Metrics, opts Options, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics("")
	}
	return &Bridge{
		model:   model,
		decode:  decode,
		out:     out,
		metrics: metrics,
		opts:    opts,
		logger:  logger,
	}
}

// Model returns the model the bridge transcribes with.
func (b *Bridge) Model() provider.Model {
	return b.model
}

// Run processes requests from in until it is exhausted or ctx is cancelled.
// Both are a normal end and return nil. Transcription failures are reported
// as diagnostics and never end the loop.
func (b *Bridge) Run(ctx context.Context, in io.Reader) error {
	lines, readErr := readLines(ctx, in)
	b.logger.Info("bridge ready", zap.String("engine", b.model.Info().Provider))

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bridge stopped", zap.Error(ctx.Err()))
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					b.out.Error(errors.Wrap(err, "failed to read input"))
					b.logger.Error("input read failed", zap.Error(err))
				default:
					b.logger.Info("input closed")
				}
				return nil
			}
			if ctx.Err() != nil {
				b.logger.Info("bridge stopped", zap.Error(ctx.Err()))
				return nil
			}
			b.Process(ctx, line)
		}
	}
}

// readLines moves lines from in to an unbuffered channel. A last line without
// a line break is still delivered. The channel is closed at end of input; a
// read error other than EOF is sent on the second channel first.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr <- err
				}
				return
			}
		}
	}()

	return lines, readErr
}

// Process handles one raw input line.
func (b *Bridge) Process(ctx context.Context, line string) {
	path := strings.TrimSpace(line)
	if path == "" {
		return
	}

	if !isFile(path) {
		b.metrics.ObserveSkip()
		b.logger.Debug("skipping path", zap.String("path", path))
		if b.opts.ReportSkipped {
			b.out.Skip(path)
		}
		return
	}

	interrupted := b.transcribe(ctx, path)

	// An interrupted request was never processed; its file stays for the caller.
	if b.opts.RemoveProcessed && !interrupted {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			b.logger.Warn("failed to remove processed file", zap.String("path", path), zap.Error(err))
		}
	}
}

// transcribe runs one request and reports whether shutdown interrupted it.
func (b *Bridge) transcribe(ctx context.Context, path string) bool {
	logger := b.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("path", path),
	)
	logger.Debug("transcribing")

	var segments int
	var audioEnd float64
	start := time.Now()
	err := b.model.Transcribe(ctx, path, b.decode, func(seg provider.Segment) error {
		if err := b.out.Segment(seg.Text); err != nil {
			return errors.Wrap(err, "failed to write segment")
		}
		segments++
		if seg.End > audioEnd {
			audioEnd = seg.End
		}
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		b.metrics.ObserveRequest(OutcomeFailed, segments, elapsed, 0)
		if ctx.Err() != nil {
			// Shutting down; the engine was killed on purpose.
			logger.Info("transcription interrupted", zap.Int("segments", segments), zap.Duration("elapsed", elapsed))
			return true
		}
		b.out.Error(err)
		logger.Warn("transcription failed",
			zap.Error(err),
			zap.Int("segments", segments),
			zap.Duration("elapsed", elapsed),
		)
		return false
	}

	b.metrics.ObserveRequest(OutcomeTranscribed, segments, elapsed, audioEnd)
	logger.Info("transcribed",
		zap.Int("segments", segments),
		zap.Float64("audio_seconds", audioEnd),
		zap.Duration("elapsed", elapsed),
	)
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
