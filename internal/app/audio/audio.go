package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"stt-bridge/internal/app/errors"
	"stt-bridge/internal/app/model"
)

const (
	targetSampleRate = 16000
	targetCodec      = "pcm_s16le"
)

// Normalizer turns arbitrary audio into the 16kHz PCM WAV whisper.cpp reads,
// using the ffprobe and ffmpeg binaries.
type Normalizer struct {
	FFmpeg  string
	FFprobe string
	TempDir string
	logger  *zap.Logger
}

// NewNormalizer creates a Normalizer. Empty binary names fall back to the
// ones on PATH; an empty tempDir means os.TempDir().
func NewNormalizer(ffmpeg, ffprobe, tempDir string, logger *zap.Logger) *Normalizer {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		FFmpeg:  ffmpeg,
		FFprobe: ffprobe,
		TempDir: tempDir,
		logger:  logger,
	}
}

func (n *Normalizer) probe(ctx context.Context, filePath string) (*model.FFProbeOutput, error) {
	cmd := exec.CommandContext(ctx, n.FFprobe, "-v", "quiet", "-print_format", "json", "-show_streams", filePath)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", filePath, err)
	}

	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(output, &probeOutput); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return &probeOutput, nil
}

// Is16kHzWav reports whether the file already has a 16kHz s16le audio stream.
func (n *Normalizer) Is16kHzWav(ctx context.Context, filePath string) (bool, error) {
	probeOutput, err := n.probe(ctx, filePath)
	if err != nil {
		return false, err
	}

	for _, stream := range probeOutput.Streams {
		if stream.CodecType == "audio" && stream.CodecName == targetCodec && stream.SampleRate == targetSampleRate {
			return true, nil
		}
	}
	return false, nil
}

// Normalize returns a path whisper.cpp can read directly. When a conversion
// was needed the returned cleanup removes the temporary file; it is always
// safe to call.
func (n *Normalizer) Normalize(ctx context.Context, inputFilePath string) (string, func(), error) {
	noop := func() {}

	ok, err := n.Is16kHzWav(ctx, inputFilePath)
	if err != nil {
		return "", noop, errors.ErrAudioConversion.WithCause(err)
	}
	if ok {
		return inputFilePath, noop, nil
	}

	tmp, err := os.CreateTemp(n.TempDir, "sttbridge-*.wav")
	if err != nil {
		return "", noop, errors.ErrAudioConversion.WithCause(err)
	}
	outputWavPath := tmp.Name()
	tmp.Close()
	cleanup := func() {
		if err := os.Remove(outputWavPath); err != nil && !os.IsNotExist(err) {
			n.logger.Warn("remove converted audio", zap.String("path", outputWavPath), zap.Error(err))
		}
	}

	n.logger.Debug("converting to 16kHz wav", zap.String("input", inputFilePath), zap.String("output", outputWavPath))

	cmd := exec.CommandContext(ctx, n.FFmpeg,
		"-nostdin", "-y", "-loglevel", "error",
		"-i", inputFilePath,
		"-vn", "-acodec", targetCodec, "-ar", strconv.Itoa(targetSampleRate), "-ac", "1",
		outputWavPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cleanup()
		return "", noop, errors.ErrAudioConversion.WithCause(
			fmt.Errorf("ffmpeg: %v, stderr: %s", err, strings.TrimSpace(stderr.String())))
	}

	return outputWavPath, cleanup, nil
}
