package whisper_cpp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"stt-bridge/internal/app/api/provider"
	"stt-bridge/internal/app/audio"
	"stt-bridge/internal/app/errors"
)

const providerName = "whisper_cpp"

// quantSuffix maps a compute type to the ggml model file suffix.
var quantSuffix = map[string]string{
	provider.ComputeInt8:        "-q8_0",
	provider.ComputeInt8Float16: "-q8_0",
	provider.ComputeInt5:        "-q5_1",
	provider.ComputeFloat16:     "",
	provider.ComputeFloat32:     "",
}

// [00:00:00.000 --> 00:00:02.480]   text
var segmentLine = regexp.MustCompile(`^\[(\d+):(\d{2}):(\d{2})\.(\d{3}) --> (\d+):(\d{2}):(\d{2})\.(\d{3})\]\s?(.*)$`)

// LocalProviderConfig represents configuration specific to local whisper.cpp provider
type LocalProviderConfig struct {
	BinaryPath string
	ModelPath  string
	ModelDir   string
	Threads    int
	FFmpeg     string
	FFprobe    string
	TempDir    string
}

// LocalModel runs the whisper.cpp command line binary once per request.
// The model file is resolved and checked once, at load time.
type LocalModel struct {
	binaryPath string
	modelPath  string
	threads    int
	useGPU     bool
	config     provider.LoadConfig
	normalizer *audio.Normalizer
	logger     *zap.Logger
}

// ResolveModelPath returns <modelDir>/ggml-<size><suffix>.bin for the compute type.
func ResolveModelPath(modelDir, size, computeType string) (string, error) {
	suffix, ok := quantSuffix[computeType]
	if !ok {
		return "", fmt.Errorf("compute type %q has no ggml model variant", computeType)
	}
	return filepath.Join(modelDir, fmt.Sprintf("ggml-%s%s.bin", size, suffix)), nil
}

// NewLocalModel checks the binary and the model file and returns a ready model.
func NewLocalModel(cfg provider.LoadConfig, local LocalProviderConfig, logger *zap.Logger) (*LocalModel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	binaryPath, err := exec.LookPath(local.BinaryPath)
	if err != nil {
		return nil, errors.ErrModelLoad.WithCause(fmt.Errorf("whisper.cpp binary %q: %w", local.BinaryPath, err))
	}

	modelPath := local.ModelPath
	if modelPath == "" {
		modelPath, err = ResolveModelPath(local.ModelDir, cfg.Size, cfg.ComputeType)
		if err != nil {
			return nil, errors.ErrModelLoad.WithCause(err)
		}
	}
	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, errors.ErrModelLoad.WithCause(fmt.Errorf("whisper model: %w", err))
	}
	if info.IsDir() {
		return nil, errors.ErrModelLoad.WithCause(fmt.Errorf("whisper model %s is a directory", modelPath))
	}

	logger.Info("whisper.cpp model ready",
		zap.String("binary", binaryPath),
		zap.String("model", modelPath),
		zap.String("device", cfg.Device),
		zap.Int("threads", local.Threads))

	return &LocalModel{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		threads:    local.Threads,
		useGPU:     cfg.Device != provider.DeviceCPU,
		config:     cfg,
		normalizer: audio.NewNormalizer(local.FFmpeg, local.FFprobe, local.TempDir, logger),
		logger:     logger,
	}, nil
}

func (m *LocalModel) buildArgs(wavPath string, opts provider.DecodeOptions) []string {
	args := []string{
		"-m", m.modelPath,
		"-f", wavPath,
		"-l", opts.Language,
		"-bs", strconv.Itoa(opts.BeamSize),
		"-np",
	}
	if !m.useGPU {
		args = append(args, "-ng")
	}
	if m.threads > 0 {
		args = append(args, "-t", strconv.Itoa(m.threads))
	}
	return args
}

// Transcribe converts the input when needed, runs whisper.cpp and emits every
// segment line as the binary prints it.
func (m *LocalModel) Transcribe(ctx context.Context, path string, opts provider.DecodeOptions, emit provider.SegmentHandler) error {
	wavPath, cleanup, err := m.normalizer.Normalize(ctx, path)
	defer cleanup()
	if err != nil {
		return provider.NewTranscriptionError(providerName, "audio_conversion_error", err, "prepare %s", path)
	}

	args := m.buildArgs(wavPath, opts)
	command := exec.CommandContext(ctx, m.binaryPath, args...)
	var stderr bytes.Buffer
	command.Stderr = &stderr
	stdout, err := command.StdoutPipe()
	if err != nil {
		return provider.NewTranscriptionError(providerName, "command_start_error", err, "stdout pipe")
	}

	m.logger.Debug("running whisper.cpp", zap.String("command", m.binaryPath+" "+strings.Join(args, " ")))
	if err := command.Start(); err != nil {
		return provider.NewTranscriptionError(providerName, "command_start_error", err, "start %s", m.binaryPath)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		seg, ok := ParseSegmentLine(scanner.Text())
		if !ok {
			continue
		}
		if err := emit(seg); err != nil {
			_ = command.Process.Kill()
			_ = command.Wait()
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		// Nothing reads stdout any more; the binary would block on a full pipe.
		_ = command.Process.Kill()
		_ = command.Wait()
		return provider.NewTranscriptionError(providerName, "output_read_error", err, "read whisper.cpp output for %s", path)
	}

	if err := command.Wait(); err != nil {
		return provider.NewTranscriptionError(providerName, "transcription_failed", err,
			"whisper.cpp failed on %s (stderr: %s)", path, lastLine(stderr.String()))
	}
	return nil
}

// Info describes the loaded model.
func (m *LocalModel) Info() provider.ModelInfo {
	return provider.ModelInfo{
		Provider:  providerName,
		Type:      provider.ProviderTypeLocal,
		ModelPath: m.modelPath,
		Config:    m.config,
	}
}

// Close is a no-op: whisper.cpp runs per request.
func (m *LocalModel) Close() error {
	return nil
}

// ParseSegmentLine parses one timestamped line printed by whisper.cpp.
func ParseSegmentLine(line string) (provider.Segment, bool) {
	match := segmentLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if match == nil {
		return provider.Segment{}, false
	}
	return provider.Segment{
		Start: timestamp(match[1:5]),
		End:   timestamp(match[5:9]),
		Text:  strings.TrimSpace(match[9]),
	}, true
}

func timestamp(parts []string) float64 {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(parts[3])
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(ms)*time.Millisecond
	return d.Seconds()
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
