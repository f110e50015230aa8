package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stt-bridge/internal/app/api/provider"
	"stt-bridge/internal/app/errors"
)

const testEngine = "cli_test_engine"

// textModel treats every line of the input file as one segment. Files that
// start with "CORRUPT" fail the way undecodable audio does.
type textModel struct {
	config provider.LoadConfig
}

func (m *textModel) Transcribe(ctx context.Context, path string, opts provider.DecodeOptions, emit provider.SegmentHandler) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(data)
	if strings.HasPrefix(content, "CORRUPT") {
		return provider.NewTranscriptionError(testEngine, "transcription_failed", nil, "%s: invalid data found when processing input", filepath.Base(path))
	}
	for i, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if err := emit(provider.Segment{Text: line, Start: float64(i), End: float64(i + 1)}); err != nil {
			return err
		}
	}
	return nil
}

func (m *textModel) Info() provider.ModelInfo {
	return provider.ModelInfo{Provider: testEngine, Type: provider.ProviderTypeLocal, ModelPath: "/models/test.bin", Config: m.config}
}

func (m *textModel) Close() error { return nil }

func init() {
	provider.RegisterProvider(testEngine, func(cfg provider.LoadConfig, logger *zap.Logger) (provider.Model, error) {
		if cfg.Size == "large-v3" {
			return nil, errors.New("model file ggml-large-v3.bin not found")
		}
		return &textModel{config: cfg}, nil
	})
}

// clearEnv keeps the host environment out of the configuration.
func clearEnv(t *testing.T) {
	for _, name := range []string{
		"STTBRIDGE_ENGINE", "STTBRIDGE_MODEL_SIZE", "STTBRIDGE_DEVICE", "STTBRIDGE_COMPUTE_TYPE",
		"STTBRIDGE_BEAM_SIZE", "STTBRIDGE_LANGUAGE", "STTBRIDGE_LOG_LEVEL", "STTBRIDGE_LOG_FILE",
		"STTBRIDGE_METRICS_FILE",
	} {
		t.Setenv(name, "")
	}
}

// recordingReader counts reads so tests can assert stdin was never touched.
type recordingReader struct {
	reads int
}

func (r *recordingReader) Read(p []byte) (int, error) {
	r.reads++
	return 0, os.ErrClosed
}

func writeAudio(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := run(args, strings.NewReader(stdin), stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func TestRootCommand_Scenario(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := writeAudio(t, dir, "a.wav", "hello\nworld")
	b := writeAudio(t, dir, "b.wav", "done")
	missing := filepath.Join(dir, "missing.wav")

	code, stdout, stderr := execute(t, a+"\n"+missing+"\n"+b+"\n", "--engine", testEngine)

	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\nworld\ndone\n", stdout)
	assert.Empty(t, stderr)
}

func TestRootCommand_CorruptFileContinues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	bad := writeAudio(t, dir, "bad.wav", "CORRUPT")
	next := writeAudio(t, dir, "next.wav", "still here")

	code, stdout, stderr := execute(t, bad+"\n"+next+"\n", "--engine", testEngine)

	assert.Equal(t, 0, code)
	assert.Equal(t, "still here\n", stdout)
	lines := strings.Split(strings.TrimSuffix(stderr, "\n"), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "ERROR: "))
	assert.Contains(t, lines[0], "bad.wav")
}

func TestRootCommand_EmptyInput(t *testing.T) {
	clearEnv(t)

	code, stdout, stderr := execute(t, "", "--engine", testEngine)

	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestRootCommand_StartupFailures(t *testing.T) {
	dir := t.TempDir()
	badConfig := writeAudio(t, dir, "bad.yaml", "model:\n  size: enormous\n")
	largeConfig := writeAudio(t, dir, "large.yaml", "engine: "+testEngine+"\nmodel:\n  size: large-v3\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown engine", []string{"--engine", "no_such_engine"}, "provider not found"},
		{"model load fails", []string{"--config", largeConfig}, "model load failed"},
		{"invalid config", []string{"--config", badConfig}, "invalid configuration"},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.yaml")}, "invalid configuration"},
		{"unknown flag", []string{"--bogus"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			stdin := &recordingReader{}
			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

			code := run(tt.args, stdin, stdout, stderr)

			assert.Equal(t, 1, code)
			assert.Zero(t, stdin.reads, "input must not be read after a startup failure")
			assert.Empty(t, stdout.String())
			assert.True(t, strings.HasPrefix(stderr.String(), "ERROR: "), stderr.String())
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestRootCommand_ReportSkipped(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "gone.webm")

	code, stdout, stderr := execute(t, missing+"\n", "--engine", testEngine, "--report-skipped")

	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "SKIP: "+missing+"\n", stderr)
}

func TestRootCommand_RemoveProcessed(t *testing.T) {
	clearEnv(t)
	chunk := writeAudio(t, t.TempDir(), "chunk-1.webm", "annyeong")

	code, stdout, _ := execute(t, chunk+"\n", "--engine", testEngine, "--remove-processed")

	assert.Equal(t, 0, code)
	assert.Equal(t, "annyeong\n", stdout)
	assert.NoFileExists(t, chunk)
}

func TestTranscribeCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := writeAudio(t, dir, "a.wav", "first")
	b := writeAudio(t, dir, "b.wav", "second\nthird")

	code, stdout, stderr := execute(t, "", "transcribe", "--engine", testEngine, a, b)

	assert.Equal(t, 0, code)
	assert.Equal(t, "first\nsecond\nthird\n", stdout)
	assert.Empty(t, stderr)

	code, _, stderr = execute(t, "", "transcribe", "--engine", testEngine)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ERROR: ")
}

func TestCheckCommand(t *testing.T) {
	clearEnv(t)

	code, stdout, stderr := execute(t, "", "check", "--engine", testEngine)
	assert.Equal(t, 0, code)
	assert.Equal(t, "engine=cli_test_engine type=local model=/models/test.bin size=tiny device=cpu compute_type=int8\n", stdout)
	assert.Empty(t, stderr)

	code, stdout, stderr = execute(t, "", "check", "--engine", "no_such_engine")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "ERROR: ")
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := execute(t, "", "version")

	assert.Equal(t, 0, code)
	assert.Equal(t, "v0.1.0\n", stdout)
}
