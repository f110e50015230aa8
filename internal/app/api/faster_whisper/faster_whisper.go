package faster_whisper

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"stt-bridge/internal/app/api/provider"
	"stt-bridge/internal/app/errors"
)

const providerName = "faster_whisper"

//go:embed assets/bridge_helper.py
var helperScript []byte

// HelperConfig configures the Python process that hosts the model.
type HelperConfig struct {
	Python       string
	DownloadRoot string
	TempDir      string
	LoadTimeout  time.Duration
	CloseTimeout time.Duration
}

type helperRequest struct {
	Path     string `json:"path"`
	BeamSize int    `json:"beam_size"`
	Language string `json:"language"`
}

type helperEvent struct {
	Event   string  `json:"event"`
	Message string  `json:"message,omitempty"`
	Text    string  `json:"text,omitempty"`
	Start   float64 `json:"start,omitempty"`
	End     float64 `json:"end,omitempty"`
}

// HelperModel keeps a faster-whisper model loaded inside a long-running
// Python helper and talks to it with one JSON object per line.
type HelperModel struct {
	config       provider.LoadConfig
	scriptPath   string
	cmd          *exec.Cmd
	stdin        io.WriteCloser
	stdout       *os.File
	events       *bufio.Scanner
	stderr       *tailBuffer
	exited       chan struct{}
	waitErr      error
	dead         error
	closeTimeout time.Duration
	closeOnce    sync.Once
	logger       *zap.Logger
}

// NewHelperModel starts the helper and waits until it reports the model ready.
func NewHelperModel(cfg provider.LoadConfig, helper HelperConfig, logger *zap.Logger) (*HelperModel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if helper.LoadTimeout <= 0 {
		helper.LoadTimeout = 10 * time.Minute
	}
	if helper.CloseTimeout <= 0 {
		helper.CloseTimeout = 5 * time.Second
	}

	python, err := exec.LookPath(helper.Python)
	if err != nil {
		return nil, errors.ErrModelLoad.WithCause(fmt.Errorf("python interpreter %q: %w", helper.Python, err))
	}

	script, err := os.CreateTemp(helper.TempDir, "sttbridge-helper-*.py")
	if err != nil {
		return nil, errors.ErrModelLoad.WithCause(err)
	}
	scriptPath := script.Name()
	if _, err := script.Write(helperScript); err != nil {
		script.Close()
		os.Remove(scriptPath)
		return nil, errors.ErrModelLoad.WithCause(err)
	}
	script.Close()

	args := []string{scriptPath,
		"--model", cfg.Size,
		"--device", cfg.Device,
		"--compute-type", cfg.ComputeType,
	}
	if helper.DownloadRoot != "" {
		args = append(args, "--download-root", helper.DownloadRoot)
	}

	m := &HelperModel{
		config:       cfg,
		scriptPath:   scriptPath,
		stderr:       newTailBuffer(4096),
		exited:       make(chan struct{}),
		closeTimeout: helper.CloseTimeout,
		logger:       logger,
	}
	if err := m.start(python, args); err != nil {
		os.Remove(scriptPath)
		return nil, errors.ErrModelLoad.WithCause(err)
	}

	if err := m.awaitReady(helper.LoadTimeout); err != nil {
		m.Close()
		return nil, errors.ErrModelLoad.WithCause(err)
	}

	logger.Info("faster-whisper model ready",
		zap.String("python", python),
		zap.String("model", cfg.Size),
		zap.String("device", cfg.Device),
		zap.String("compute_type", cfg.ComputeType))
	return m, nil
}

func (m *HelperModel) start(python string, args []string) error {
	// An os.Pipe instead of StdoutPipe: Wait runs in the background and must
	// not close the read side. The scanner reaches EOF once the helper exits;
	// the read side is closed in Close.
	pr, pw, err := os.Pipe()
	if err != nil {
		return err
	}

	cmd := exec.Command(python, args...)
	cmd.Stdout = pw
	cmd.Stderr = m.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		pr.Close()
		pw.Close()
		return err
	}
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("start helper: %w", err)
	}
	pw.Close()

	m.cmd = cmd
	m.stdin = stdin
	m.stdout = pr
	m.events = bufio.NewScanner(pr)
	m.events.Buffer(make([]byte, 64*1024), 1024*1024)

	go func() {
		m.waitErr = cmd.Wait()
		close(m.exited)
	}()
	return nil
}

func (m *HelperModel) awaitReady(timeout time.Duration) error {
	type result struct {
		ev  helperEvent
		err error
	}
	ch := make(chan result, 1)
	go func() {
		ev, err := m.nextEvent()
		ch <- result{ev, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return r.err
		}
		switch r.ev.Event {
		case "ready":
			return nil
		case "error":
			return fmt.Errorf("helper: %s", r.ev.Message)
		default:
			return fmt.Errorf("helper: unexpected %q event before ready", r.ev.Event)
		}
	case <-time.After(timeout):
		m.kill()
		<-m.exited
		// Unblock the reader even if a grandchild still holds the pipe.
		m.stdout.Close()
		<-ch
		return fmt.Errorf("helper not ready after %s", timeout)
	}
}

// nextEvent returns the next JSON event, skipping any other output the
// helper's libraries print to stdout.
func (m *HelperModel) nextEvent() (helperEvent, error) {
	for m.events.Scan() {
		line := bytes.TrimSpace(m.events.Bytes())
		if len(line) == 0 || line[0] != '{' {
			m.logger.Debug("helper output", zap.ByteString("line", line))
			continue
		}
		var ev helperEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			m.logger.Debug("unparseable helper event", zap.ByteString("line", line), zap.Error(err))
			continue
		}
		return ev, nil
	}
	cause := m.events.Err()
	if cause != nil {
		// The stream is unusable; a helper left running would block on stdout.
		m.kill()
	}
	// Wait finishes copying stderr once the process is gone.
	select {
	case <-m.exited:
	case <-time.After(2 * time.Second):
		m.kill()
	}
	if tail := m.stderr.LastLine(); tail != "" {
		if cause != nil {
			cause = fmt.Errorf("%w (stderr: %s)", cause, tail)
		} else {
			cause = errors.New(tail)
		}
	}
	return helperEvent{}, errors.ErrHelperExited.WithCause(cause)
}

// Transcribe sends one request to the helper and relays its segment events.
func (m *HelperModel) Transcribe(ctx context.Context, path string, opts provider.DecodeOptions, emit provider.SegmentHandler) error {
	if m.dead != nil {
		return provider.NewTranscriptionError(providerName, "helper_exited", m.dead, "cannot transcribe %s", path)
	}

	stop := context.AfterFunc(ctx, m.kill)
	defer stop()

	req, err := json.Marshal(helperRequest{Path: path, BeamSize: opts.BeamSize, Language: opts.Language})
	if err != nil {
		return provider.NewTranscriptionError(providerName, "invalid_request", err, "encode request for %s", path)
	}
	if _, err := m.stdin.Write(append(req, '\n')); err != nil {
		m.dead = errors.ErrHelperExited.WithCause(err)
		m.kill()
		return provider.NewTranscriptionError(providerName, "helper_exited", m.dead, "send %s", path)
	}

	var emitErr error
	for {
		ev, err := m.nextEvent()
		if err != nil {
			m.dead = err
			return provider.NewTranscriptionError(providerName, "helper_exited", err, "transcribe %s", path)
		}
		switch ev.Event {
		case "segment":
			if emitErr != nil {
				continue
			}
			emitErr = emit(provider.Segment{Text: ev.Text, Start: ev.Start, End: ev.End})
		case "done":
			return emitErr
		case "error":
			if emitErr != nil {
				return emitErr
			}
			return provider.NewTranscriptionError(providerName, "transcription_failed", nil, "%s", ev.Message)
		default:
			m.logger.Debug("ignoring helper event", zap.String("event", ev.Event))
		}
	}
}

// Info describes the loaded model.
func (m *HelperModel) Info() provider.ModelInfo {
	return provider.ModelInfo{
		Provider: providerName,
		Type:     provider.ProviderTypeHybrid,
		Config:   m.config,
	}
}

// Close ends the helper: stdin is closed so it leaves its loop, and it is
// killed if it has not exited within the close timeout.
func (m *HelperModel) Close() error {
	m.closeOnce.Do(func() {
		m.stdin.Close()
		select {
		case <-m.exited:
		case <-time.After(m.closeTimeout):
			m.logger.Warn("helper did not exit, killing it")
			m.kill()
			<-m.exited
		}
		m.stdout.Close()
		m.logger.Debug("helper exited", zap.NamedError("wait", m.waitErr))
		if err := os.Remove(m.scriptPath); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("remove helper script", zap.String("path", m.scriptPath), zap.Error(err))
		}
	})
	return nil
}

func (m *HelperModel) kill() {
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

// LastLine returns the last non-empty line written.
func (t *tailBuffer) LastLine() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := strings.TrimSpace(string(t.buf))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
