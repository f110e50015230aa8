package app

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
	"stt-bridge/internal/app/testutil"
	"stt-bridge/internal/config"
)

var wireTestModel *testutil.MockModel

func init() {
	provider.RegisterProvider("wire_test_engine", func(cfg provider.LoadConfig, logger *zap.Logger) (provider.Model, error) {
		if cfg.Size == "large-v3" {
			return nil, errors.New("not enough memory for large-v3")
		}
		return wireTestModel, nil
	})
}

func TestInitializeBridge(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "a.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0644))

	wireTestModel = testutil.NewMockModel("wire_test_engine").WithSegments(audio, "hello")
	wireTestModel.ExpectTranscribe(audio).Return(nil)

	cfg := config.DefaultBridgeConfig()
	cfg.Engine = "wire_test_engine"
	cfg.Metrics.Textfile = filepath.Join(dir, "sttbridge.prom")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	b, cleanup, err := InitializeBridge(cfg, Streams{Stdout: stdout, Stderr: stderr})
	require.NoError(t, err)
	assert.Equal(t, "wire_test_engine", b.Model().Info().Provider)

	require.NoError(t, b.Run(context.Background(), strings.NewReader(audio+"\n")))
	cleanup()

	assert.Equal(t, "hello\n", stdout.String())
	assert.Empty(t, stderr.String())
	assert.Equal(t, 1, wireTestModel.CloseCount())

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sttbridge_requests_total{outcome="transcribed"} 1`)
	assert.Contains(t, string(data), "sttbridge_model_load_duration_seconds")
}

func TestInitializeBridge_LoadFailure(t *testing.T) {
	tests := []struct {
		name   string
		engine string
		size   string
		want   string
	}{
		{"unknown engine", "no_such_engine", "tiny", "provider not found"},
		{"creator fails", "wire_test_engine", "large-v3", "not enough memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultBridgeConfig()
			cfg.Engine = tt.engine
			cfg.Model.Size = tt.size

			b, cleanup, err := InitializeBridge(cfg, Streams{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
			require.Error(t, err)
			assert.Nil(t, b)
			assert.Nil(t, cleanup)
			assert.True(t, errors.IsFatal(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnginesAreRegistered(t *testing.T) {
	engines := provider.ListRegisteredProviders()
	assert.Contains(t, engines, "whisper_cpp")
	assert.Contains(t, engines, "faster_whisper")
}
