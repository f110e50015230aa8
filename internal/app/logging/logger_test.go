package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_DefaultIsNop(t *testing.T) {
	logger, err := NewLogger(Options{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel), "no sink configured, nothing should be enabled")
}

func TestNewLogger_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bridge.log")

	logger, err := NewLogger(Options{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("transcribed", zap.String("request_id", "abc"), zap.Int("segments", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug must be filtered at info level")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "transcribed", record["msg"])
	assert.Equal(t, "abc", record["request_id"])
	assert.EqualValues(t, 3, record["segments"])
}

func TestNewLogger_Levels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.log")

	logger, err := NewLogger(Options{Level: "warn", Format: "console", File: path})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = NewLogger(Options{Level: "chatty", File: path})
	assert.Error(t, err)
}

func TestNewLogger_Verbose(t *testing.T) {
	logger, err := NewLogger(Options{Verbose: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}
