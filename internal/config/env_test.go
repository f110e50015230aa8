package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path, err := LoadEnv()
	require.NoError(t, err)
	assert.Empty(t, path, "no .env file present")

	content := "STTBRIDGE_ENV_TEST=from-file\nWHISPER_CPP_MODEL=/models/from-file.bin\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644))

	t.Setenv("WHISPER_CPP_MODEL", "/models/from-process.bin")
	os.Unsetenv("STTBRIDGE_ENV_TEST")
	t.Cleanup(func() { os.Unsetenv("STTBRIDGE_ENV_TEST") })

	path, err = LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ".env", path)
	assert.Equal(t, "from-file", os.Getenv("STTBRIDGE_ENV_TEST"))
	assert.Equal(t, "/models/from-process.bin", os.Getenv("WHISPER_CPP_MODEL"), "process environment wins")
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("STTBRIDGE_ENV_TEST_SET", "  value  ")
	t.Setenv("STTBRIDGE_ENV_TEST_BLANK", "   ")

	assert.Equal(t, "value", getEnvOrDefault("STTBRIDGE_ENV_TEST_SET", "def"))
	assert.Equal(t, "def", getEnvOrDefault("STTBRIDGE_ENV_TEST_BLANK", "def"))
	assert.Equal(t, "def", getEnvOrDefault("STTBRIDGE_ENV_TEST_UNSET_XYZ", "def"))
}
