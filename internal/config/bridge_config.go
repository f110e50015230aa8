package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"stt-bridge/internal/app/api/provider"
	"stt-bridge/internal/app/errors"
)

// BridgeConfig is the whole configuration of the bridge process.
type BridgeConfig struct {
	Engine        string              `yaml:"engine" validate:"required"`
	Model         ModelConfig         `yaml:"model"`
	Decode        DecodeConfig        `yaml:"decode"`
	WhisperCpp    WhisperCppConfig    `yaml:"whisper_cpp"`
	FasterWhisper FasterWhisperConfig `yaml:"faster_whisper"`
	Audio         AudioConfig         `yaml:"audio"`
	Log           LogConfig           `yaml:"log"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Bridge        BehaviorConfig      `yaml:"bridge"`
}

// ModelConfig is the fixed configuration the model is loaded with.
type ModelConfig struct {
	Size        string `yaml:"size" validate:"required,oneof=tiny tiny.en base base.en small small.en medium medium.en large-v1 large-v2 large-v3"`
	Device      string `yaml:"device" validate:"required,oneof=cpu cuda auto"`
	ComputeType string `yaml:"compute_type" validate:"required,oneof=int8 int8_float16 int5 float16 float32"`
}

// DecodeConfig holds the per-request search parameters.
type DecodeConfig struct {
	BeamSize int    `yaml:"beam_size" validate:"min=1,max=16"`
	Language string `yaml:"language" validate:"required,min=2,max=8"`
}

type WhisperCppConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	ModelDir   string `yaml:"model_dir"`
	Threads    int    `yaml:"threads" validate:"min=0,max=256"`
}

type FasterWhisperConfig struct {
	Python         string `yaml:"python"`
	DownloadRoot   string `yaml:"download_root"`
	LoadTimeoutSec int    `yaml:"load_timeout_sec" validate:"min=0"`
}

type AudioConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
	TempDir string `yaml:"temp_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
	File   string `yaml:"file"`
	// Verbose is set from the command line only.
	Verbose bool `yaml:"-"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// BehaviorConfig toggles optional bridge behavior. Both are off by default,
// which keeps the plain line protocol.
type BehaviorConfig struct {
	ReportSkipped   bool `yaml:"report_skipped"`
	RemoveProcessed bool `yaml:"remove_processed"`
}

// DefaultBridgeConfig returns the built-in configuration.
func DefaultBridgeConfig() *BridgeConfig {
	return &BridgeConfig{
		Engine: DefaultEngine,
		Model: ModelConfig{
			Size:        DefaultModelSize,
			Device:      DefaultDevice,
			ComputeType: DefaultComputeType,
		},
		Decode: DecodeConfig{
			BeamSize: DefaultBeamSize,
			Language: DefaultLanguage,
		},
		WhisperCpp: WhisperCppConfig{
			BinaryPath: DefaultWhisperCppBinary,
			ModelDir:   DefaultWhisperModelDir,
		},
		FasterWhisper: FasterWhisperConfig{
			Python:         DefaultPython,
			LoadTimeoutSec: int(DefaultHelperLoadTimeout.Seconds()),
		},
		Audio: AudioConfig{
			FFmpeg:  DefaultFFmpeg,
			FFprobe: DefaultFFprobe,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// ResolveConfigPath returns the explicit path, or DefaultConfigFile when it
// exists in the working directory, or "" for built-in defaults only.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return os.ExpandEnv(explicit)
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// LoadBridgeConfig builds the configuration: defaults, then the YAML file at
// configPath (if any), then environment overrides. The result is validated.
func LoadBridgeConfig(configPath string) (*BridgeConfig, error) {
	config := DefaultBridgeConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.ErrInvalidConfig.WithCause(fmt.Errorf("failed to read config file: %w", err))
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(config); err != nil && err != io.EOF {
			return nil, errors.ErrInvalidConfig.WithCause(fmt.Errorf("failed to parse %s: %w", configPath, err))
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *BridgeConfig) ApplyEnv() error {
	c.Engine = getEnvOrDefault("STTBRIDGE_ENGINE", c.Engine)
	c.Model.Size = getEnvOrDefault("STTBRIDGE_MODEL_SIZE", c.Model.Size)
	c.Model.Device = getEnvOrDefault("STTBRIDGE_DEVICE", c.Model.Device)
	c.Model.ComputeType = getEnvOrDefault("STTBRIDGE_COMPUTE_TYPE", c.Model.ComputeType)
	c.Decode.Language = getEnvOrDefault("STTBRIDGE_LANGUAGE", c.Decode.Language)
	c.WhisperCpp.BinaryPath = getEnvOrDefault("WHISPER_CPP_BINARY", c.WhisperCpp.BinaryPath)
	c.WhisperCpp.ModelPath = getEnvOrDefault("WHISPER_CPP_MODEL", c.WhisperCpp.ModelPath)
	c.WhisperCpp.ModelDir = getEnvOrDefault("WHISPER_CPP_MODEL_DIR", c.WhisperCpp.ModelDir)
	c.FasterWhisper.Python = getEnvOrDefault("FASTER_WHISPER_PYTHON", c.FasterWhisper.Python)
	c.Log.Level = getEnvOrDefault("STTBRIDGE_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnvOrDefault("STTBRIDGE_LOG_FILE", c.Log.File)
	c.Metrics.Textfile = getEnvOrDefault("STTBRIDGE_METRICS_FILE", c.Metrics.Textfile)

	if v := getEnvOrDefault("STTBRIDGE_BEAM_SIZE", ""); v != "" {
		beam, err := strconv.Atoi(v)
		if err != nil {
			return errors.ErrInvalidConfig.WithCause(fmt.Errorf("STTBRIDGE_BEAM_SIZE: %w", err))
		}
		c.Decode.BeamSize = beam
	}
	return nil
}

// LoadConfig returns what the engine registry needs to build the model.
// Every engine reads only the settings it knows.
func (c *BridgeConfig) LoadConfig() provider.LoadConfig {
	return provider.LoadConfig{
		Size:        c.Model.Size,
		Device:      c.Model.Device,
		ComputeType: c.Model.ComputeType,
		Settings: map[string]interface{}{
			"binary_path":      c.WhisperCpp.BinaryPath,
			"model_path":       c.WhisperCpp.ModelPath,
			"model_dir":        c.WhisperCpp.ModelDir,
			"threads":          c.WhisperCpp.Threads,
			"python":           c.FasterWhisper.Python,
			"download_root":    c.FasterWhisper.DownloadRoot,
			"load_timeout_sec": c.FasterWhisper.LoadTimeoutSec,
			"ffmpeg":           c.Audio.FFmpeg,
			"ffprobe":          c.Audio.FFprobe,
			"temp_dir":         c.Audio.TempDir,
		},
	}
}

// DecodeOptions returns the per-request search parameters.
func (c *BridgeConfig) DecodeOptions() provider.DecodeOptions {
	return provider.DecodeOptions{
		BeamSize: c.Decode.BeamSize,
		Language: c.Decode.Language,
	}
}
