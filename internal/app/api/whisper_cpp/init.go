package whisper_cpp

import (
	"go.uber.org/zap"

	"stt-bridge/internal/app/api/provider"
)

func init() {
	// Register whisper_cpp provider with the factory
	provider.RegisterProvider(providerName, createWhisperCppProvider)
}

// createWhisperCppProvider creates a whisper.cpp model from configuration
func createWhisperCppProvider(config provider.LoadConfig, logger *zap.Logger) (provider.Model, error) {
	local := LocalProviderConfig{
		BinaryPath: config.StringSetting("binary_path", "whisper-cli"),
		ModelPath:  config.StringSetting("model_path", ""),
		ModelDir:   config.StringSetting("model_dir", "models"),
		Threads:    config.IntSetting("threads", 0),
		FFmpeg:     config.StringSetting("ffmpeg", "ffmpeg"),
		FFprobe:    config.StringSetting("ffprobe", "ffprobe"),
		TempDir:    config.StringSetting("temp_dir", ""),
	}
	return NewLocalModel(config, local, logger)
}
