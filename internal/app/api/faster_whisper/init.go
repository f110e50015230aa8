package faster_whisper

import (
	"time"

	"go.uber.org/zap"

	"stt-bridge/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createFasterWhisperProvider)
}

func createFasterWhisperProvider(config provider.LoadConfig, logger *zap.Logger) (provider.Model, error) {
	return NewHelperModel(config, HelperConfig{
		Python:       config.StringSetting("python", "python3"),
		DownloadRoot: config.StringSetting("download_root", ""),
		TempDir:      config.StringSetting("temp_dir", ""),
		LoadTimeout:  time.Duration(config.IntSetting("load_timeout_sec", 600)) * time.Second,
	}, logger)
}
