package app

import (
	"io"
	"time"

	"go.uber.org/zap"

	"stt-bridge/internal/app/api/provider"
	"stt-bridge/internal/app/bridge"
	"stt-bridge/internal/app/logging"
	"stt-bridge/internal/config"

	// Engines register themselves with the provider registry.
	_ "stt-bridge/internal/app/api/faster_whisper"
	_ "stt-bridge/internal/app/api/whisper_cpp"
)

// Streams are the caller-facing result and diagnostic streams.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

func provideLogger(cfg *config.BridgeConfig) (*zap.Logger, func(), error) {
	logger, err := logging.NewLogger(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Verbose: cfg.Log.Verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideMetrics(cfg *config.BridgeConfig, logger *zap.Logger) (*bridge.Metrics, func()) {
	metrics := bridge.NewMetrics(cfg.Metrics.Textfile)
	return metrics, func() {
		if err := metrics.WriteTextfile(); err != nil {
			logger.Warn("failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}
}

// provideModel performs the single model load of the process.
func provideModel(cfg *config.BridgeConfig, logger *zap.Logger, metrics *bridge.Metrics) (provider.Model, func(), error) {
	loadConfig := cfg.LoadConfig()
	logger.Info("loading model", zap.String("engine", cfg.Engine), zap.String("config", loadConfig.String()))

	start := time.Now()
	model, err := provider.Load(cfg.Engine, loadConfig, logger)
	if err != nil {
		logger.Error("model load failed", zap.Error(err))
		return nil, nil, err
	}
	elapsed := time.Since(start)
	metrics.SetModelLoadDuration(elapsed)
	logger.Info("model loaded", zap.String("model", model.Info().ModelPath), zap.Duration("elapsed", elapsed))

	return model, func() {
		if err := model.Close(); err != nil {
			logger.Warn("failed to close model", zap.Error(err))
		}
	}, nil
}

func provideDecodeOptions(cfg *config.BridgeConfig) provider.DecodeOptions {
	return cfg.DecodeOptions()
}

func provideBridgeOptions(cfg *config.BridgeConfig) bridge.Options {
	return bridge.Options{
		ReportSkipped:   cfg.Bridge.ReportSkipped,
		RemoveProcessed: cfg.Bridge.RemoveProcessed,
	}
}

func provideOutput(streams Streams) *bridge.Output {
	return bridge.NewOutput(streams.Stdout, streams.Stderr)
}
