//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"stt-bridge/internal/app/bridge"
	"stt-bridge/internal/config"
)

var bridgeSet = wire.NewSet(
	provideLogger,
	provideMetrics,
	provideModel,
	provideDecodeOptions,
	provideBridgeOptions,
	provideOutput,
	bridge.NewBridge,
)

// InitializeBridge loads the model and assembles the bridge. The cleanup
// closes the model, writes the metrics textfile and syncs the logger.
func InitializeBridge(cfg *config.BridgeConfig, streams Streams) (*bridge.Bridge, func(), error) {
	wire.Build(bridgeSet)
	return nil, nil, nil
}
