package provider

import (
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"stt-bridge/internal/app/errors"
)

// ProviderCreator is a function that loads a model from configuration
type ProviderCreator func(config LoadConfig, logger *zap.Logger) (Model, error)

// providerRegistry stores provider creation functions
var (
	providerRegistry = make(map[string]ProviderCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a provider creator function
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerRegistry[providerType]
	if !ok {
		return nil, errors.ErrProviderNotFound.WithCause(errors.Newf("provider type %q not registered", providerType))
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered provider types, sorted
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	providers := lo.Keys(providerRegistry)
	sort.Strings(providers)
	return providers
}

// Load looks up the creator for providerType and builds the model. It is
// the single load attempt the bridge makes at startup.
func Load(providerType string, config LoadConfig, logger *zap.Logger) (Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	creator, err := GetProviderCreator(providerType)
	if err != nil {
		return nil, err
	}
	model, err := creator(config, logger.Named(providerType))
	if err != nil {
		if errors.Is(err, errors.ErrModelLoad) {
			return nil, err
		}
		return nil, errors.ErrModelLoad.WithCause(errors.Wrapf(err, "%s (%s)", providerType, config))
	}
	return model, nil
}
