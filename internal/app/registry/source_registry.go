package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/source"
	"go.mongodb.org/mongo-driver/mongo"
)

// Resources carries shared connections a source factory may build on.
// Fields are nil when the corresponding backend is not configured.
type Resources struct {
	Mongo *mongo.Database
}

// SourceFactory creates a trigger source from the application config.
type SourceFactory func(cfg *configs.Config, res Resources) (source.EventSource, error)

var (
	sourceRegistry = make(map[string]SourceFactory)
	registryMutex  sync.RWMutex
)

// RegisterSourceFactory registers a trigger source factory under name.
// It should be called from an init() block.
func RegisterSourceFactory(name string, factory SourceFactory) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := sourceRegistry[name]; exists {
		return fmt.Errorf("source factory already registered: %s", name)
	}
	sourceRegistry[name] = factory
	return nil
}

func GetSourceFactory(name string) (SourceFactory, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	factory, exists := sourceRegistry[name]
	if !exists {
		return nil, fmt.Errorf("no source factory registered for name: %s", name)
	}
	return factory, nil
}

// SourceNames lists the registered source names in sorted order.
func SourceNames() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(sourceRegistry))
	for name := range sourceRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildSources instantiates every enabled source, in the order given.
func BuildSources(cfg *configs.Config, res Resources) ([]source.EventSource, error) {
	sources := make([]source.EventSource, 0, len(cfg.EnabledSources))
	for _, name := range cfg.EnabledSources {
		factory, err := GetSourceFactory(name)
		if err != nil {
			return nil, err
		}
		src, err := factory(cfg, res)
		if err != nil {
			return nil, fmt.Errorf("failed to create source %s: %w", name, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}
