package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/diarkit/diarkit/logger"
)

// Factory creates a Store from configuration.
type Factory func(ctx context.Context, cfg Config, log *logger.Logger) (Store, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a store backend factory for the given provider name.
// Implementation packages call this (typically in an init function) to make
// themselves available to New.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers returns the sorted names of all registered providers.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the Store selected by cfg.Provider.
// The s3 provider is only available when github.com/diarkit/diarkit/store/s3
// has been imported.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: unsupported provider %q (not registered; available: %s)",
			cfg.Provider, strings.Join(Providers(), ", "))
	}

	l := log.WithComponent("store")
	l.Debug("initializing model store", logger.Fields("provider", cfg.Provider))
	return f(ctx, cfg, l)
}
