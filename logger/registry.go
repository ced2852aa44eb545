package logger

import (
	"sync"
)

var registry = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Get returns the logger registered under name, or a component logger derived
// from the global logger.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterComponents replaces the registered loggers for names with fresh
// component loggers of the current global logger. Call it after Init.
func RegisterComponents(names ...string) {
	g := GetGlobalLogger()
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for _, name := range names {
		registry.loggers[name] = g.WithComponent(name)
	}
}
