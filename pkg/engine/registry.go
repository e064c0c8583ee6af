// Package engine provides the query engine registry and the database/sql
// plumbing shared by SQL-backed engines.
//
// Concrete engines live in pkg/engines/ subdirectories and register
// themselves from init().
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// Factory builds a Connector for an engine configuration.
type Factory func(cfg core.EngineConfig, logger *slog.Logger) core.Connector

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds an engine factory to the registry.
// Called by engine implementations in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves an engine factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// NewConnector creates a Connector for cfg.Type.
// The logger is passed to the engine (nil uses a discard logger).
func NewConnector(cfg core.EngineConfig, logger *slog.Logger) (core.Connector, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("engine type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownEngineError{
			Type:      cfg.Type,
			Available: ListEngines(),
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(cfg, logger), nil
}

// ListEngines returns all registered engine names (sorted).
func ListEngines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if an engine type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownEngineError is returned when an unknown engine type is requested.
type UnknownEngineError struct {
	Type      string
	Available []string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown engine type %q\nAvailable engines: %v\nHint: Check engine.type in leapview.yaml", e.Type, e.Available)
}
