package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// DefaultDriver is the driver used when none is configured.
const DefaultDriver = "native"

// Config is passed to drivers when an engine is created.
type Config struct {
	// LibraryPaths are extra directories searched for a foreign engine library.
	LibraryPaths []string
	// Compression names the codec for newly written records ("none" stores raw).
	Compression string
	// Logger receives engine diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Driver creates an engine.
type Driver func(cfg Config) (Engine, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available by name. It panics if called twice
// for the same name.
func Register(name string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		panic("engine: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("engine: Register called twice for driver " + name)
	}
	drivers[name] = d
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// New creates an engine from the named driver.
func New(name string, cfg Config) (Engine, error) {
	if name == "" {
		name = DefaultDriver
	}
	driversMu.RLock()
	d, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, &ConfigError{
			Driver: name,
			Err:    fmt.Errorf("unknown driver (registered: %v)", Drivers()),
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	e, err := d(cfg)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &ConfigError{Driver: name, Err: err}
	}
	return e, nil
}
