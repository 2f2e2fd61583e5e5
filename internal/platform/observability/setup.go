package observability

import (
	"context"
	"log/slog"
	"sync"
)

// Config toggles instrumentation output.
type Config struct {
	Enabled bool
}

// ShutdownFunc flushes instrumentation state on service stop.
type ShutdownFunc func(context.Context) error

var (
	mu           sync.RWMutex
	activeLogger *slog.Logger
	activeConfig Config
)

// Setup installs the instrumentation logger and returns a shutdown hook.
func Setup(_ context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	mu.Lock()
	if cfg.Enabled {
		activeLogger = logger
	} else {
		activeLogger = nil
	}
	activeConfig = cfg
	mu.Unlock()

	return func(context.Context) error {
		mu.Lock()
		activeLogger = nil
		activeConfig = Config{}
		mu.Unlock()
		return nil
	}, nil
}

func currentLogger() (*slog.Logger, Config) {
	mu.RLock()
	defer mu.RUnlock()
	return activeLogger, activeConfig
}
