package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/fabrikgo/internal/ctxlog"
	"github.com/vk/fabrikgo/internal/loader"
	"github.com/vk/fabrikgo/internal/registry"
	"github.com/vk/fabrikgo/internal/store"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	persister *store.Memory
}

// NewApp is the constructor for the main application. It loads every
// definition file, finishes the registry's definition phase, and seals all
// factories, so the returned App is ready for the build phase. A failure to
// load or seal is a fatal startup error and panics; the entrypoint recovers
// it into a clean exit.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if err := loader.New(reg).LoadPath(ctx, cfg.FactoriesPath); err != nil {
		panic(fmt.Errorf("failed to load factory definitions: %w", err))
	}
	logger.Debug("Factory definitions loaded.")

	// Definition phase over; everything reachable from a build must be
	// sealed before concurrent reads are allowed.
	reg.Finish()
	if err := reg.SealAll(ctx); err != nil {
		panic(fmt.Errorf("failed to seal factories: %w", err))
	}
	logger.Debug("Registry finished and all factories sealed.")

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		persister: store.NewMemory(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
