package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/fabrikgo/internal/ctxlog"
	"github.com/vk/fabrikgo/internal/factory"
	"github.com/vk/fabrikgo/internal/strategy"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if cfg.FactoryName == "" {
		return a.listFactories()
	}

	f, err := a.registry.FactoryByName(cfg.FactoryName)
	if err != nil {
		return err
	}

	tag := f.DefaultStrategy()
	if cfg.Strategy != "" {
		tag, err = strategy.ParseTag(cfg.Strategy)
		if err != nil {
			return err
		}
	}

	overrides := make(factory.Overrides, len(cfg.Overrides))
	for key, val := range cfg.Overrides {
		overrides[key] = val
	}

	a.logger.Info("Building objects.", "factory", f.Name(), "strategy", string(tag), "count", cfg.Count)

	enc := json.NewEncoder(a.outW)
	for i := 0; i < cfg.Count; i++ {
		result, err := f.RunStrategy(ctx, tag, a.persister, overrides)
		if err != nil {
			return fmt.Errorf("build %d of %q failed: %w", i+1, f.Name(), err)
		}
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}

	a.logger.Debug("App.Run method finished.", "persisted", a.persister.Len())
	return nil
}

// listFactories prints every loaded factory with its lookup names.
func (a *App) listFactories() error {
	factories := a.registry.Factories()
	if len(factories) == 0 {
		fmt.Fprintln(a.outW, "No factories loaded.")
		return nil
	}
	for _, f := range factories {
		fmt.Fprintf(a.outW, "%s (names: %v, strategy: %s)\n", f.Name(), f.Names(), f.DefaultStrategy())
	}
	return nil
}
