package cli

import (
	"context"
	"fmt"
	"time"

	"spendview/internal/backend"
	"spendview/internal/category"
	"spendview/internal/config"
	"spendview/internal/dashboard"
	"spendview/internal/filter"
	"spendview/internal/format"
	"spendview/internal/loader"
	"spendview/internal/log"
)

// App is the dashboard core assembled from configuration.
type App struct {
	Config  *config.Config
	Backend *backend.BackendResult
	Loader  *loader.Loader
	Builder *dashboard.Builder
	Filter  *filter.Engine
}

// NewApp opens the configured backend and wires the loader and view builder
// around it. Close releases the backend.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	locale, err := format.LocaleFor(cfg.Locale)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	reg := category.New(category.DefaultPalette())
	ld := loader.New(res.Backend, res.Backend, reg, locale,
		loader.WithLogger(logger.WithComponent(log.ComponentLoader)),
		loader.WithFetchTimeout(2*cfg.SourceTimeout))

	return &App{
		Config:  cfg,
		Backend: res,
		Loader:  ld,
		Builder: &dashboard.Builder{
			Registry:  reg,
			Formatter: format.New(locale, cfg.CurrencySymbol),
			Budget:    cfg.Budget,
			Location:  loc,
		},
		Filter: filter.NewEngine(),
	}, nil
}

// Close releases backend resources.
func (a *App) Close() error {
	return a.Backend.Close()
}
