package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"spendview/internal/cli"
	"spendview/internal/config"
	"spendview/internal/filter"
	"spendview/internal/log"
)

var version = "dev"

type rootOptions struct {
	envFile string
	backend string
	filters []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "spendview-report",
		Short:         "Terminal spending report",
		Long:          `Loads expenses from the configured backend and prints the dashboard totals, category split and budget.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading configuration")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "data backend (http, sqlite, sheets, memory); overrides DATA_BACKEND")
	cmd.PersistentFlags().StringArrayVarP(&opts.filters, "filter", "f", nil, "field=value constraint, repeatable")

	cmd.AddCommand(showCmd(opts))
	cmd.AddCommand(categoriesCmd(opts))
	cmd.AddCommand(notifyCmd(opts))
	return cmd
}

// loadConfig reads the environment, applies flag overrides and validates.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if err := cli.LoadEnvFile(o.envFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", o.envFile, err)
	}
	cfg := config.Load()
	if o.backend != "" {
		cfg.DataBackend = o.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) constraints() ([]filter.Constraint, error) {
	cs := make([]filter.Constraint, 0, len(o.filters))
	for _, s := range o.filters {
		c, err := filter.Parse(s)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}

// openApp loads config and performs the first load.
func (o *rootOptions) openApp(ctx context.Context) (*cli.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(log.ComponentReport)
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := app.Loader.Load(ctx); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return app, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
