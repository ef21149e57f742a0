package main

import (
	"fmt"
	"log/slog"

	"section-hub/internal/app"
	"section-hub/internal/config"
	"section-hub/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries the state shared by all subcommands. It is filled in by the
// root command's PersistentPreRunE.
type cli struct {
	configFile string

	v        *viper.Viper
	cfg      *config.Config
	logger   *slog.Logger
	services *app.Services
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:          "sectionhub",
		Short:        "Browse and install Section Hub sections",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "config file (default: ./sectionhub.{yaml,toml,json})")
	cmd.PersistentFlags().String("root", "", "catalog directory (overrides catalog.root)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		c.listCmd(),
		c.searchCmd(),
		c.categoriesCmd(),
		c.showCmd(),
		c.installCmd(),
		c.installedCmd(),
		c.newCmd(),
		c.validateCmd(),
		c.watchCmd(),
		c.configCmd(),
	)
	return cmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	c.v = config.New()
	// Terminal output goes to stdout; keep stderr quiet unless asked.
	c.v.SetDefault("log.level", "warn")
	flags := cmd.Root().PersistentFlags()
	if err := c.v.BindPFlag("catalog.root", flags.Lookup("root")); err != nil {
		return err
	}
	if err := c.v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
		return err
	}

	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	logger, _, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	services, err := app.New(cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	c.cfg, c.logger, c.services = cfg, logger, services
	return nil
}
