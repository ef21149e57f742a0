package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"section-hub/internal/app"
	"section-hub/internal/catalog"
	"section-hub/internal/config"
	"section-hub/internal/installed"
	"section-hub/internal/installer"
	"section-hub/internal/logging"
	"section-hub/internal/templating"
	"section-hub/internal/watcher"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// application holds the dependencies shared by all handlers.
type application struct {
	logger         *slog.Logger
	catalog        *catalog.Catalog
	installer      *installer.Installer
	installed      installed.Source
	templates      *templating.Engine
	requestTimeout time.Duration
	csrfSecure     bool
}

func newApplication(services *app.Services, logger *slog.Logger) (*application, error) {
	templates, err := templating.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	return &application{
		logger:         logger,
		catalog:        services.Catalog,
		installer:      services.Installer,
		installed:      services.Installed,
		templates:      templates,
		requestTimeout: services.Config.Server.RequestTimeout,
		csrfSecure:     services.Config.Admin.CSRFSecure,
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sectionhub-server:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("sectionhub-server", pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "config file (default: ./sectionhub.{yaml,toml,json})")
	flags.Int("port", 0, "listen port (overrides server.port)")
	flags.String("root", "", "catalog directory (overrides catalog.root)")
	flags.Bool("watch", false, "watch the catalog directory and validate changed bundles")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := config.New()
	for key, name := range map[string]string{"server.port": "port", "catalog.root": "root", "catalog.watch": "watch"} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	cfg, err := config.Load(v, *configFile)
	if err != nil {
		return err
	}

	logger, levelVar, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if config.Watch(v, func(next *config.Config) {
		logging.SetLevel(levelVar, next.Log.Level)
		logger.Info("Config reloaded", "file", v.ConfigFileUsed(), "log_level", next.Log.Level)
	}, func(err error) {
		logger.Warn("Ignoring invalid config change", "error", err)
	}) {
		logger.Debug("Watching config file", "file", v.ConfigFileUsed())
	}

	services, err := app.New(cfg, nil, logger)
	if err != nil {
		return err
	}
	webApp, err := newApplication(services, logger)
	if err != nil {
		return err
	}
	logger.Info("Section catalog ready", "root", cfg.Catalog.Root, "sections", len(services.Catalog.All()))

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           webApp.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Catalog.Watch {
		w, err := watcher.New(cfg.Catalog.Root, webApp.onCatalogChange, watcher.WithLogger(logger))
		if err != nil {
			logger.Error("Failed to watch catalog, continuing without it", "root", cfg.Catalog.Root, "error", err)
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	return g.Wait()
}

// onCatalogChange logs bundle edits. The catalog re-reads on every request,
// so nothing is reloaded here; broken bundles are reported early instead.
func (app *application) onCatalogChange(ev watcher.Event) {
	if ev.Op == watcher.OpRemoved {
		app.logger.Info("Section bundle removed", "sectionID", ev.SectionID)
		return
	}
	if err := app.catalog.Validate(ev.SectionID); err != nil {
		app.logger.Warn("Section bundle is invalid", "sectionID", ev.SectionID, "error", err)
		return
	}
	app.logger.Info("Section bundle updated", "sectionID", ev.SectionID)
}
