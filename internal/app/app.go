// Package app wires the catalog, the installer and the installed-sections
// source from one Config. Both binaries build their services here.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"section-hub/internal/catalog"
	"section-hub/internal/config"
	"section-hub/internal/installed"
	"section-hub/internal/installer"
	"section-hub/internal/shopify"
	"section-hub/internal/storage"
)

// Services holds everything a request handler or CLI command needs.
type Services struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Installer *installer.Installer
	Installed installed.Source
	Transport string
}

// New builds the services. The shop transport and the installed source are
// chosen here, once. HTTPClient may be nil.
func New(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (*Services, error) {
	store := storage.NewJSONStore(cfg.Catalog.Root, logger)
	cat := catalog.New(store, logger)

	var (
		themes    installer.ThemeLister
		publisher installer.Publisher
	)
	if cfg.Shopify.Configured() {
		client, err := shopify.NewClient(shopify.Config{
			Shop:        cfg.Shopify.Shop,
			AccessToken: cfg.Shopify.AccessToken,
			APIVersion:  cfg.Shopify.APIVersion,
			BaseURL:     cfg.Shopify.BaseURL,
			Timeout:     cfg.Shopify.Timeout,
		}, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create shopify client: %w", err)
		}
		publisher, err = shopify.NewPublisher(cfg.Shopify.Transport, client)
		if err != nil {
			return nil, err
		}
		themes = client
		logger.Info("Shopify connection configured", "shop", cfg.Shopify.Shop, "transport", publisher.Name())
	} else {
		disabled := shopify.Disabled{}
		themes, publisher = disabled, disabled
		logger.Warn("No shop configured, installs will fail until shopify.shop is set")
	}

	return &Services{
		Config:    cfg,
		Catalog:   cat,
		Installer: installer.New(cat, themes, publisher, logger),
		Installed: installed.NewSource(cfg.Installed.APIURL, cat, httpClient, logger),
		Transport: publisher.Name(),
	}, nil
}
