// Package config loads Section Hub settings from defaults, an optional config
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every derived environment variable (SECTIONHUB_SERVER_PORT).
const EnvPrefix = "SECTIONHUB"

// Transports accepted for shopify.transport.
const (
	TransportUpsert = "upsert"
	TransportAsset  = "asset"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Shopify   ShopifyConfig   `mapstructure:"shopify"`
	Installed InstalledConfig `mapstructure:"installed"`
	Log       LogConfig       `mapstructure:"log"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// CatalogConfig points at the bundle folders.
type CatalogConfig struct {
	Root  string `mapstructure:"root"`
	Watch bool   `mapstructure:"watch"`
}

// ShopifyConfig holds the Admin API connection.
type ShopifyConfig struct {
	Shop        string        `mapstructure:"shop"`
	AccessToken string        `mapstructure:"access_token"`
	APIKey      string        `mapstructure:"api_key"`
	APIVersion  string        `mapstructure:"api_version"`
	BaseURL     string        `mapstructure:"base_url"`
	Transport   string        `mapstructure:"transport"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Configured reports whether enough is set to talk to a shop.
func (s ShopifyConfig) Configured() bool {
	return s.Shop != "" || s.BaseURL != ""
}

// InstalledConfig selects the installed-sections data source.
type InstalledConfig struct {
	APIURL string `mapstructure:"api_url"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AdminConfig holds settings of the admin pages.
type AdminConfig struct {
	CSRFSecure bool `mapstructure:"csrf_secure"`
}

// defaults are registered as strings so printed settings stay readable.
var defaults = map[string]any{
	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.request_timeout":  "60s",
	"server.shutdown_timeout": "15s",
	"catalog.root":            "app/sections",
	"catalog.watch":           false,
	"shopify.shop":            "",
	"shopify.access_token":    "",
	"shopify.api_key":         "",
	"shopify.api_version":     "2024-10",
	"shopify.base_url":        "",
	"shopify.transport":       TransportUpsert,
	"shopify.timeout":         "30s",
	"installed.api_url":       "",
	"log.level":               "info",
	"log.format":              "text",
	"admin.csrf_secure":       false,
}

// legacyEnv binds the environment names the app has always read.
var legacyEnv = map[string]string{
	"server.port":          "PORT",
	"server.host":          "HOST",
	"installed.api_url":    "SECTIONS_API_URL",
	"shopify.shop":         "SHOPIFY_SHOP",
	"shopify.access_token": "SHOPIFY_ACCESS_TOKEN",
	"shopify.api_key":      "SHOPIFY_API_KEY",
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		// The prefixed name wins over the legacy one.
		_ = v.BindEnv(key, prefixed, legacy)
	}
	return v
}

// Load reads the optional config file and decodes the result. With an empty
// configFile, sectionhub.{toml,yaml,json} in the working directory is used if present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("sectionhub")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return Decode(v)
}

// Decode unmarshals and validates the current settings of v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Catalog.Root) == "" {
		errs = append(errs, errors.New("catalog.root must not be empty"))
	}
	switch strings.ToLower(c.Shopify.Transport) {
	case TransportUpsert, TransportAsset:
	default:
		errs = append(errs, fmt.Errorf("shopify.transport must be %q or %q, got %q", TransportUpsert, TransportAsset, c.Shopify.Transport))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Watch calls onChange with the re-decoded config whenever the config file
// changes. Invalid edits are reported through onError and otherwise ignored.
// It does nothing when no config file is in use.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) bool {
	if v.ConfigFileUsed() == "" {
		return false
	}
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := Decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return true
}

// redactedKeys are masked by Settings.
var redactedKeys = map[string]bool{
	"access_token": true,
	"api_key":      true,
}

// Settings returns the effective settings as nested maps, with secrets masked.
func Settings(v *viper.Viper) map[string]any {
	all := v.AllSettings()
	redact(all)
	return all
}

func redact(m map[string]any) {
	for key, value := range m {
		switch typed := value.(type) {
		case map[string]any:
			redact(typed)
		case string:
			if redactedKeys[key] && typed != "" {
				m[key] = "********"
			}
		}
	}
}
