package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

// Environment variables that override file values.
const (
	EnvPort    = "PRICEFINDER_PORT"
	EnvDBPath  = "PRICEFINDER_DB_PATH"
	EnvRateURL = "PRICEFINDER_RATE_URL"
)

// Renderer names accepted in [stores.<id>].
const (
	RendererHTTP   = "http"
	RendererChrome = "chrome"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig           `toml:"server"`
	Catalog  CatalogConfig          `toml:"catalog"`
	Stores   map[string]StoreConfig `toml:"stores"`
	Fetch    FetchConfig            `toml:"fetch"`
	Pricing  PricingConfig          `toml:"pricing"`
	Deck     DeckConfig             `toml:"deck"`
	Currency CurrencyConfig         `toml:"currency"`
	App      AppConfig              `toml:"app"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// CatalogConfig contains Scryfall client and lookup cache settings.
type CatalogConfig struct {
	BaseURL      string `toml:"base_url"`
	RateLimit    string `toml:"rate_limit"` // Minimum spacing between requests (e.g., "100ms")
	DBPath       string `toml:"db_path"`    // SQLite cache file
	CacheTTL     string `toml:"cache_ttl"`  // e.g. "24h"
	DisableCache bool   `toml:"disable_cache"`
}

// StoreConfig overrides one storefront.
type StoreConfig struct {
	BaseURL  string `toml:"base_url"`
	Renderer string `toml:"renderer"` // "http" or "chrome"
}

// FetchConfig contains page fetching settings shared by all stores.
type FetchConfig struct {
	Timeout    string `toml:"timeout"`     // Per-request timeout (e.g., "15s")
	ChromePath string `toml:"chrome_path"` // Empty uses chromedp's lookup
}

// PricingConfig contains the store retry policy.
type PricingConfig struct {
	MaxAttempts int     `toml:"max_attempts"`
	BaseDelay   string  `toml:"base_delay"`
	Multiplier  float64 `toml:"multiplier"`
}

// DeckConfig contains deck evaluation settings.
type DeckConfig struct {
	LineDelay         string `toml:"line_delay"` // Pause between deck lines
	IncludeBasicLands bool   `toml:"include_basic_lands"`
	ExcludeSpecial    bool   `toml:"exclude_special"`
}

// CurrencyConfig contains USD to CAD conversion settings.
type CurrencyConfig struct {
	RateURL      string  `toml:"rate_url"`
	FallbackRate float64 `toml:"fallback_rate"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool   `toml:"debug_mode"` // Enable debug logging
	LogFormat string `toml:"log_format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Catalog: CatalogConfig{
			BaseURL:   "https://api.scryfall.com",
			RateLimit: "100ms",
			DBPath:    defaultDBPath(),
			CacheTTL:  "24h",
		},
		Stores: map[string]StoreConfig{
			string(stores.FaceToFace):   {Renderer: RendererHTTP},
			string(stores.FourOhOne):    {Renderer: RendererHTTP},
			string(stores.WizardsTower): {Renderer: RendererHTTP},
		},
		Fetch: FetchConfig{
			Timeout: "15s",
		},
		Pricing: PricingConfig{
			MaxAttempts: 4,
			BaseDelay:   "500ms",
			Multiplier:  2,
		},
		Deck: DeckConfig{
			LineDelay: "1s",
		},
		Currency: CurrencyConfig{
			RateURL:      "https://open.er-api.com/v6/latest/USD",
			FallbackRate: 1.36,
		},
		App: AppConfig{
			LogFormat: "text",
		},
	}
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".mtg-price-finder")
}

func defaultDBPath() string {
	return filepath.Join(configDir(), "catalog.db")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// Load reads the configuration at path (DefaultPath when empty). A missing
// file yields the defaults. Zero values in the file fall back to defaults,
// and environment variables (also read from .env) override both.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	var config Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := mergo.Merge(&config, DefaultConfig()); err != nil {
		return nil, fmt.Errorf("merge default config: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Catalog.DBPath = v
	}
	if v := os.Getenv(EnvRateURL); v != "" {
		c.Currency.RateURL = v
	}
	return nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"catalog rate limit": c.Catalog.RateLimit,
		"catalog cache TTL":  c.Catalog.CacheTTL,
		"fetch timeout":      c.Fetch.Timeout,
		"retry base delay":   c.Pricing.BaseDelay,
		"deck line delay":    c.Deck.LineDelay,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Pricing.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1: %d", c.Pricing.MaxAttempts)
	}
	if c.Pricing.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be at least 1: %v", c.Pricing.Multiplier)
	}
	if c.Currency.FallbackRate <= 0 {
		return fmt.Errorf("fallback rate must be positive: %v", c.Currency.FallbackRate)
	}

	for name, sc := range c.Stores {
		if _, err := stores.ParseStoreID(name); err != nil {
			return fmt.Errorf("stores: %w", err)
		}
		switch sc.Renderer {
		case "", RendererHTTP, RendererChrome:
		default:
			return fmt.Errorf("store %s: unknown renderer %q", name, sc.Renderer)
		}
	}

	switch c.App.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.App.LogFormat)
	}
	return nil
}

// Addr returns the listen address of the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// RateLimit returns the catalog request spacing.
func (c *Config) RateLimit() time.Duration {
	return mustDuration(c.Catalog.RateLimit)
}

// CacheTTL returns the catalog cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return mustDuration(c.Catalog.CacheTTL)
}

// FetchTimeout returns the per-request store timeout.
func (c *Config) FetchTimeout() time.Duration {
	return mustDuration(c.Fetch.Timeout)
}

// LineDelay returns the pause between deck lines.
func (c *Config) LineDelay() time.Duration {
	return mustDuration(c.Deck.LineDelay)
}

// RetryPolicy returns the store retry policy.
func (c *Config) RetryPolicy() stores.RetryPolicy {
	policy := stores.DefaultRetryPolicy()
	policy.MaxAttempts = c.Pricing.MaxAttempts
	policy.BaseDelay = mustDuration(c.Pricing.BaseDelay)
	policy.Multiplier = c.Pricing.Multiplier
	return policy
}

// LogLevel returns the slog level implied by debug mode.
func (c *Config) LogLevel() slog.Level {
	if c.App.DebugMode {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// mustDuration parses a duration that Validate has already checked.
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
