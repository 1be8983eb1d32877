package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// PublicURL is the externally reachable base of this service; the
	// processor calls back through it.
	PublicURL string `yaml:"public_url"`
}

type StoreConfig struct {
	SiteURL     string `yaml:"site_url"`
	CheckoutURL string `yaml:"checkout_url"`
	CartURL     string `yaml:"cart_url"`
	// ThankYouURL is a format string taking the order id.
	ThankYouURL string `yaml:"thankyou_url"`
	Locale      string `yaml:"locale"`
	Version     string `yaml:"version"` // store platform version, for User-Agent
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ModenaConfig struct {
	Environment            string `yaml:"environment"` // sandbox | live
	SandboxClientID        string `yaml:"sandbox_client_id"`
	SandboxClientSecret    string `yaml:"sandbox_client_secret"`
	LiveClientID           string `yaml:"live_client_id"`
	LiveClientSecret       string `yaml:"live_client_secret"`
	PaymentButtonMaxHeight int    `yaml:"payment_button_max_height"`
}

// Sandbox reports whether the sandbox environment is selected.
func (m ModenaConfig) Sandbox() bool {
	return m.Environment != "live"
}

// Credentials returns the client id/secret pair for the selected environment.
func (m ModenaConfig) Credentials() (string, string) {
	if m.Sandbox() {
		return m.SandboxClientID, m.SandboxClientSecret
	}
	return m.LiveClientID, m.LiveClientSecret
}

type GatewayConfig struct {
	Enabled bool `yaml:"enabled"`
}

type AuthConfig struct {
	// Secret signs the merchant API tokens guarding the initiate endpoint.
	Secret string `yaml:"secret"`
}

type Config struct {
	Log      LogConfig                `yaml:"log"`
	Server   ServerConfig             `yaml:"server"`
	Store    StoreConfig              `yaml:"store"`
	Database DatabaseConfig           `yaml:"database"`
	Redis    RedisConfig              `yaml:"redis"`
	Modena   ModenaConfig             `yaml:"modena"`
	Gateways map[string]GatewayConfig `yaml:"gateways"`
	Auth     AuthConfig               `yaml:"auth"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Modena.Environment == "" {
		cfg.Modena.Environment = "sandbox"
	}
	cfg.Modena.PaymentButtonMaxHeight = clampButtonHeight(cfg.Modena.PaymentButtonMaxHeight)
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	site := strings.TrimRight(cfg.Store.SiteURL, "/")
	cfg.Store.SiteURL = site
	if cfg.Store.CheckoutURL == "" && site != "" {
		cfg.Store.CheckoutURL = site + "/checkout"
	}
	if cfg.Store.CartURL == "" && site != "" {
		cfg.Store.CartURL = site + "/cart"
	}
	if cfg.Store.ThankYouURL == "" && site != "" {
		cfg.Store.ThankYouURL = site + "/checkout/order-received/%d"
	}
	if cfg.Store.Locale == "" {
		cfg.Store.Locale = "et_EE"
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	// Minimal validation
	if cfg.Store.SiteURL == "" {
		return nil, errors.New("store.site_url is required")
	}
	if cfg.Server.PublicURL == "" {
		return nil, errors.New("server.public_url is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Modena.Environment != "sandbox" && cfg.Modena.Environment != "live" {
		return nil, fmt.Errorf("modena.environment must be sandbox or live, got %q", cfg.Modena.Environment)
	}
	if id, secret := cfg.Modena.Credentials(); id == "" || secret == "" {
		return nil, fmt.Errorf("modena client credentials for %s environment are required", cfg.Modena.Environment)
	}
	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth.secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// clampButtonHeight keeps the payment button logo height in the 24-30px range
// the checkout layout supports. Zero means unset and takes the default.
func clampButtonHeight(h int) int {
	if h == 0 {
		return 30
	}
	if h < 24 {
		return 24
	}
	if h > 30 {
		return 30
	}
	return h
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
