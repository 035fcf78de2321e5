// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"arm-cost/internal/errors"
	"arm-cost/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. ARMCOST_CACHE_ENABLED
const EnvPrefix = "ARMCOST"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" mapstructure:"version" yaml:"version"`

	// Cache contains what-if cache configuration
	Cache CacheConfig `json:"cache" mapstructure:"cache" yaml:"cache"`

	// WhatIf contains control-plane preview configuration
	WhatIf WhatIfConfig `json:"whatif" mapstructure:"whatif" yaml:"whatif"`

	// Pricing contains retail pricing configuration
	Pricing PricingConfig `json:"pricing" mapstructure:"pricing" yaml:"pricing"`

	// Output contains output configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging" yaml:"logging"`

	// Telemetry contains tracing configuration
	Telemetry TelemetryConfig `json:"telemetry" mapstructure:"telemetry" yaml:"telemetry"`
}

// CacheConfig contains cache-related settings
type CacheConfig struct {
	// Enabled enables the what-if response cache
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Directory is the cache directory
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// WhatIfConfig contains settings for the preview long-running operation
type WhatIfConfig struct {
	// Endpoint is the management plane base URL
	Endpoint string `json:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`

	// APIVersion is the deployments API version
	APIVersion string `json:"api_version" mapstructure:"api_version" yaml:"api_version"`

	// DeploymentPrefix prefixes the generated deployment name
	DeploymentPrefix string `json:"deployment_prefix" mapstructure:"deployment_prefix" yaml:"deployment_prefix"`

	// TokenScope is the scope requested from the identity provider
	TokenScope string `json:"token_scope" mapstructure:"token_scope" yaml:"token_scope"`

	// TenantID pins the credential to one tenant; empty uses the default
	TenantID string `json:"tenant_id" mapstructure:"tenant_id" yaml:"tenant_id"`

	// MaxAttempts bounds the submission plus every poll
	MaxAttempts int `json:"max_attempts" mapstructure:"max_attempts" yaml:"max_attempts"`

	// DefaultRetryAfter is used when the server sends no Retry-After
	DefaultRetryAfter time.Duration `json:"default_retry_after" mapstructure:"default_retry_after" yaml:"default_retry_after"`

	// MaxRetryAfter caps a server-provided Retry-After
	MaxRetryAfter time.Duration `json:"max_retry_after" mapstructure:"max_retry_after" yaml:"max_retry_after"`

	// RequestTimeout bounds a single HTTP exchange
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout" yaml:"request_timeout"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Endpoint is the retail prices API URL
	Endpoint string `json:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`

	// Currency is passed to the catalog as currencyCode; empty keeps the catalog default
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// Concurrency bounds parallel catalog lookups
	Concurrency int `json:"concurrency" mapstructure:"concurrency" yaml:"concurrency"`

	// Attempts is how many times a failed lookup is tried
	Attempts int `json:"attempts" mapstructure:"attempts" yaml:"attempts"`

	// RetryDelay is the pause between lookup attempts
	RetryDelay time.Duration `json:"retry_delay" mapstructure:"retry_delay" yaml:"retry_delay"`

	// Timeout bounds a single catalog request
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" yaml:"timeout"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default output format (text, json, yaml)
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// TelemetryConfig contains tracing settings
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector URL; empty disables export
	Endpoint string `json:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	cacheDir := filepath.Join(homeDir, ".arm-cost", "cache")

	return &Config{
		Version: "1.0",
		Cache: CacheConfig{
			Enabled:   true,
			Directory: cacheDir,
		},
		WhatIf: WhatIfConfig{
			Endpoint:          "https://management.azure.com",
			APIVersion:        "2021-04-01",
			DeploymentPrefix:  "arm-cost",
			TokenScope:        "https://management.azure.com/.default",
			MaxAttempts:       5,
			DefaultRetryAfter: 15 * time.Second,
			MaxRetryAfter:     60 * time.Second,
			RequestTimeout:    100 * time.Second,
		},
		Pricing: PricingConfig{
			Endpoint:    "https://prices.azure.com/api/retail/prices",
			Concurrency: 4,
			Attempts:    2,
			RetryDelay:  time.Second,
			Timeout:     30 * time.Second,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate checks the values a run cannot work without
func (c *Config) Validate() error {
	if c.WhatIf.MaxAttempts < 1 {
		return errors.Newf(errors.TypeConfig, "whatif.max_attempts must be at least 1, got %d", c.WhatIf.MaxAttempts)
	}
	if c.WhatIf.Endpoint == "" {
		return errors.New(errors.TypeConfig, "whatif.endpoint is required")
	}
	if c.Pricing.Endpoint == "" {
		return errors.New(errors.TypeConfig, "pricing.endpoint is required")
	}
	if c.Pricing.Concurrency < 1 {
		return errors.Newf(errors.TypeConfig, "pricing.concurrency must be at least 1, got %d", c.Pricing.Concurrency)
	}
	if c.Pricing.Attempts < 1 {
		return errors.Newf(errors.TypeConfig, "pricing.attempts must be at least 1, got %d", c.Pricing.Attempts)
	}
	if c.Cache.Enabled && c.Cache.Directory == "" {
		return errors.New(errors.TypeConfig, "cache.directory is required when the cache is enabled")
	}
	return nil
}

// Load loads configuration from a file layered over the defaults, then
// applies ARMCOST_* environment overrides. An empty path falls back to
// $HOME/.arm-cost.yaml when it exists.
func Load(path string) (*Config, error) {
	v := viper.New()

	if err := setDefaults(v, Default()); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".arm-cost.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(errors.TypeConfig, err, "read config %s", path)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "decode config", err)
	}

	return config, nil
}

// setDefaults seeds viper with every key of cfg so environment overrides
// apply even when no file mentions the key.
func setDefaults(v *viper.Viper, cfg *Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Internal("encode default config", err)
	}

	var tree map[string]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return errors.Internal("decode default config", err)
	}

	for key, value := range tree {
		v.SetDefault(key, value)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
