// Package config loads ogrelay settings from defaults, an optional YAML file
// and OGRELAY_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ka2n/ogrelay/api"
	"github.com/ka2n/ogrelay/api/cache"
	"github.com/ka2n/ogrelay/api/metadata"
	"github.com/ka2n/ogrelay/api/relay"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/viper"
)

// ErrorCode defines error types for configuration loading
type ErrorCode string

const (
	// ErrInvalidConfig represents a configuration that failed to load or validate
	ErrInvalidConfig ErrorCode = "InvalidConfig"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Config holds all configuration for ogrelay
type Config struct {
	Relays  []RelayConfig       `mapstructure:"relays" validate:"min=1,dive"`
	Fetch   FetchConfig         `mapstructure:"fetch"`
	Cache   CacheConfig         `mapstructure:"cache"`
	Preview api.PreviewSettings `mapstructure:"preview"`
}

// RelayConfig describes one relay endpoint
type RelayConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Template string `mapstructure:"template" validate:"required,url"`
	Format   string `mapstructure:"format" validate:"omitempty,oneof=raw envelope json"`
}

// FetchConfig holds relay request options
type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"gte=0"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	Parser        string        `mapstructure:"parser" validate:"omitempty,oneof=pattern document"`
	Coalesce      bool          `mapstructure:"coalesce"`
}

// CacheConfig holds metadata cache options
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl" validate:"gt=0"`
	MaxEntries int           `mapstructure:"max_entries" validate:"gt=0"`
}

var validate = validator.New()

// Default returns the built-in configuration
func Default() Config {
	relays := make([]RelayConfig, 0, len(relay.DefaultEndpoints))
	for _, ep := range relay.DefaultEndpoints {
		relays = append(relays, RelayConfig{Name: ep.Name, Template: ep.Template, Format: ep.Format.String()})
	}
	return Config{
		Relays: relays,
		Fetch: FetchConfig{
			Timeout:       api.DefaultFetchConfig.Timeout,
			RetryAttempts: api.DefaultFetchConfig.RetryAttempts,
			RetryDelay:    api.DefaultFetchConfig.RetryDelay,
			Parser:        "pattern",
		},
		Cache: CacheConfig{
			TTL:        cache.DefaultTTL,
			MaxEntries: cache.DefaultMaxEntries,
		},
		Preview: api.DefaultPreviewSettings,
	}
}

// Load reads configuration. When path is empty, ogrelay.yaml is searched in
// the current directory, $HOME and the user config directory; a missing file
// is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	relays := make([]map[string]any, 0, len(def.Relays))
	for _, r := range def.Relays {
		relays = append(relays, map[string]any{"name": r.Name, "template": r.Template, "format": r.Format})
	}
	v.SetDefault("relays", relays)
	v.SetDefault("fetch.timeout", def.Fetch.Timeout)
	v.SetDefault("fetch.retry_attempts", def.Fetch.RetryAttempts)
	v.SetDefault("fetch.retry_delay", def.Fetch.RetryDelay)
	v.SetDefault("fetch.parser", def.Fetch.Parser)
	v.SetDefault("fetch.coalesce", def.Fetch.Coalesce)
	v.SetDefault("cache.ttl", def.Cache.TTL)
	v.SetDefault("cache.max_entries", def.Cache.MaxEntries)
	v.SetDefault("preview.enabled", def.Preview.Enabled)
	v.SetDefault("preview.show_in_preview", def.Preview.ShowInPreview)
	v.SetDefault("preview.max_images_per_page", def.Preview.MaxImagesPerPage)
	v.SetDefault("preview.cache_enabled", def.Preview.CacheEnabled)

	v.SetEnvPrefix("OGRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, failure.Wrap(err, failure.WithCode(ErrInvalidConfig),
				failure.Message("Failed to read config file"),
				failure.Context{"path": path})
		}
	} else {
		v.SetConfigName("ogrelay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "ogrelay"))
		}
		// Config file is optional; ignore error to use defaults
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, failure.Wrap(err, failure.WithCode(ErrInvalidConfig),
			failure.Message("Failed to decode configuration"))
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, failure.Wrap(err, failure.WithCode(ErrInvalidConfig),
			failure.Message("Invalid configuration"))
	}

	return &cfg, nil
}

// Registry builds the relay registry
func (c *Config) Registry() (*relay.Registry, error) {
	eps := make([]relay.Endpoint, 0, len(c.Relays))
	for _, r := range c.Relays {
		format, err := relay.ParseFormat(r.Format)
		if err != nil {
			return nil, failure.Wrap(err, failure.WithCode(ErrInvalidConfig),
				failure.Context{"relay": r.Name})
		}
		eps = append(eps, relay.Endpoint{Name: r.Name, Template: r.Template, Format: format})
	}
	return relay.New(eps...), nil
}

// NewFetcher composes a Fetcher from the configuration
func (c *Config) NewFetcher(opts ...api.FetcherOption) (*api.Fetcher, error) {
	registry, err := c.Registry()
	if err != nil {
		return nil, err
	}

	base := []api.FetcherOption{
		api.WithRegistry(registry),
		api.WithFetchConfig(api.FetchConfig{
			Timeout:       c.Fetch.Timeout,
			RetryAttempts: c.Fetch.RetryAttempts,
			RetryDelay:    c.Fetch.RetryDelay,
		}),
		api.WithParser(metadata.ParserByName(c.Fetch.Parser)),
		api.WithCache(cache.New[metadata.Metadata](
			cache.WithTTL(c.Cache.TTL),
			cache.WithMaxEntries(c.Cache.MaxEntries),
		)),
	}
	if c.Fetch.Coalesce {
		base = append(base, api.WithCoalescing())
	}

	return api.NewFetcher(append(base, opts...)...), nil
}
