// Package config loads the catalog client configuration from a YAML file,
// CATALOG_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sternrassler/movie-catalog-client/pkg/client"
	"github.com/Sternrassler/movie-catalog-client/pkg/logging"
	"github.com/Sternrassler/movie-catalog-client/pkg/pagination"
	"github.com/Sternrassler/movie-catalog-client/pkg/token"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. CATALOG_API_BASE_URL.
const EnvPrefix = "CATALOG"

// MaxPageSize is the largest page size the catalog backend accepts.
const MaxPageSize = 100

// Load loads the configuration. An explicit configPath must exist; without
// one, config.yaml is looked up in the standard locations and defaults are
// used when none is found. The result is not validated so that callers can
// apply command-line overrides first; call Validate afterwards.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".movie-catalog"))
		}
		v.AddConfigPath("/etc/movie-catalog/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	defaults := client.DefaultConfig("http://localhost:8000")
	v.SetDefault("api.base_url", defaults.BaseURL)
	v.SetDefault("api.user_agent", defaults.UserAgent)
	v.SetDefault("api.timeout", defaults.Timeout)

	aggregation := pagination.DefaultConfig()
	v.SetDefault("aggregation.page_size", aggregation.PageSize)
	v.SetDefault("aggregation.max_pages", aggregation.MaxPages)

	v.SetDefault("browse.page_size", 10)

	v.SetDefault("tokens.redis_addr", "")
	v.SetDefault("tokens.redis_key", token.DefaultRedisKey)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL (got %q)", c.API.BaseURL)
	}
	if c.API.UserAgent == "" {
		return fmt.Errorf("api.user_agent is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive (got %s)", c.API.Timeout)
	}

	if c.Aggregation.PageSize < 1 || c.Aggregation.PageSize > MaxPageSize {
		return fmt.Errorf("aggregation.page_size must be between 1 and %d (got %d)", MaxPageSize, c.Aggregation.PageSize)
	}
	if c.Aggregation.MaxPages < 1 {
		return fmt.Errorf("aggregation.max_pages must be >= 1 (got %d)", c.Aggregation.MaxPages)
	}
	if c.Browse.PageSize < 1 || c.Browse.PageSize > MaxPageSize {
		return fmt.Errorf("browse.page_size must be between 1 and %d (got %d)", MaxPageSize, c.Browse.PageSize)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("invalid logging format: %w", err)
	}

	return nil
}

// ClientConfig returns the HTTP client settings.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   c.API.BaseURL,
		UserAgent: c.API.UserAgent,
		Timeout:   c.API.Timeout,
	}
}

// PaginationConfig returns the aggregation bounds.
func (c *Config) PaginationConfig() pagination.Config {
	return pagination.Config{
		PageSize: c.Aggregation.PageSize,
		MaxPages: c.Aggregation.MaxPages,
	}
}

// LoggerConfig returns the logger settings. Values are assumed validated.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level, _ = logging.ParseLevel(c.Logging.Level)
	cfg.Format, _ = logging.ParseFormat(c.Logging.Format)
	return cfg
}
