package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Browse      BrowseConfig      `mapstructure:"browse"`
	Tokens      TokensConfig      `mapstructure:"tokens"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// APIConfig holds catalog API connection details
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AggregationConfig bounds multi-page walks
type AggregationConfig struct {
	PageSize int `mapstructure:"page_size"`
	MaxPages int `mapstructure:"max_pages"`
}

// BrowseConfig contains interactive listing settings
type BrowseConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// TokensConfig selects the request token sequencer. An empty RedisAddr
// uses an in-process counter.
type TokensConfig struct {
	RedisAddr string `mapstructure:"redis_addr"`
	RedisKey  string `mapstructure:"redis_key"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
