// Package config loads dormctl's configuration from dorm.yml and the
// environment, following the same defaults-then-file-then-env layering
// as internal/cli/config/config.go's Load.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is dormctl's runtime configuration.
type Config struct {
	Sink  SinkConfig  `mapstructure:"sink"`
	Cache CacheConfig `mapstructure:"cache"`
}

// SinkConfig selects and configures the physical store dormctl talks to.
type SinkConfig struct {
	Driver string `mapstructure:"driver"` // "postgres" or "sqlite"
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
}

// CacheConfig configures the compiled-statement cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// Load reads dorm.yml (or dorm.yaml) from the current directory, layers
// environment variables over it, and validates the result.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("sink.driver", "postgres")
	v.SetDefault("sink.dsn", "")
	v.SetDefault("sink.schema", "public")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.ttl", time.Hour)

	v.SetConfigName("dorm")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading dorm.yml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Sink.Driver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: sink.driver must be \"postgres\" or \"sqlite\", got %q", cfg.Sink.Driver)
	}
	return nil
}
