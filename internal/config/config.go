package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Logger LoggerConfig `mapstructure:"logger"`
	API    APIConfig    `mapstructure:"api"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Loader LoaderConfig `mapstructure:"loader"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// APIConfig holds configuration for the upstream Pokemon API.
// ScenarioFixture, when set, swaps the live client for the scripted one so
// the service can run against a deterministic fixture.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	ScenarioFixture string        `mapstructure:"scenario_fixture"`
}

// CacheConfig holds settings for the cache store.
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	Backend         string        `mapstructure:"backend"` // "sqlite" or "memory"
	SQLitePath      string        `mapstructure:"sqlite_path"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// LoaderConfig holds settings for the list-loading orchestrator.
type LoaderConfig struct {
	LoadCacheOnStart bool          `mapstructure:"load_cache_on_start"`
	KeepStaleOnError bool          `mapstructure:"keep_stale_on_error"`
	ExpectedCount    int           `mapstructure:"expected_count"`
	SearchDebounce   time.Duration `mapstructure:"search_debounce"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app.name", "pokedex-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("api.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.retry_base_delay", "500ms")
	v.SetDefault("api.scenario_fixture", "")
	v.SetDefault("cache.ttl", "15m")
	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.sqlite_path", "pokedex.db")
	v.SetDefault("cache.cleanup_interval", "30m")
	v.SetDefault("loader.load_cache_on_start", true)
	v.SetDefault("loader.keep_stale_on_error", false)
	v.SetDefault("loader.expected_count", 151)
	v.SetDefault("loader.search_debounce", "300ms")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Printf("Warning: Config file not found in %s or '.', using defaults/env vars\n", configPath)
		}
	}

	v.SetEnvPrefix("POKEDEX_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c APIConfig) GetTimeout() time.Duration {
	return c.Timeout
}

func (c CacheConfig) GetTTL() time.Duration {
	if c.TTL <= 0 {
		return 15 * time.Minute
	}
	return c.TTL
}

func (c CacheConfig) GetCleanupInterval() time.Duration {
	return c.CleanupInterval
}

func (c LoaderConfig) GetSearchDebounce() time.Duration {
	if c.SearchDebounce <= 0 {
		return 300 * time.Millisecond
	}
	return c.SearchDebounce
}
