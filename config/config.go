package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig selects the log level and output format (text, json, logfmt)
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProvidersConfig holds settings shared by all catalog clients plus one
// section per provider
type ProvidersConfig struct {
	Timeout     time.Duration  `mapstructure:"timeout"`
	MaxAttempts int            `mapstructure:"max_attempts"`
	UserAgent   string         `mapstructure:"user_agent"`
	OMDb        ProviderConfig `mapstructure:"omdb"`
	Jikan       ProviderConfig `mapstructure:"jikan"`
	RAWG        ProviderConfig `mapstructure:"rawg"`
	OpenLibrary ProviderConfig `mapstructure:"openlibrary"`
	MangaDex    ProviderConfig `mapstructure:"mangadex"`
	Spotify     ProviderConfig `mapstructure:"spotify"`
}

// ProviderConfig holds one provider's endpoint, credentials and outbound rate.
// Not every provider uses every field.
type ProviderConfig struct {
	APIKey        string  `mapstructure:"api_key"`
	ClientID      string  `mapstructure:"client_id"`
	ClientSecret  string  `mapstructure:"client_secret"`
	BaseURL       string  `mapstructure:"base_url"`
	ImageURL      string  `mapstructure:"image_url"`
	TokenURL      string  `mapstructure:"token_url"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "memory", "pebble" or "sqlite"
	Path          string        `mapstructure:"path"`
	TTL           time.Duration `mapstructure:"ttl"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shelflog/")

	// Environment variable settings: SHELFLOG_CACHE_TTL -> cache.ttl
	v.SetEnvPrefix("SHELFLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Provider defaults
	v.SetDefault("providers.timeout", "10s")
	v.SetDefault("providers.max_attempts", 2)
	v.SetDefault("providers.user_agent", "shelflog/1.0")

	v.SetDefault("providers.omdb.api_key", "")
	v.SetDefault("providers.omdb.base_url", "https://www.omdbapi.com")
	v.SetDefault("providers.omdb.rate_per_second", 0)
	v.SetDefault("providers.omdb.burst", 1)

	v.SetDefault("providers.jikan.base_url", "https://api.jikan.moe/v4")
	v.SetDefault("providers.jikan.rate_per_second", 3)
	v.SetDefault("providers.jikan.burst", 1)

	v.SetDefault("providers.rawg.api_key", "")
	v.SetDefault("providers.rawg.base_url", "https://api.rawg.io/api")
	v.SetDefault("providers.rawg.rate_per_second", 0)
	v.SetDefault("providers.rawg.burst", 1)

	v.SetDefault("providers.openlibrary.base_url", "https://openlibrary.org")
	v.SetDefault("providers.openlibrary.image_url", "https://covers.openlibrary.org")
	v.SetDefault("providers.openlibrary.rate_per_second", 0)
	v.SetDefault("providers.openlibrary.burst", 1)

	v.SetDefault("providers.mangadex.base_url", "https://api.mangadex.org")
	v.SetDefault("providers.mangadex.image_url", "https://uploads.mangadex.org")
	v.SetDefault("providers.mangadex.rate_per_second", 5)
	v.SetDefault("providers.mangadex.burst", 1)

	v.SetDefault("providers.spotify.client_id", "")
	v.SetDefault("providers.spotify.client_secret", "")
	v.SetDefault("providers.spotify.base_url", "https://api.spotify.com/v1")
	v.SetDefault("providers.spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("providers.spotify.rate_per_second", 0)
	v.SetDefault("providers.spotify.burst", 1)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.ttl", "168h") // 7 days
	v.SetDefault("cache.write_timeout", "5s")
	v.SetDefault("cache.sweep_interval", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Cache.Type {
	case "memory":
	case "pebble", "sqlite":
		if config.Cache.Path == "" {
			return fmt.Errorf("cache path is required when cache type is '%s' (set SHELFLOG_CACHE_PATH)", config.Cache.Type)
		}
	default:
		return fmt.Errorf("cache type must be 'memory', 'pebble' or 'sqlite', got: %s", config.Cache.Type)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got: %s", config.Cache.TTL)
	}

	if config.Providers.MaxAttempts < 1 {
		return fmt.Errorf("providers max_attempts must be at least 1, got: %d", config.Providers.MaxAttempts)
	}

	if config.Providers.Timeout <= 0 {
		return fmt.Errorf("providers timeout must be positive, got: %s", config.Providers.Timeout)
	}

	return nil
}

// MissingCredentials lists providers whose credentials are not configured.
// Those providers still run but every search they serve returns no results.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Providers.OMDb.APIKey == "" {
		missing = append(missing, "SHELFLOG_PROVIDERS_OMDB_API_KEY")
	}
	if c.Providers.RAWG.APIKey == "" {
		missing = append(missing, "SHELFLOG_PROVIDERS_RAWG_API_KEY")
	}
	if c.Providers.Spotify.ClientID == "" || c.Providers.Spotify.ClientSecret == "" {
		missing = append(missing, "SHELFLOG_PROVIDERS_SPOTIFY_CLIENT_ID/CLIENT_SECRET")
	}
	return missing
}
