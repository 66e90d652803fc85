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
	Server    ServerConfig
	Coupang   CoupangConfig
	Matching  MatchingConfig
	Registry  RegistryConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CoupangConfig holds marketplace API configuration
type CoupangConfig struct {
	AccessKey   string        `mapstructure:"access_key"`
	SecretKey   string        `mapstructure:"secret_key"`
	BaseURL     string        `mapstructure:"base_url"`
	APIPath     string        `mapstructure:"api_path"`
	SearchLimit int           `mapstructure:"search_limit"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// MatchingConfig holds relevance filter configuration
type MatchingConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	MinResults          int     `mapstructure:"min_results"`
	EnableDebugLogging  bool    `mapstructure:"enable_debug_logging"`
}

// RegistryConfig holds product registry configuration
type RegistryConfig struct {
	Type     string `mapstructure:"type"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP    int `mapstructure:"per_ip"`   // requests per minute per client
	Upstream int `mapstructure:"upstream"` // marketplace requests per hour
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/kepacart/")

	// KEPA_COUPANG_ACCESS_KEY -> coupang.access_key
	v.SetEnvPrefix("KEPA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindLegacyEnv(v)

	// Config file is optional
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

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	if err := godotenv.Load(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values; every key needs one so env overrides unmarshal
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Coupang defaults
	v.SetDefault("coupang.access_key", "")
	v.SetDefault("coupang.secret_key", "")
	v.SetDefault("coupang.base_url", "https://api-gateway.coupang.com")
	v.SetDefault("coupang.api_path", "/v2/providers/affiliate_open_api/apis/openapi/v1")
	v.SetDefault("coupang.search_limit", 10)
	v.SetDefault("coupang.timeout", "8s")

	// Matching defaults
	v.SetDefault("matching.similarity_threshold", 0.3)
	v.SetDefault("matching.min_results", 3)
	v.SetDefault("matching.enable_debug_logging", false)

	// Registry defaults
	v.SetDefault("registry.type", "memory")
	v.SetDefault("registry.redis_url", "")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.upstream", 1000)

	v.SetDefault("log.level", "info")
}

// bindLegacyEnv accepts the unprefixed key names used by existing deployments
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("coupang.access_key", "KEPA_COUPANG_ACCESS_KEY", "COUPANG_ACCESS_KEY")
	_ = v.BindEnv("coupang.secret_key", "KEPA_COUPANG_SECRET_KEY", "COUPANG_SECRET_KEY")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.IsProduction() {
		if config.Coupang.AccessKey == "" || config.Coupang.SecretKey == "" {
			return fmt.Errorf("Coupang access and secret keys are required in production (set KEPA_COUPANG_ACCESS_KEY and KEPA_COUPANG_SECRET_KEY)")
		}
	}

	if config.Registry.Type != "memory" && config.Registry.Type != "redis" {
		return fmt.Errorf("registry type must be 'memory' or 'redis', got: %s", config.Registry.Type)
	}

	if config.Registry.Type == "redis" && config.Registry.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when registry type is 'redis'")
	}

	if config.Matching.SimilarityThreshold < 0 || config.Matching.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be between 0 and 1, got: %v", config.Matching.SimilarityThreshold)
	}

	if config.Coupang.SearchLimit < 1 || config.Coupang.SearchLimit > 100 {
		return fmt.Errorf("search limit must be between 1 and 100, got: %d", config.Coupang.SearchLimit)
	}

	if config.Coupang.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got: %v", config.Coupang.Timeout)
	}

	return nil
}
