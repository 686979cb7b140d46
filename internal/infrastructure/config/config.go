// Package config loads the service configuration from an optional YAML file,
// a .env file, and FACHWERK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "github.com/fachwerk-hq/fachwerk/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig      `mapstructure:"server"`
	Database    sharedConfig.DatabaseConfig    `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig      `mapstructure:"logger"`
	Auth        sharedConfig.AuthConfig        `mapstructure:"auth"`
	Email       sharedConfig.EmailConfig       `mapstructure:"email"`
	Redis       sharedConfig.RedisConfig       `mapstructure:"redis"`
	Marketplace sharedConfig.MarketplaceConfig `mapstructure:"marketplace"`
	Relay       sharedConfig.RelayConfig       `mapstructure:"relay"`
	RateLimit   sharedConfig.RateLimitConfig   `mapstructure:"ratelimit"`
	Retry       sharedConfig.RetryConfig       `mapstructure:"retry"`
}

const envPrefix = "FACHWERK"

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// A missing config file is not an error; env vars and defaults suffice.
func Load(env string) (*Config, error) {
	// .env is a convenience for local runs; real environments set vars directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case sharedConfig.DriverMySQL, sharedConfig.DriverPostgres, sharedConfig.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Server.Mode == "release" && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("auth.jwt_secret must be changed in release mode")
	}
	if c.Marketplace.RatingMin < 0 || c.Marketplace.RatingMax <= c.Marketplace.RatingMin {
		return fmt.Errorf("invalid rating range %d..%d", c.Marketplace.RatingMin, c.Marketplace.RatingMax)
	}
	if c.Relay.Enabled && c.Relay.Interval <= 0 {
		return errors.New("relay.interval must be positive")
	}
	return nil
}

const defaultJWTSecret = "change-me-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", sharedConfig.DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "fachwerk_dev")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.jwt_secret", defaultJWTSecret)
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "authenticated")
	v.SetDefault("auth.dev_token_ttl", 12*time.Hour)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "noreply@fachwerk.local")
	v.SetDefault("email.from_name", "Fachwerk")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("marketplace.rating_min", 0)
	v.SetDefault("marketplace.rating_max", 10)
	v.SetDefault("marketplace.problem_note_min_length", 5)
	v.SetDefault("marketplace.timezone", "Europe/Berlin")

	v.SetDefault("relay.enabled", true)
	v.SetDefault("relay.interval", 5*time.Second)
	v.SetDefault("relay.batch_size", 100)
	v.SetDefault("relay.lock_ttl", 30*time.Second)
	v.SetDefault("relay.max_attempts", 8)
	v.SetDefault("relay.retry_base", 30*time.Second)
	v.SetDefault("relay.retry_max", 30*time.Minute)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.limit", 60)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.base_delay", 50*time.Millisecond)
}
