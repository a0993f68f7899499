// Package config loads the Gateway's configuration via viper: the three
// environment variables spec.md names (PORT, INVENTORY_URL,
// INVENTORY_TOKEN) compose with a richer struct covering server timeouts,
// retry policy, circuit breaker thresholds, and cache TTLs/sizes.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server timeouts.
type ServerConfig struct {
	Port                    int           `mapstructure:"port"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	IdleTimeout             time.Duration `mapstructure:"idle_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

// InventoryConfig holds the upstream Inventory transport's connection
// details (spec §6's "Environment" section).
type InventoryConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RetryConfig mirrors resilience.RetryPolicy's tunables (spec §4.C2).
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	Multiplier   float64       `mapstructure:"multiplier"`
	Jitter       bool          `mapstructure:"jitter"`
}

// BreakerConfig mirrors resilience.BreakerConfig (spec §4.C3).
type BreakerConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
}

// DegradationCacheConfig mirrors cache.DegradationConfig (spec §4.C5).
type DegradationCacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// FreshCacheConfig mirrors cache.FreshConfig (spec §4.C7), plus the choice
// of backend (in-memory vs. Redis-backed for horizontally scaled
// deployments).
type FreshCacheConfig struct {
	Backend        string        `mapstructure:"backend"` // "memory" or "redis"
	DefaultTTL     time.Duration `mapstructure:"default_ttl"`
	MaxSize        int           `mapstructure:"max_size"`
	Strategy       string        `mapstructure:"strategy"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`
}

// LogConfig mirrors pkg/logger.Config.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig holds the metrics.enabled setting. Nothing in the Gateway
// reads it: /metrics is always served.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RateLimitConfig configures the per-tenant token bucket middleware.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// Config is the Gateway's full configuration tree.
type Config struct {
	Server      ServerConfig           `mapstructure:"server"`
	Inventory   InventoryConfig        `mapstructure:"inventory"`
	Retry       RetryConfig            `mapstructure:"retry"`
	Breaker     BreakerConfig          `mapstructure:"breaker"`
	Degradation DegradationCacheConfig `mapstructure:"degradation"`
	Fresh       FreshCacheConfig       `mapstructure:"fresh"`
	Log         LogConfig              `mapstructure:"log"`
	Metrics     MetricsConfig          `mapstructure:"metrics"`
	RateLimit   RateLimitConfig        `mapstructure:"rate_limit"`
	// Tenants maps each app-tenant id (asserted via X-Tenant-Id) to its
	// inventory-tenant id. Populates tenant.Mapper at startup; spec §4.C8's
	// app-tenant ↔ inventory-tenant table has no other source of truth.
	Tenants map[string]int `mapstructure:"tenants"`
}

// Load reads configPath (if non-empty and present), then environment
// variables, into a Config seeded with defaults. PORT, INVENTORY_URL and
// INVENTORY_TOKEN bind directly per spec §6; every other field binds via
// its mapstructure tag with underscores (e.g. RETRY_MAX_ATTEMPTS).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindSpecEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Inventory.URL = strings.TrimRight(cfg.Inventory.URL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// bindSpecEnvVars binds the three environment variables spec.md names by
// their literal, unprefixed names, since mapstructure's default
// dot-to-underscore scheme would otherwise expect INVENTORY_URL only via
// "inventory.url" -> "INVENTORY_URL", which happens to already match; PORT
// is bound explicitly because "server.port" would otherwise require
// SERVER_PORT.
func bindSpecEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("inventory.url", "INVENTORY_URL")
	_ = v.BindEnv("inventory.token", "INVENTORY_TOKEN")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.graceful_shutdown_timeout", 15*time.Second)

	v.SetDefault("inventory.url", "http://localhost:8000")
	v.SetDefault("inventory.token", "")
	v.SetDefault("inventory.timeout", 10*time.Second)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", 100*time.Millisecond)
	v.SetDefault("retry.max_delay", 5*time.Second)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter", true)

	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.success_threshold", 2)
	v.SetDefault("breaker.cooldown", 60*time.Second)

	v.SetDefault("degradation.ttl", 5*time.Minute)

	v.SetDefault("fresh.backend", "memory")
	v.SetDefault("fresh.default_ttl", 30*time.Second)
	v.SetDefault("fresh.max_size", 1000)
	v.SetDefault("fresh.strategy", "write_back")
	v.SetDefault("fresh.metrics_enabled", true)
	v.SetDefault("fresh.redis_db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.burst", 20)
}

// Validate enforces basic sanity on the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1")
	}
	if c.Retry.InitialDelay < 0 || c.Retry.MaxDelay < 0 {
		return fmt.Errorf("retry delays must be non-negative")
	}
	if c.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("breaker.failure_threshold must be >= 1")
	}
	if c.Breaker.SuccessThreshold < 1 {
		return fmt.Errorf("breaker.success_threshold must be >= 1")
	}
	if c.Fresh.Backend != "memory" && c.Fresh.Backend != "redis" {
		return fmt.Errorf("fresh.backend must be \"memory\" or \"redis\", got %q", c.Fresh.Backend)
	}
	if c.Fresh.Backend == "redis" && c.Fresh.RedisAddr == "" {
		return fmt.Errorf("fresh.redis_addr is required when fresh.backend=redis")
	}
	if c.Log.Level == "" {
		return fmt.Errorf("log.level cannot be empty")
	}
	return nil
}
