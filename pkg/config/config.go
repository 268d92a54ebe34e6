package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Call resolver modes
const (
	ResolverIdentity  = "identity"
	ResolverDirectory = "directory"
)

// Rate limit backends
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Twilio    TwilioConfig
	Retention RetentionConfig
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Storage   StorageConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"5001"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
	Timezone        string   `envconfig:"TIMEZONE" default:"Local"`
}

// TwilioConfig holds webhook authentication and call identity settings
type TwilioConfig struct {
	AuthToken     string `envconfig:"TWILIO_AUTH_TOKEN"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL"`
	CallResolver  string `envconfig:"CALL_RESOLVER" default:"identity"`
}

// RetentionConfig controls the raw media/text sweep
type RetentionConfig struct {
	Window        time.Duration `envconfig:"RETENTION_WINDOW" default:"168h"`
	SweepInterval time.Duration `envconfig:"RETENTION_SWEEP_INTERVAL"`
}

// AnalyticsConfig controls reprocessing of failed transcriptions
type AnalyticsConfig struct {
	ReprocessInterval time.Duration `envconfig:"REPROCESS_INTERVAL" default:"5m"`
	MaxRetries        uint64        `envconfig:"REPROCESS_MAX_RETRIES" default:"3"`
}

// RateLimitConfig holds rate limiting configuration for the read API
type RateLimitConfig struct {
	PerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	Backend   string `envconfig:"RATE_LIMIT_BACKEND" default:"memory"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StorageConfig holds export archive storage configuration
type StorageConfig struct {
	Enabled         bool          `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string        `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"STORAGE_BUCKET" default:"call-exports"`
	UseSSL          bool          `envconfig:"STORAGE_USE_SSL" default:"false"`
	PresignExpiry   time.Duration `envconfig:"STORAGE_PRESIGN_EXPIRY" default:"1h"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Retention.SweepInterval <= 0 {
		if c.IsProduction() {
			c.Retention.SweepInterval = 24 * time.Hour
		} else {
			c.Retention.SweepInterval = time.Hour
		}
	}
	c.Twilio.PublicBaseURL = strings.TrimRight(c.Twilio.PublicBaseURL, "/")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Twilio.CallResolver {
	case ResolverIdentity, ResolverDirectory:
	default:
		return fmt.Errorf("CALL_RESOLVER must be %q or %q, got %q", ResolverIdentity, ResolverDirectory, c.Twilio.CallResolver)
	}
	switch c.RateLimit.Backend {
	case RateLimitMemory, RateLimitRedis:
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q", RateLimitMemory, RateLimitRedis, c.RateLimit.Backend)
	}
	if c.Retention.Window <= 0 {
		return fmt.Errorf("RETENTION_WINDOW must be positive")
	}
	if c.Analytics.ReprocessInterval <= 0 {
		return fmt.Errorf("REPROCESS_INTERVAL must be positive")
	}
	if c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// SignatureConfigured reports whether webhook signatures can be enforced
func (c *Config) SignatureConfigured() bool {
	return c.Twilio.AuthToken != "" && c.Twilio.PublicBaseURL != ""
}

// Location returns the configured timezone used for time-of-day analysis
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
