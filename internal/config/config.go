// Package config loads service settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	AuthSigningKey   string        `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer       string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience     string        `mapstructure:"AUTH_AUDIENCE"`
	MaxUploadSize    string        `mapstructure:"MAX_UPLOAD_SIZE"`
	CacheTTL         time.Duration `mapstructure:"CACHE_TTL"`
	RateLimitRPS     float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MLLPAddr         string        `mapstructure:"MLLP_ADDR"`
	BatchConcurrency int           `mapstructure:"BATCH_CONCURRENCY"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
}

// minSigningKeyLength is the shortest HS256 key accepted.
const minSigningKeyLength = 32

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"AUTH_SIGNING_KEY", "AUTH_ISSUER", "AUTH_AUDIENCE",
	"MAX_UPLOAD_SIZE", "CACHE_TTL",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT",
	"MLLP_ADDR", "BATCH_CONCURRENCY", "CORS_ORIGINS",
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads the configuration with envFile as the optional dotenv
// source. Environment variables win over the file.
func LoadFile(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MAX_UPLOAD_SIZE", "50MiB")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BATCH_CONCURRENCY", 4)

	// Unmarshal only sees env vars that are bound.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the service is configured for production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AuthEnabled reports whether bearer tokens are required on the API.
func (c *Config) AuthEnabled() bool {
	return c.AuthSigningKey != ""
}

// MaxUploadBytes parses MAX_UPLOAD_SIZE ("50MiB", "20 MB", "1048576").
func (c *Config) MaxUploadBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("MAX_UPLOAD_SIZE %q: %w", c.MaxUploadSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	return int64(n), nil
}

// Level returns the zerolog level for LOG_LEVEL.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, nil
	}
	return lvl, nil
}

// Validate checks that the configuration is safe to run. Production refuses
// to start without an auth signing key.
func (c *Config) Validate() error {
	if c.IsProduction() && !c.AuthEnabled() {
		return fmt.Errorf("AUTH_SIGNING_KEY is required in production")
	}
	if c.AuthEnabled() && len(c.AuthSigningKey) < minSigningKeyLength {
		return fmt.Errorf("AUTH_SIGNING_KEY must be at least %d bytes, got %d", minSigningKeyLength, len(c.AuthSigningKey))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.MaxUploadBytes(); err != nil {
		return err
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, got %d", c.DBMinConns)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.BatchConcurrency <= 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must be positive, got %d", c.BatchConcurrency)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// Warnings lists settings that are valid but worth flagging at startup.
func (c *Config) Warnings() []string {
	var out []string
	if !c.AuthEnabled() {
		out = append(out, "AUTH_SIGNING_KEY is empty: the API accepts unauthenticated requests")
	}
	if c.DatabaseURL == "" {
		out = append(out, "DATABASE_URL is empty: the conversion audit log is kept in memory only")
	}
	return out
}
