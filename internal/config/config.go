package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config is read from the process environment, optionally seeded from a
// .env file in the working directory.
type Config struct {
	Environment Environment `envconfig:"APP_ENV" default:"production"`
	Port        string      `envconfig:"PORT" default:"8080"`

	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	DBMaxOpenConns  int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBConnLifetime  time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"2h"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// Base64 encoded, 32 bytes each once decoded.
	EncryptionKey string `envconfig:"ENCRYPTION_KEY"`
	BlindIndexKey string `envconfig:"BLIND_INDEX_KEY"`

	ReminderScanInterval time.Duration `envconfig:"REMINDER_SCAN_INTERVAL" default:"60s"`
	ReminderHorizon      time.Duration `envconfig:"REMINDER_HORIZON" default:"5m"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`

	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if _, err := decodeKey("ENCRYPTION_KEY", c.EncryptionKey); err != nil {
		return err
	}
	if _, err := decodeKey("BLIND_INDEX_KEY", c.BlindIndexKey); err != nil {
		return err
	}
	if c.ReminderScanInterval <= 0 {
		return fmt.Errorf("REMINDER_SCAN_INTERVAL must be positive, got %s", c.ReminderScanInterval)
	}
	if c.ReminderHorizon < 0 {
		return fmt.Errorf("REMINDER_HORIZON must not be negative, got %s", c.ReminderHorizon)
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Environment == EnvDevelopment }

// Keys returns the decoded encryption and blind index keys.
func (c *Config) Keys() (enc, blind []byte, err error) {
	if enc, err = decodeKey("ENCRYPTION_KEY", c.EncryptionKey); err != nil {
		return nil, nil, err
	}
	if blind, err = decodeKey("BLIND_INDEX_KEY", c.BlindIndexKey); err != nil {
		return nil, nil, err
	}
	return enc, blind, nil
}

func decodeKey(name, v string) ([]byte, error) {
	if v == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(b))
	}
	return b, nil
}
